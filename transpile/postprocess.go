package transpile

import (
	"github.com/d3d9spv/transpiler/d3dsm"
	"github.com/d3d9spv/transpiler/spirv"
)

// postProcess implements spec.md §4.9: the vertex-position Y-flip (Vulkan's
// clip space is Y-down, D3D9's is Y-up) and the function epilogue. It runs
// exactly once, after every instruction in the stream has been dispatched.
func (tr *Transpiler) postProcess() {
	if tr.stage == d3dsm.StageVertex && tr.positionOutputPtr != 0 {
		tr.flipPositionY()
	}
	tr.b.AddReturn()
	tr.b.AddFunctionEnd()
}

func (tr *Transpiler) flipPositionY() {
	vec4T := tr.types.ID(Vec(TagFloat, 4))
	scalarT := tr.types.ID(Scalar(TagFloat))
	pos := tr.b.AddLoad(vec4T, tr.positionOutputPtr)
	y := tr.b.AddCompositeExtract(scalarT, pos, 1)
	negY := tr.b.AddUnaryOp(spirv.OpFNegate, scalarT, y)
	flipped := tr.b.AddCompositeInsert(vec4T, negY, pos, 1)
	tr.b.AddStore(tr.positionOutputPtr, flipped)
}
