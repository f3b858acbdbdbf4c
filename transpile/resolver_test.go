package transpile

import (
	"testing"

	"github.com/d3d9spv/transpiler/d3dsm"
	"github.com/d3d9spv/transpiler/spirv"
)

func TestApplySwizzleIdentityIsNoop(t *testing.T) {
	tr := newTestTranspiler(d3dsm.StageVertex)
	vec4T := tr.types.ID(Vec(TagFloat, 4))
	zero := tr.b.AddConstantFloat32(tr.types.ID(Scalar(TagFloat)), 0)
	raw := tr.b.AddCompositeConstruct(vec4T, zero, zero, zero, zero)

	got := tr.applySwizzle(raw, Vec(TagFloat, 4), d3dsm.IdentitySwizzle, ShapeVec4)
	if got != raw {
		t.Errorf("identity swizzle at vec4 width should return the same id, got a new one")
	}
}

func TestApplySwizzleScalarBroadcastUsesCompositeExtract(t *testing.T) {
	tr := newTestTranspiler(d3dsm.StageVertex)
	vec4T := tr.types.ID(Vec(TagFloat, 4))
	zero := tr.b.AddConstantFloat32(tr.types.ID(Scalar(TagFloat)), 0)
	raw := tr.b.AddCompositeConstruct(vec4T, zero, zero, zero, zero)

	tr.applySwizzle(raw, Vec(TagFloat, 4), d3dsm.Swizzle{0, 0, 0, 0}, ShapeVec4)

	instrs := decodeInstructions(tr.b.Build())
	if countOpcode(instrs, spirv.OpCompositeExtract) != 1 {
		t.Errorf("a .xxxx broadcast should extract the source component exactly once")
	}
	if countOpcode(instrs, spirv.OpVectorShuffle) != 0 {
		t.Errorf("a scalar broadcast should not need a general VectorShuffle")
	}
}

func TestApplySwizzleArbitraryUsesVectorShuffle(t *testing.T) {
	tr := newTestTranspiler(d3dsm.StageVertex)
	vec4T := tr.types.ID(Vec(TagFloat, 4))
	zero := tr.b.AddConstantFloat32(tr.types.ID(Scalar(TagFloat)), 0)
	raw := tr.b.AddCompositeConstruct(vec4T, zero, zero, zero, zero)

	tr.applySwizzle(raw, Vec(TagFloat, 4), d3dsm.Swizzle{3, 2, 1, 0}, ShapeVec4)

	instrs := decodeInstructions(tr.b.Build())
	shuffle, ok := findOpcode(instrs, spirv.OpVectorShuffle)
	if !ok {
		t.Fatalf("a non-identity, non-broadcast swizzle should emit a VectorShuffle")
	}
	// Words: result type, result id, vec1, vec2, selectors...
	wantSelectors := []uint32{3, 2, 1, 0}
	got := shuffle.Words[4:]
	if len(got) != len(wantSelectors) {
		t.Fatalf("selector count = %d, want %d", len(got), len(wantSelectors))
	}
	for i, w := range wantSelectors {
		if got[i] != w {
			t.Errorf("selector[%d] = %d, want %d", i, got[i], w)
		}
	}
}

func TestApplySourceModifierNegateFloat(t *testing.T) {
	tr := newTestTranspiler(d3dsm.StageVertex)
	vec4T := tr.types.ID(Vec(TagFloat, 4))
	zero := tr.b.AddConstantFloat32(tr.types.ID(Scalar(TagFloat)), 0)
	raw := tr.b.AddCompositeConstruct(vec4T, zero, zero, zero, zero)

	tr.applySourceModifier(d3dsm.SrcModNegate, raw, Vec(TagFloat, 4))

	instrs := decodeInstructions(tr.b.Build())
	if countOpcode(instrs, spirv.OpFNegate) != 1 {
		t.Errorf("negate on a float operand should emit exactly one FNegate")
	}
}

func TestResolveConstantFloatReadsUBO(t *testing.T) {
	tr := newTestTranspiler(d3dsm.StageVertex)
	src := srcToken(d3dsm.RegConst, 5)
	tr.resolve(d3dsm.Token(src), ShapeVec4)

	instrs := decodeInstructions(tr.b.Build())
	if countOpcode(instrs, spirv.OpAccessChain) != 1 {
		t.Errorf("resolving a constant-float register should emit exactly one access chain")
	}
	if countOpcode(instrs, spirv.OpLoad) != 1 {
		t.Errorf("resolving a constant-float register should emit exactly one load")
	}
}
