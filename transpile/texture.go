package transpile

import (
	"github.com/d3d9spv/transpiler/d3dsm"
	"github.com/d3d9spv/transpiler/spirv"
)

// dispatchTexCoord is the ps.1.x TEXCOORD instruction: it reads a
// texture-coordinate input register and writes it through unchanged. On
// ps.1.x hardware this let a shader reuse interpolated coordinates as a
// plain vector; this translator models it as a passthrough mov.
func (tr *Transpiler) dispatchTexCoord(tok d3dsm.Token) {
	dst := tr.reader.Next()
	class, number := d3dsm.RegType(dst), d3dsm.RegNumber(dst)
	key := regKey{Class: class, Number: number}
	v, _ := tr.resolveScalarOrVector(key)
	tr.commit(dst, v)
}

// dispatchTex samples a texture at the coordinates given by the
// coordinate/texture-register source, through the sampler named by the
// second source (ps.2.0+) or implicitly by the destination's own register
// number (ps.1.x, where "tex t0" samples sampler stage 0 at t0's own
// coordinates, and ps.1.4's "texld r0, t1" samples stage 0 at t1).
func (tr *Transpiler) dispatchTex(tok d3dsm.Token) {
	dst := tr.reader.Next()
	major, minor := tr.reader.EffectiveVersion()

	var coordSrc, samplerSrc d3dsm.Token
	if major == 1 {
		// ps.1.0-1.3: tex tN has no source operands; it samples stage N at tN.
		// ps.1.4: texld rN, tM samples stage N at its one source tM.
		class, number := d3dsm.RegType(dst), d3dsm.RegNumber(dst)
		samplerKey := regKey{Class: d3dsm.RegSampler, Number: number}
		coordKey := regKey{Class: class, Number: number}
		if minor >= 4 {
			coordSrc = tr.reader.Next()
			coordKey = regKey{Class: d3dsm.RegType(coordSrc), Number: d3dsm.RegNumber(coordSrc)}
		}
		tr.sampleAndCommit(dst, coordKey, samplerKey)
		return
	}

	coordSrc = tr.reader.Next()
	samplerSrc = tr.reader.Next()
	coordKey := regKey{Class: d3dsm.RegType(coordSrc), Number: d3dsm.RegNumber(coordSrc)}
	samplerKey := regKey{Class: d3dsm.RegSampler, Number: d3dsm.RegNumber(samplerSrc)}
	tr.sampleAndCommit(dst, coordKey, samplerKey)
}

func (tr *Transpiler) sampleAndCommit(dst d3dsm.Token, coordKey, samplerKey regKey) {
	coord, _ := tr.resolveScalarOrVector(coordKey)
	vec4T := tr.types.ID(Vec(TagFloat, 4))
	vec2T := tr.types.ID(Vec(TagFloat, 2))
	coord2 := tr.b.AddVectorShuffle(vec2T, coord, coord, []uint32{0, 1})

	samplerBnd := tr.declare(samplerKey, 0)
	sampledImageT := tr.types.ID(TypeDescriptor{Primary: TagSampledImage})
	sampledImage := tr.b.AddLoad(sampledImageT, samplerBnd.ptr)

	result := tr.b.AddImageSampleImplicitLod(vec4T, sampledImage, coord2)
	tr.idt.setType(result, Vec(TagFloat, 4))
	tr.commit(dst, result)
}

// dispatchTexKill implements D3DSIO_TEXKILL: discard the fragment if any of
// the destination register's x/y/z components is negative. Lowered as three
// independently guarded OpKill blocks (spec.md §8 scenario 3's exact shape)
// rather than one OR'd condition, matching how a single-pass emitter that
// never looks ahead at the other components would naturally lower it.
func (tr *Transpiler) dispatchTexKill(tok d3dsm.Token) {
	dst := tr.reader.Next()
	class, number := d3dsm.RegType(dst), d3dsm.RegNumber(dst)
	key := regKey{Class: class, Number: number}
	v, _ := tr.resolveScalarOrVector(key)

	scalarT := tr.types.ID(Scalar(TagFloat))
	boolT := tr.types.ID(Scalar(TagBool))
	zero := tr.b.AddConstantFloat32(scalarT, 0)

	for ch := uint32(0); ch < 3; ch++ {
		comp := tr.b.AddCompositeExtract(scalarT, v, ch)
		cond := tr.b.AddBinaryOp(spirv.OpFOrdLessThan, boolT, comp, zero)
		killLabel := tr.b.AllocID()
		mergeLabel := tr.b.AllocID()
		tr.b.AddSelectionMerge(mergeLabel, spirv.SelectionControlNone)
		tr.b.AddBranchConditional(cond, killLabel, mergeLabel)
		tr.emitLabel(killLabel)
		tr.b.AddKill()
		tr.emitLabel(mergeLabel)
	}
}

// dispatchTexBem applies the ps.1.x environment-bump-map equation: the
// sampled coordinate is perturbed by the first two rows of the texture
// stage's bump-environment matrix, read from the per-stage UBO.
func (tr *Transpiler) dispatchTexBem(tok d3dsm.Token) {
	dst := tr.reader.Next()
	src := tr.reader.Next()
	dstClass, dstNumber := d3dsm.RegType(dst), d3dsm.RegNumber(dst)
	coordKey := regKey{Class: dstClass, Number: dstNumber}
	bumpKey := regKey{Class: d3dsm.RegType(src), Number: d3dsm.RegNumber(src)}

	coord, _ := tr.resolveScalarOrVector(coordKey)
	bump, _ := tr.resolveScalarOrVector(bumpKey)

	scalarT := tr.types.ID(Scalar(TagFloat))
	uintT := tr.types.ID(Scalar(TagUInt))
	bu := tr.b.AddCompositeExtract(scalarT, bump, 0)
	bv := tr.b.AddCompositeExtract(scalarT, bump, 1)

	stagePtrT := tr.b.AddTypePointer(spirv.StorageClassUniform, scalarT)
	idx := func(word uint32) uint32 {
		stageIdx := tr.b.AddConstant(uintT, uint32(dstNumber))
		memberIdx := tr.b.AddConstant(uintT, word)
		return tr.b.AddAccessChain(stagePtrT, tr.uniforms.stageVar, tr.b.AddConstant(uintT, 0), stageIdx, memberIdx)
	}
	m00 := tr.b.AddLoad(scalarT, idx(0))
	m01 := tr.b.AddLoad(scalarT, idx(1))
	m10 := tr.b.AddLoad(scalarT, idx(2))
	m11 := tr.b.AddLoad(scalarT, idx(3))

	du := tr.b.AddBinaryOp(spirv.OpFAdd, scalarT,
		tr.b.AddBinaryOp(spirv.OpFMul, scalarT, bu, m00),
		tr.b.AddBinaryOp(spirv.OpFMul, scalarT, bv, m10))
	dv := tr.b.AddBinaryOp(spirv.OpFAdd, scalarT,
		tr.b.AddBinaryOp(spirv.OpFMul, scalarT, bu, m01),
		tr.b.AddBinaryOp(spirv.OpFMul, scalarT, bv, m11))

	cu := tr.b.AddCompositeExtract(scalarT, coord, 0)
	cv := tr.b.AddCompositeExtract(scalarT, coord, 1)
	u := tr.b.AddBinaryOp(spirv.OpFAdd, scalarT, cu, du)
	v := tr.b.AddBinaryOp(spirv.OpFAdd, scalarT, cv, dv)

	vec4T := tr.types.ID(Vec(TagFloat, 4))
	zero := tr.b.AddConstantFloat32(scalarT, 0)
	one := tr.b.AddConstantFloat32(scalarT, 1)
	result := tr.b.AddCompositeConstruct(vec4T, u, v, zero, one)
	tr.idt.setType(result, Vec(TagFloat, 4))
	tr.commit(dst, result)
}
