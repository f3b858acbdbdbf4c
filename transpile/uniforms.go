package transpile

import (
	"github.com/d3d9spv/transpiler/spirv"
)

// Default host slot budget (224 float vec4s, 16 int vec4s, 16 bools;
// Options can override it) and the fixed sizes of the other blocks.
const (
	numFloatConstantsDefault = 224
	numIntConstantsDefault   = 16
	numBoolConstantsDefault  = 16

	numRenderStateSlots = 256
	numTextureSlots     = 16
	numTextureStageWords = 8 // bump-env matrix (4) + luminance scale/offset (2) + 2 reserved
)

// uniformLayout is the Uniform Layout Synthesizer: it owns the four
// descriptor-set-0 blocks and is invoked exactly once, before opcode
// dispatch begins (spec.md §4.4).
type uniformLayout struct {
	numInt, numBool, numFloat uint32

	constStructT uint32
	constVarPtr  uint32

	renderStateArrayT uint32
	renderStateVar    uint32

	textureArrayT uint32
	textureVar    uint32

	stageArrayT uint32
	stageVar    uint32
}

// floatMember, intMember and boolMember return the struct member index for
// a constant register,
// per spec.md §4.4's table: ints first, then bools, then floats.
func (u *uniformLayout) floatMember(n int) uint32 { return u.numInt + u.numBool + uint32(n) }
func (u *uniformLayout) intMember(n int) uint32   { return uint32(n) }
func (u *uniformLayout) boolMember(n int) uint32  { return u.numInt + uint32(n) }

// synthesizeUniforms builds the descriptor-set-0 blocks (constants and
// render state always; textures and texture stages for pixel shaders only)
// and records their variable ids in a fresh uniformLayout.
func (tr *Transpiler) synthesizeUniforms() *uniformLayout {
	u := &uniformLayout{
		numInt:   tr.opts.NumIntConstants,
		numBool:  tr.opts.NumBoolConstants,
		numFloat: tr.opts.NumFloatConstants,
	}

	ivec4T := tr.types.ID(Vec(TagInt, 4))
	intT := tr.types.ID(Scalar(TagInt))
	vec4T := tr.types.ID(Vec(TagFloat, 4))

	members := make([]uint32, 0, u.numInt+u.numBool+u.numFloat)
	offsets := make([]uint32, 0, cap(members))
	offset := uint32(0)
	for i := uint32(0); i < u.numInt; i++ {
		members = append(members, ivec4T)
		offsets = append(offsets, offset)
		offset += 16
	}
	for i := uint32(0); i < u.numBool; i++ {
		members = append(members, intT)
		offsets = append(offsets, offset)
		offset += 4
	}
	for i := uint32(0); i < u.numFloat; i++ {
		members = append(members, vec4T)
		offsets = append(offsets, offset)
		offset += 16
	}

	u.constStructT = tr.b.AddTypeStruct(members...)
	tr.b.AddDecorate(u.constStructT, spirv.DecorationBlock)
	for i, off := range offsets {
		tr.b.AddMemberDecorate(u.constStructT, uint32(i), spirv.DecorationOffset, off)
	}
	ptrT := tr.b.AddTypePointer(spirv.StorageClassUniform, u.constStructT)
	u.constVarPtr = tr.b.AddVariable(ptrT, spirv.StorageClassUniform)
	binding := uint32(5)
	if tr.isPixel() {
		binding = 6
	}
	tr.b.AddDecorate(u.constVarPtr, spirv.DecorationDescriptorSet, 0)
	tr.b.AddDecorate(u.constVarPtr, spirv.DecorationBinding, binding)
	tr.b.AddName(u.constVarPtr, "shaderConstants")

	// Render state: array of uint, one per render-state slot.
	uintT := tr.types.ID(Scalar(TagUInt))
	rsLen := tr.b.AddConstant(uintT, numRenderStateSlots)
	u.renderStateArrayT = tr.b.AddTypeArray(uintT, rsLen)
	tr.b.AddDecorate(u.renderStateArrayT, spirv.DecorationArrayStride, 4)
	rsStructT := tr.b.AddTypeStruct(u.renderStateArrayT)
	tr.b.AddDecorate(rsStructT, spirv.DecorationBlock)
	tr.b.AddMemberDecorate(rsStructT, 0, spirv.DecorationOffset, 0)
	rsPtrT := tr.b.AddTypePointer(spirv.StorageClassUniform, rsStructT)
	u.renderStateVar = tr.b.AddVariable(rsPtrT, spirv.StorageClassUniform)
	tr.b.AddDecorate(u.renderStateVar, spirv.DecorationDescriptorSet, 0)
	tr.b.AddDecorate(u.renderStateVar, spirv.DecorationBinding, 0)
	tr.b.AddName(u.renderStateVar, "renderState")

	if tr.isPixel() {
		u.synthesizePixelResources(tr)
	}

	return u
}

func (u *uniformLayout) synthesizePixelResources(tr *Transpiler) {
	imageT := tr.types.ID(TypeDescriptor{Primary: TagImage, ImageFormat: spirv.ImageFormatUnknown})
	sampledImageT := tr.b.AddTypeSampledImage(imageT)
	uintT := tr.types.ID(Scalar(TagUInt))
	texLen := tr.b.AddConstant(uintT, numTextureSlots)
	u.textureArrayT = tr.b.AddTypeArray(sampledImageT, texLen)
	texArrPtrT := tr.b.AddTypePointer(spirv.StorageClassUniformConstant, u.textureArrayT)
	u.textureVar = tr.b.AddVariable(texArrPtrT, spirv.StorageClassUniformConstant)
	tr.b.AddDecorate(u.textureVar, spirv.DecorationDescriptorSet, 0)
	tr.b.AddDecorate(u.textureVar, spirv.DecorationBinding, 7)
	tr.b.AddName(u.textureVar, "textures")

	floatT := tr.types.ID(Scalar(TagFloat))
	stageMembers := make([]uint32, numTextureStageWords)
	for i := range stageMembers {
		stageMembers[i] = floatT
	}
	stageStructT := tr.b.AddTypeStruct(stageMembers...)
	for i := range stageMembers {
		tr.b.AddMemberDecorate(stageStructT, uint32(i), spirv.DecorationOffset, uint32(i*4))
	}
	stageLen := tr.b.AddConstant(uintT, numTextureSlots)
	u.stageArrayT = tr.b.AddTypeArray(stageStructT, stageLen)
	tr.b.AddDecorate(u.stageArrayT, spirv.DecorationArrayStride, numTextureStageWords*4)
	stageBlockT := tr.b.AddTypeStruct(u.stageArrayT)
	tr.b.AddDecorate(stageBlockT, spirv.DecorationBlock)
	tr.b.AddMemberDecorate(stageBlockT, 0, spirv.DecorationOffset, 0)
	stagePtrT := tr.b.AddTypePointer(spirv.StorageClassUniform, stageBlockT)
	u.stageVar = tr.b.AddVariable(stagePtrT, spirv.StorageClassUniform)
	tr.b.AddDecorate(u.stageVar, spirv.DecorationDescriptorSet, 0)
	tr.b.AddDecorate(u.stageVar, spirv.DecorationBinding, 1)
	tr.b.AddName(u.stageVar, "textureStages")
}

// textureArrayElementPtr returns an access chain into the sampled-image
// array for sampler register n, recomputed on each call (the array element
// is opaque and never written, so there is nothing to cache correctness-wise
// beyond what the SPIR-V duplicate-instruction cost already tolerates).
func (u *uniformLayout) textureArrayElementPtr(tr *Transpiler, n int) uint32 {
	sampledImageT := tr.types.ID(TypeDescriptor{Primary: TagSampledImage})
	ptrT := tr.b.AddTypePointer(spirv.StorageClassUniformConstant, sampledImageT)
	idxT := tr.types.ID(Scalar(TagUInt))
	idx := tr.b.AddConstant(idxT, uint32(n))
	return tr.b.AddAccessChain(ptrT, u.textureVar, idx)
}

// floatConstPtr returns a pointer to the constants-UBO member backing
// float constant register c<n>.
func (u *uniformLayout) floatConstPtr(tr *Transpiler, n int) uint32 {
	ptrT := tr.b.AddTypePointer(spirv.StorageClassUniform, tr.types.ID(Vec(TagFloat, 4)))
	idxT := tr.types.ID(Scalar(TagUInt))
	idx := tr.b.AddConstant(idxT, u.floatMember(n))
	return tr.b.AddAccessChain(ptrT, u.constVarPtr, idx)
}

func (u *uniformLayout) intConstPtr(tr *Transpiler, n int) uint32 {
	ptrT := tr.b.AddTypePointer(spirv.StorageClassUniform, tr.types.ID(Vec(TagInt, 4)))
	idxT := tr.types.ID(Scalar(TagUInt))
	idx := tr.b.AddConstant(idxT, u.intMember(n))
	return tr.b.AddAccessChain(ptrT, u.constVarPtr, idx)
}

func (u *uniformLayout) boolConstPtr(tr *Transpiler, n int) uint32 {
	ptrT := tr.b.AddTypePointer(spirv.StorageClassUniform, tr.types.ID(Scalar(TagInt)))
	idxT := tr.types.ID(Scalar(TagUInt))
	idx := tr.b.AddConstant(idxT, u.boolMember(n))
	return tr.b.AddAccessChain(ptrT, u.constVarPtr, idx)
}
