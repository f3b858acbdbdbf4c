package spirv

import "testing"

// countOpcode counts emitted instructions in a given section slice by opcode.
func countOpcode(instrs []Instruction, op OpCode) int {
	n := 0
	for _, in := range instrs {
		if in.Opcode == op {
			n++
		}
	}
	return n
}

func findOpcode(instrs []Instruction, op OpCode) (Instruction, bool) {
	for _, in := range instrs {
		if in.Opcode == op {
			return in, true
		}
	}
	return Instruction{}, false
}

// TestAddLabelWithID_ReservesIDAhead exercises the forward-branch-target idiom
// structured control flow needs: allocate an id for a not-yet-emitted block,
// branch to it, then later place the label against that same id.
func TestAddLabelWithID_ReservesIDAhead(t *testing.T) {
	b := NewModuleBuilder(Version1_0)
	merge := b.AllocID()
	b.AddBranch(merge)
	b.AddLabelWithID(merge)

	label, ok := findOpcode(b.functions, OpLabel)
	if !ok {
		t.Fatalf("expected an OpLabel in the function section")
	}
	if len(label.Words) < 1 || label.Words[0] != merge {
		t.Errorf("label id = %v, want [%d]", label.Words, merge)
	}
}

// TestPatchPhiIncoming_AppendsBackEdgePair mirrors a loop header: the OpPhi is
// placed with only the preheader's incoming pair, then the back-edge pair
// (the value computed in the loop body, plus the continue block) is patched
// in once the body has been lowered.
func TestPatchPhiIncoming_AppendsBackEdgePair(t *testing.T) {
	b := NewModuleBuilder(Version1_0)
	intT := b.AddTypeInt(32, true)
	zero := b.AddConstant(intT, 0)
	preheader := b.AllocID()
	phi := b.AddPhi(intT, zero, preheader)

	bodyValue := b.AllocID()
	continueLabel := b.AllocID()
	b.PatchPhiIncoming(phi, bodyValue, continueLabel)

	found, ok := findOpcode(b.functions, OpPhi)
	if !ok {
		t.Fatalf("expected an OpPhi")
	}
	// Words: result type, result id, (value, parent) pairs...
	want := []uint32{intT, phi, zero, preheader, bodyValue, continueLabel}
	if len(found.Words) != len(want) {
		t.Fatalf("OpPhi words = %v, want %v", found.Words, want)
	}
	for i, w := range want {
		if found.Words[i] != w {
			t.Errorf("OpPhi words[%d] = %d, want %d", i, found.Words[i], w)
		}
	}
}

// TestPatchPhiIncoming_NoMatchingPhiIsNoop guards against a phiID that was
// never emitted (or already garbage-collected from functions) silently
// corrupting an unrelated instruction.
func TestPatchPhiIncoming_NoMatchingPhiIsNoop(t *testing.T) {
	b := NewModuleBuilder(Version1_0)
	intT := b.AddTypeInt(32, true)
	zero := b.AddConstant(intT, 0)
	preheader := b.AllocID()
	b.AddPhi(intT, zero, preheader)

	before := len(b.functions[len(b.functions)-1].Words)
	b.PatchPhiIncoming(999999, 1, 2)
	after := len(b.functions[len(b.functions)-1].Words)
	if before != after {
		t.Errorf("patching a nonexistent phi id mutated the last instruction")
	}
}

// TestTextureSamplingPipeline builds the OpTypeImage/OpTypeSampler/
// OpTypeSampledImage/OpSampledImage/OpImageSampleImplicitLod chain a texture
// fetch (D3D9's TEX instruction) lowers to.
func TestTextureSamplingPipeline(t *testing.T) {
	b := NewModuleBuilder(Version1_0)
	floatT := b.AddTypeFloat(32)
	vec4T := b.AddTypeVector(floatT, 4)
	vec2T := b.AddTypeVector(floatT, 2)

	imageT := b.AddTypeImage(floatT, ImageFormatUnknown)
	samplerT := b.AddTypeSampler()
	sampledImageT := b.AddTypeSampledImage(imageT)

	image := b.AddVariable(b.AddTypePointer(StorageClassUniformConstant, imageT), StorageClassUniformConstant)
	sampler := b.AddVariable(b.AddTypePointer(StorageClassUniformConstant, samplerT), StorageClassUniformConstant)
	coord := b.AddConstantFloat32(floatT, 0)
	coordVec := b.AddCompositeConstruct(vec2T, coord, coord)

	combined := b.AddSampledImage(sampledImageT, image, sampler)
	b.AddImageSampleImplicitLod(vec4T, combined, coordVec)

	if countOpcode(b.types, OpTypeImage) != 1 {
		t.Errorf("expected exactly one OpTypeImage")
	}
	if countOpcode(b.types, OpTypeSampler) != 1 {
		t.Errorf("expected exactly one OpTypeSampler")
	}
	if countOpcode(b.types, OpTypeSampledImage) != 1 {
		t.Errorf("expected exactly one OpTypeSampledImage")
	}
	sampled, ok := findOpcode(b.functions, OpSampledImage)
	if !ok {
		t.Fatalf("expected an OpSampledImage combining image+sampler")
	}
	if sampled.Words[2] != image || sampled.Words[3] != sampler {
		t.Errorf("OpSampledImage operands = %v, want [.. .. %d %d]", sampled.Words, image, sampler)
	}
	if countOpcode(b.functions, OpImageSampleImplicitLod) != 1 {
		t.Errorf("expected exactly one OpImageSampleImplicitLod")
	}
}

// TestVectorTimesMatrixAndDot exercises the M4x4-style row-vector*matrix
// lowering and the DP3/DP4 dot-product lowering, both of which route through
// AddBinaryOp under the hood.
func TestVectorTimesMatrixAndDot(t *testing.T) {
	b := NewModuleBuilder(Version1_0)
	floatT := b.AddTypeFloat(32)
	vec4T := b.AddTypeVector(floatT, 4)
	colT := vec4T
	matT := b.AddTypeMatrix(colT, 4)

	vec := b.AllocID()
	mat := b.AllocID()
	result := b.AddVectorTimesMatrix(vec4T, vec, mat)

	vtm, ok := findOpcode(b.functions, OpVectorTimesMatrix)
	if !ok {
		t.Fatalf("expected an OpVectorTimesMatrix")
	}
	if vtm.Words[1] != result || vtm.Words[2] != vec || vtm.Words[3] != mat {
		t.Errorf("OpVectorTimesMatrix words = %v", vtm.Words)
	}

	dot := b.AddDot(floatT, vec, vec)
	dotInstr, ok := findOpcode(b.functions, OpDot)
	if !ok {
		t.Fatalf("expected an OpDot")
	}
	if dotInstr.Words[1] != dot {
		t.Errorf("OpDot result id = %d, want %d", dotInstr.Words[1], dot)
	}
	_ = matT
}
