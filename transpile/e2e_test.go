package transpile

import (
	"encoding/binary"
	"testing"

	"github.com/d3d9spv/transpiler/d3dsm"
	"github.com/d3d9spv/transpiler/spirv"
)

// convertOrFatal runs Convert over a fully-formed token stream and fails the
// test immediately on any transport-level error (a malformed stream, not a
// diagnostic — see spec.md §7's classification).
func convertOrFatal(t *testing.T, words []uint32) *Result {
	t.Helper()
	res, err := Convert(words, DefaultOptions())
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	return res
}

// Scenario 1: minimal vertex passthrough.
// vs_2_0 { dcl_position v0; mov oPos, v0 }
func TestE2E_MinimalVertexPassthrough(t *testing.T) {
	words := []uint32{
		versionToken(d3dsm.StageVertex, 2, 0),
		opcodeToken(d3dsm.OpDcl),
		dclUsageToken(d3dsm.UsagePosition, 0),
		dstToken(d3dsm.RegInput, 0, d3dsm.MaskAll),
		opcodeToken(d3dsm.OpMov),
		dstToken(d3dsm.RegRasterizerOut, 0, d3dsm.MaskAll),
		srcToken(d3dsm.RegInput, 0),
		opcodeToken(d3dsm.OpEnd),
	}
	res := convertOrFatal(t, words)
	instrs := decodeInstructions(res.SPIRV)

	if n := countOpcode(instrs, spirv.OpVariable); n < 2 {
		t.Errorf("expected at least 2 OpVariable (input v0 + output position), got %d", n)
	}
	if countOpcode(instrs, spirv.OpConvertUToF) != 0 {
		t.Errorf("position path must not convert uint->float; that's the COLOR path")
	}
	if countOpcode(instrs, spirv.OpCompositeInsert) == 0 {
		t.Errorf("expected a CompositeInsert fixing w=1.0 on the position input")
	}
	if countOpcode(instrs, spirv.OpFNegate) == 0 {
		t.Errorf("expected the vertex Y-flip to emit an FNegate on position.y")
	}

	foundBuiltinPosition := false
	for _, in := range instrs {
		if in.Opcode == spirv.OpDecorate && len(in.Words) >= 2 &&
			spirv.Decoration(in.Words[1]) == spirv.DecorationBuiltIn &&
			len(in.Words) >= 3 && spirv.BuiltIn(in.Words[2]) == spirv.BuiltInPosition {
			foundBuiltinPosition = true
		}
	}
	if !foundBuiltinPosition {
		t.Errorf("expected an OpDecorate BuiltIn Position on the rasterizer-out variable")
	}
}

// Scenario 2: pixel color output.
// ps_2_0 { mov r0, c0 }
func TestE2E_PixelColorOutput(t *testing.T) {
	words := []uint32{
		versionToken(d3dsm.StagePixel, 2, 0),
		opcodeToken(d3dsm.OpMov),
		dstToken(d3dsm.RegTemp, 0, d3dsm.MaskAll),
		srcToken(d3dsm.RegConst, 0),
		opcodeToken(d3dsm.OpEnd),
	}
	res := convertOrFatal(t, words)
	instrs := decodeInstructions(res.SPIRV)

	outputVars := 0
	for _, in := range instrs {
		if in.Opcode == spirv.OpVariable && len(in.Words) >= 3 &&
			spirv.StorageClass(in.Words[2]) == spirv.StorageClassOutput {
			outputVars++
		}
	}
	if outputVars == 0 {
		t.Errorf("expected r0 to be declared with StorageClass Output")
	}
	if countOpcode(instrs, spirv.OpAccessChain) == 0 {
		t.Errorf("expected an access chain reading the constants UBO for c0")
	}
	store, ok := findOpcode(instrs, spirv.OpStore)
	if !ok {
		t.Fatalf("expected a store into r0/fragColor")
	}
	_ = store
}

// Scenario 3: conditional clip.
// ps_2_0 { texkill t0 }
func TestE2E_ConditionalClip(t *testing.T) {
	words := []uint32{
		versionToken(d3dsm.StagePixel, 2, 0),
		opcodeToken(d3dsm.OpTexKill),
		dstToken(d3dsm.RegTexture, 0, d3dsm.MaskAll),
		opcodeToken(d3dsm.OpEnd),
	}
	res := convertOrFatal(t, words)
	instrs := decodeInstructions(res.SPIRV)

	if n := countOpcode(instrs, spirv.OpKill); n != 3 {
		t.Errorf("expected exactly 3 OpKill blocks (x/y/z), got %d", n)
	}
	if n := countOpcode(instrs, spirv.OpFOrdLessThan); n != 3 {
		t.Errorf("expected exactly 3 FOrdLessThan guards, got %d", n)
	}
}

// Scenario 4: matrix transform.
// vs_2_0 { dcl_position v0; m4x4 oPos, v0, c0 }
func TestE2E_MatrixTransform(t *testing.T) {
	words := []uint32{
		versionToken(d3dsm.StageVertex, 2, 0),
		opcodeToken(d3dsm.OpDcl),
		dclUsageToken(d3dsm.UsagePosition, 0),
		dstToken(d3dsm.RegInput, 0, d3dsm.MaskAll),
		opcodeToken(d3dsm.OpM4x4),
		dstToken(d3dsm.RegRasterizerOut, 0, d3dsm.MaskAll),
		srcToken(d3dsm.RegInput, 0),
		srcToken(d3dsm.RegConst, 0),
		opcodeToken(d3dsm.OpEnd),
	}
	res := convertOrFatal(t, words)
	instrs := decodeInstructions(res.SPIRV)

	if n := countOpcode(instrs, spirv.OpAccessChain); n < 4 {
		t.Errorf("expected at least 4 access chains (one per constant register c0..c3), got %d", n)
	}
	if countOpcode(instrs, spirv.OpCompositeConstruct) == 0 {
		t.Errorf("expected an OpCompositeConstruct assembling the mat4 from c0..c3")
	}
	if countOpcode(instrs, spirv.OpVectorTimesMatrix) != 1 {
		t.Errorf("expected exactly one OpVectorTimesMatrix")
	}
	if countOpcode(instrs, spirv.OpFNegate) == 0 {
		t.Errorf("expected the standard position-output Y-flip to still run")
	}
}

// Scenario 5: loop.
// vs_2_0 { loop aL, i0; add r0, r0, c0; endloop }
func TestE2E_Loop(t *testing.T) {
	words := []uint32{
		versionToken(d3dsm.StageVertex, 2, 0),
		opcodeToken(d3dsm.OpLoop),
		srcToken(d3dsm.RegAddr, 0),
		srcToken(d3dsm.RegConstInt, 0),
		opcodeToken(d3dsm.OpAdd),
		dstToken(d3dsm.RegTemp, 0, d3dsm.MaskAll),
		srcToken(d3dsm.RegTemp, 0),
		srcToken(d3dsm.RegConst, 0),
		opcodeToken(d3dsm.OpEndLoop),
		opcodeToken(d3dsm.OpEnd),
	}
	res := convertOrFatal(t, words)
	instrs := decodeInstructions(res.SPIRV)

	phi, ok := findOpcode(instrs, spirv.OpPhi)
	if !ok {
		t.Fatalf("expected an OpPhi for the loop counter")
	}
	if len(phi.Words) < 4 {
		t.Fatalf("expected OpPhi to carry at least one (value, parent) pair after patching, got words %v", phi.Words)
	}

	foundInitZero := false
	for i := 2; i+1 < len(phi.Words); i += 2 {
		for _, c := range instrs {
			if c.Opcode == spirv.OpConstant && len(c.Words) >= 3 && c.Words[1] == phi.Words[i] && c.Words[2] == 0 {
				foundInitZero = true
			}
		}
	}
	if !foundInitZero {
		t.Errorf("expected the Phi's pre-loop incoming value to be the integer constant 0")
	}

	if countOpcode(instrs, spirv.OpSLessThanEqual) == 0 {
		t.Errorf("expected the loop guard to compare the counter against the trip count via OpSLessThanEqual (spec.md §4.7's for (i=0;i<=count;) semantics)")
	}
	if countOpcode(instrs, spirv.OpIAdd) == 0 {
		t.Errorf("expected an IAdd incrementing the counter on the back edge")
	}
	if n := countOpcode(instrs, spirv.OpLoopMerge); n != 1 {
		t.Errorf("expected exactly one OpLoopMerge, got %d", n)
	}
}

// Scenario 6: nested if.
// ps_2_0 { if_gt r0.x, c0.x; mov r0, c1; else; mov r0, c2; endif }
func TestE2E_NestedIf(t *testing.T) {
	words := []uint32{
		versionToken(d3dsm.StagePixel, 2, 0),
		opcodeToken(d3dsm.OpIfC) | (0 << 16), // predicate 0 = GT
		srcToken(d3dsm.RegTemp, 0),
		srcToken(d3dsm.RegConst, 0),
		opcodeToken(d3dsm.OpMov),
		dstToken(d3dsm.RegTemp, 0, d3dsm.MaskAll),
		srcToken(d3dsm.RegConst, 1),
		opcodeToken(d3dsm.OpElse),
		opcodeToken(d3dsm.OpMov),
		dstToken(d3dsm.RegTemp, 0, d3dsm.MaskAll),
		srcToken(d3dsm.RegConst, 2),
		opcodeToken(d3dsm.OpEndIf),
		opcodeToken(d3dsm.OpEnd),
	}
	res := convertOrFatal(t, words)
	instrs := decodeInstructions(res.SPIRV)

	if n := countOpcode(instrs, spirv.OpFOrdGreaterThan); n != 1 {
		t.Errorf("expected exactly one OpFOrdGreaterThan for the GT predicate, got %d", n)
	}
	if n := countOpcode(instrs, spirv.OpSelectionMerge); n != 1 {
		t.Errorf("expected exactly one OpSelectionMerge, got %d", n)
	}
	if n := countOpcode(instrs, spirv.OpLabel); n < 3 {
		t.Errorf("expected at least 3 labels (then, else, merge), got %d", n)
	}
	if n := countOpcode(instrs, spirv.OpBranch); n < 2 {
		t.Errorf("expected at least 2 unconditional branches into the merge label, got %d", n)
	}
}

// TestE2E_IDBoundCoversEveryResultID is a universal invariant from spec.md
// §8: the header's id bound must exceed the highest result id assigned
// anywhere in the module.
func TestE2E_IDBoundCoversEveryResultID(t *testing.T) {
	words := []uint32{
		versionToken(d3dsm.StagePixel, 2, 0),
		opcodeToken(d3dsm.OpMov),
		dstToken(d3dsm.RegTemp, 0, d3dsm.MaskAll),
		srcToken(d3dsm.RegConst, 0),
		opcodeToken(d3dsm.OpEnd),
	}
	res := convertOrFatal(t, words)
	if len(res.SPIRV) < 20 {
		t.Fatalf("module too small to contain a header")
	}
	bound := binary.LittleEndian.Uint32(res.SPIRV[12:16])
	instrs := decodeInstructions(res.SPIRV)
	var maxID uint32
	for _, in := range instrs {
		for _, w := range in.Words {
			if w > maxID && w < bound {
				maxID = w
			}
		}
	}
	if bound <= maxID {
		t.Errorf("id bound %d does not exceed max observed id %d", bound, maxID)
	}
}
