package transpile

import (
	"testing"

	"github.com/d3d9spv/transpiler/d3dsm"
	"github.com/d3d9spv/transpiler/spirv"
)

func TestCommitFullMaskStoresOnce(t *testing.T) {
	tr := newTestTranspiler(d3dsm.StageVertex)

	vec4T := tr.types.ID(Vec(TagFloat, 4))
	zero := tr.b.AddConstantFloat32(tr.types.ID(Scalar(TagFloat)), 0)
	value := tr.b.AddCompositeConstruct(vec4T, zero, zero, zero, zero)
	tr.idt.setType(value, Vec(TagFloat, 4))

	dst := dstToken(d3dsm.RegTemp, 0, d3dsm.MaskAll)
	tr.commit(d3dsm.Token(dst), value)

	instrs := decodeInstructions(tr.b.Build())
	if n := countOpcode(instrs, spirv.OpStore); n != 1 {
		t.Errorf("full write mask should emit exactly one OpStore, got %d", n)
	}
	if n := countOpcode(instrs, spirv.OpAccessChain); n != 0 {
		t.Errorf("full write mask should not need a per-channel access chain, got %d", n)
	}
}

func TestCommitPartialMaskStoresPerChannel(t *testing.T) {
	tr := newTestTranspiler(d3dsm.StageVertex)

	vec4T := tr.types.ID(Vec(TagFloat, 4))
	zero := tr.b.AddConstantFloat32(tr.types.ID(Scalar(TagFloat)), 0)
	value := tr.b.AddCompositeConstruct(vec4T, zero, zero, zero, zero)
	tr.idt.setType(value, Vec(TagFloat, 4))

	dst := dstToken(d3dsm.RegTemp, 0, d3dsm.MaskX|d3dsm.MaskZ)
	tr.commit(d3dsm.Token(dst), value)

	instrs := decodeInstructions(tr.b.Build())
	if n := countOpcode(instrs, spirv.OpStore); n != 2 {
		t.Errorf("a 2-channel write mask should emit 2 per-channel OpStore, got %d", n)
	}
	if n := countOpcode(instrs, spirv.OpAccessChain); n != 2 {
		t.Errorf("a 2-channel write mask should emit 2 access chains, got %d", n)
	}
	if n := countOpcode(instrs, spirv.OpCompositeExtract); n != 2 {
		t.Errorf("expected one CompositeExtract per written channel, got %d", n)
	}
}

func TestCommitSaturateClampsFloat(t *testing.T) {
	tr := newTestTranspiler(d3dsm.StageVertex)

	vec4T := tr.types.ID(Vec(TagFloat, 4))
	one := tr.b.AddConstantFloat32(tr.types.ID(Scalar(TagFloat)), 1)
	value := tr.b.AddCompositeConstruct(vec4T, one, one, one, one)
	tr.idt.setType(value, Vec(TagFloat, 4))

	dst := dstToken(d3dsm.RegTemp, 0, d3dsm.MaskAll) | uint32(d3dsm.DestModSaturate)<<20
	tr.commit(d3dsm.Token(dst), value)

	instrs := decodeInstructions(tr.b.Build())
	ext, ok := findOpcode(instrs, spirv.OpExtInst)
	if !ok {
		t.Fatalf("_sat modifier should emit an ExtInst before the store")
	}
	if got := ext.Words[3]; got != spirv.GLSLstd450FClamp {
		t.Errorf("_sat on a float value should use GLSL FClamp (%d), got ext-inst %d", spirv.GLSLstd450FClamp, got)
	}
}

// _sat on an int/uint-typed value (e.g. a MIN/MAX/SGE result committed
// straight to a saturated destination) must clamp via UClamp against int
// constants, never FClamp against float constants of the wrong type.
func TestCommitSaturateClampsInt(t *testing.T) {
	tr := newTestTranspiler(d3dsm.StageVertex)

	intT := tr.types.ID(Scalar(TagUInt))
	value := tr.b.AddConstant(intT, 7)
	tr.idt.setType(value, Scalar(TagUInt))

	dst := dstToken(d3dsm.RegTemp, 0, d3dsm.MaskAll) | uint32(d3dsm.DestModSaturate)<<20
	tr.commit(d3dsm.Token(dst), value)

	instrs := decodeInstructions(tr.b.Build())
	ext, ok := findOpcode(instrs, spirv.OpExtInst)
	if !ok {
		t.Fatalf("_sat modifier should emit an ExtInst before the store")
	}
	if got := ext.Words[3]; got != spirv.GLSLstd450UClamp {
		t.Errorf("_sat on a uint value should use GLSL UClamp (%d), got ext-inst %d", spirv.GLSLstd450UClamp, got)
	}
}

// scalar-backed registers (the address register) must never take the
// vector write-mask path, since SPIR-V pointers to scalars can't be
// access-chained per-channel.
func TestCommitScalarBackedRegisterStoresWholeValue(t *testing.T) {
	tr := newTestTranspiler(d3dsm.StageVertex)

	intT := tr.types.ID(Scalar(TagInt))
	value := tr.b.AddConstant(intT, 3)
	tr.idt.setType(value, Scalar(TagInt))

	dst := dstToken(d3dsm.RegAddr, 0, d3dsm.MaskAll)
	tr.commit(d3dsm.Token(dst), value)

	instrs := decodeInstructions(tr.b.Build())
	if n := countOpcode(instrs, spirv.OpStore); n != 1 {
		t.Errorf("scalar-backed register commit should emit exactly one OpStore, got %d", n)
	}
	if n := countOpcode(instrs, spirv.OpAccessChain); n != 0 {
		t.Errorf("scalar-backed register commit should never access-chain per channel, got %d", n)
	}
}
