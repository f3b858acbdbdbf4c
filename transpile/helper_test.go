package transpile

import (
	"encoding/binary"

	"github.com/d3d9spv/transpiler/d3dsm"
	"github.com/d3d9spv/transpiler/spirv"
)

// Token-building helpers for test shaders. Bit layout mirrors
// d3dsm/reader.go's decode side exactly (spec.md §6).

func versionToken(stage d3dsm.Stage, major, minor uint8) uint32 {
	v := uint32(major)<<8 | uint32(minor)
	if stage == d3dsm.StagePixel {
		return 0xFFFF0000 | v
	}
	return 0xFFFE0000 | v
}

func opcodeToken(op d3dsm.Opcode) uint32 {
	return uint32(op)
}

// regToken builds a destination or source parameter token for register
// class/number, with no write-mask, swizzle or modifier bits set.
func regToken(class d3dsm.RegisterType, number int) uint32 {
	high := (uint32(class) >> 2) << 28
	low := (uint32(class) & 0x3) << 11
	return high | low | uint32(number)&0x7FF
}

// dstToken is regToken with an explicit write mask.
func dstToken(class d3dsm.RegisterType, number int, mask d3dsm.WriteMask) uint32 {
	return regToken(class, number) | uint32(mask)<<16
}

// srcToken is regToken with an identity swizzle (0b11100100 = w,z,y,x packed LSB-first).
func srcToken(class d3dsm.RegisterType, number int) uint32 {
	return regToken(class, number) | 0b11100100<<16
}

// dclUsageToken builds the comment-word operand that follows a DCL opcode
// token for non-sampler destinations.
func dclUsageToken(usage d3dsm.Usage, usageIndex int) uint32 {
	return uint32(usage) | uint32(usageIndex)<<16
}

// decodedInstr is one (opcode, operand-words) pair; decodeInstructions
// decodes a raw SPIR-V module's instruction stream (after the 5-word
// header) into them, the same way cmd/spvdis walks a module.
type decodedInstr struct {
	Opcode spirv.OpCode
	Words  []uint32
}

func decodeInstructions(module []byte) []decodedInstr {
	var out []decodedInstr
	words := make([]uint32, len(module)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(module[i*4:])
	}
	for i := 5; i < len(words); {
		wc := words[i] >> 16
		op := spirv.OpCode(words[i] & 0xFFFF)
		if wc == 0 {
			break
		}
		out = append(out, decodedInstr{Opcode: op, Words: words[i+1 : i+int(wc)]})
		i += int(wc)
	}
	return out
}

func countOpcode(instrs []decodedInstr, op spirv.OpCode) int {
	n := 0
	for _, in := range instrs {
		if in.Opcode == op {
			n++
		}
	}
	return n
}

func findOpcode(instrs []decodedInstr, op spirv.OpCode) (decodedInstr, bool) {
	for _, in := range instrs {
		if in.Opcode == op {
			return in, true
		}
	}
	return decodedInstr{}, false
}

// newTestTranspiler builds a bare Transpiler suitable for unit-testing a
// single component (commit, resolver, registers) in isolation, without
// running the full Convert pipeline. Tests that touch constant-register
// resolution still need tr.uniforms populated, so this always synthesizes it.
func newTestTranspiler(stage d3dsm.Stage) *Transpiler {
	tr := &Transpiler{
		b:        spirv.NewModuleBuilder(spirv.Version1_0),
		stage:    stage,
		opts:     DefaultOptions(),
		bindings: make(map[regKey]binding),
	}
	tr.idt = newIDTable()
	tr.types = NewRegistry(tr.b)
	tr.glslExtSet = tr.b.AddExtInstImport("GLSL.std.450")
	tr.uniforms = tr.synthesizeUniforms()
	return tr
}
