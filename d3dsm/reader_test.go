package d3dsm

import "testing"

func TestDecodeVersion(t *testing.T) {
	tests := []struct {
		name  string
		token uint32
		want  Version
	}{
		{"vs_2_0", 0xFFFE0200, Version{StageVertex, 2, 0}},
		{"ps_2_0", 0xFFFF0200, Version{StagePixel, 2, 0}},
		{"vs_3_0", 0xFFFE0300, Version{StageVertex, 3, 0}},
		{"ps_1_4", 0xFFFF0104, Version{StagePixel, 1, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeVersion(Token(tt.token))
			if got != tt.want {
				t.Errorf("DecodeVersion(0x%08X) = %+v, want %+v", tt.token, got, tt.want)
			}
		})
	}
}

func TestRegTypeSplitField(t *testing.T) {
	// Build a token whose register type is RegConst4 (14 = 0b01110):
	// high 3 bits (0b011) go in bits 28..30, low 2 bits (0b10) go in bits 11..12.
	high := uint32(0b011) << regTypeHighShift
	low := uint32(0b10) << regTypeLowShift
	tok := Token(high | low)

	if got := RegType(tok); got != RegConst4 {
		t.Errorf("RegType = %d, want %d (RegConst4)", got, RegConst4)
	}
}

func TestRegNumber(t *testing.T) {
	tok := Token(0x7FF) // low 11 bits all set = 2047, within mask
	if got := RegNumber(tok); got != 0x7FF {
		t.Errorf("RegNumber = %d, want %d", got, 0x7FF)
	}
}

func TestDestWriteMaskAndModifiers(t *testing.T) {
	// write mask = xyzw (0xF at bits 16..19), _sat modifier (bit 20).
	tok := Token(0xF<<16 | 1<<20)
	if got := DestWriteMask(tok); got != MaskAll {
		t.Errorf("DestWriteMask = %v, want MaskAll", got)
	}
	if got := DestModifiers(tok); got&DestModSaturate == 0 {
		t.Errorf("DestModifiers = %v, want DestModSaturate set", got)
	}
}

func TestSrcSwizzleIdentityAndBroadcast(t *testing.T) {
	identity := Token(0b11_10_01_00 << swizzleShift) // w=3,z=2,y=1,x=0 per channel
	sw := SrcSwizzle(identity)
	if !sw.IsIdentity() {
		t.Errorf("expected identity swizzle, got %v", sw)
	}

	broadcastX := Token(0b00_00_00_00 << swizzleShift)
	sw2 := SrcSwizzle(broadcastX)
	if !sw2.IsScalarBroadcast() {
		t.Errorf("expected scalar broadcast swizzle, got %v", sw2)
	}
}

func TestReaderCursorAndPhasePromotion(t *testing.T) {
	words := []uint32{
		0xFFFF0104, // ps_1_4
		uint32(OpMov),
		0,
		0,
		uint32(OpEnd),
	}
	r := NewReader(words)
	if r.Version.Stage != StagePixel || r.Version.Major != 1 || r.Version.Minor != 4 {
		t.Fatalf("unexpected version: %+v", r.Version)
	}

	r.PromoteToPS20()
	major, minor := r.EffectiveVersion()
	if major != 2 || minor != 0 {
		t.Errorf("PromoteToPS20: got (%d,%d), want (2,0)", major, minor)
	}

	tok := r.Next()
	if Opc(tok) != OpMov {
		t.Errorf("Next() opcode = %v, want OpMov", Opc(tok))
	}
	r.Skip(2)
	if Opc(r.Next()) != OpEnd {
		t.Errorf("expected to land on OpEnd")
	}
	if !r.Done() {
		t.Errorf("expected Done() after consuming the stream")
	}
}

func TestUsageLocationTable(t *testing.T) {
	cases := []struct {
		usage Usage
		index int
		want  int
	}{
		{UsagePosition, 0, 0},
		{UsageBlendWeight, 0, 2},
		{UsageBlendIndices, 0, 5},
		{UsageNormal, 0, 8},
		{UsageTexCoord, 0, 11},
		{UsageTexCoord, 5, 16},
		{UsageTangent, 0, 27},
		{UsageBinormal, 0, 28},
		{UsageTessFactor, 0, 29},
		{UsageColor, 0, 30},
		{UsageColor, 1, 31},
		{UsageFog, 0, 24},
		{UsageDepth, 0, 25},
		{UsageSample, 0, 26},
	}
	for _, c := range cases {
		if got := UsageLocation(c.usage, c.index); got != c.want {
			t.Errorf("UsageLocation(%v,%d) = %d, want %d", c.usage, c.index, got, c.want)
		}
	}
}

func TestUnsupportedOpcodes(t *testing.T) {
	for _, op := range []Opcode{OpLabel, OpCall, OpSetp, OpBreakP, OpBreakC, OpTexLdd} {
		if _, ok := Unsupported(op); !ok {
			t.Errorf("expected %v to be marked unsupported", op)
		}
	}
	if _, ok := Unsupported(OpAdd); ok {
		t.Errorf("OpAdd should not be marked unsupported")
	}
}
