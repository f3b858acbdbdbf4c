package transpile

import (
	"github.com/d3d9spv/transpiler/d3dsm"
	"github.com/d3d9spv/transpiler/spirv"
)

// dispatchUnaryTranscendental handles the single-source instructions of
// spec.md §4.7's Transcendentals group: RCP, RSQ, EXP/EXPP, LOG/LOGP, FRC,
// ABS, SGN. RCP, RSQ, EXP/EXPP and LOG/LOGP read one scalar source from the
// .x channel per the D3D ISA, and commit broadcasts the scalar result across
// the destination; FRC, ABS and SGN work per component on a vec4 source.
func (tr *Transpiler) dispatchUnaryTranscendental(op d3dsm.Opcode, tok d3dsm.Token) {
	dst := tr.reader.Next()
	s0 := tr.reader.Next()
	scalarT := tr.types.ID(Scalar(TagFloat))

	switch op {
	case d3dsm.OpRcp:
		x := tr.resolve(s0, ShapeScalar)
		one := tr.b.AddConstantFloat32(scalarT, 1)
		result := tr.b.AddBinaryOp(spirv.OpFDiv, scalarT, one, x)
		tr.idt.setType(result, Scalar(TagFloat))
		tr.commit(dst, result)
	case d3dsm.OpRsq:
		x := tr.resolve(s0, ShapeScalar)
		abs := tr.extInst(scalarT, spirv.GLSLstd450FAbs, x)
		result := tr.extInst(scalarT, spirv.GLSLstd450InverseSqrt, abs)
		tr.idt.setType(result, Scalar(TagFloat))
		tr.commit(dst, result)
	case d3dsm.OpExp, d3dsm.OpExpP:
		x := tr.resolve(s0, ShapeScalar)
		result := tr.extInst(scalarT, spirv.GLSLstd450Exp2, x)
		tr.idt.setType(result, Scalar(TagFloat))
		tr.commit(dst, result)
	case d3dsm.OpLog, d3dsm.OpLogP:
		x := tr.resolve(s0, ShapeScalar)
		abs := tr.extInst(scalarT, spirv.GLSLstd450FAbs, x)
		result := tr.extInst(scalarT, spirv.GLSLstd450Log2, abs)
		tr.idt.setType(result, Scalar(TagFloat))
		tr.commit(dst, result)
	case d3dsm.OpFrc:
		v := tr.resolve(s0, ShapeVec4)
		desc := Vec(TagFloat, 4)
		t := tr.types.ID(desc)
		scratchPtrT := tr.b.AddTypePointer(spirv.StorageClassPrivate, t)
		scratch := tr.b.AddVariable(scratchPtrT, spirv.StorageClassPrivate)
		result := tr.extInst(t, spirv.GLSLstd450Modf, v, scratch)
		tr.idt.setType(result, desc)
		tr.commit(dst, result)
	case d3dsm.OpAbs:
		v := tr.resolve(s0, ShapeVec4)
		desc := Vec(TagFloat, 4)
		t := tr.types.ID(desc)
		result := tr.extInst(t, spirv.GLSLstd450FAbs, v)
		tr.idt.setType(result, desc)
		tr.commit(dst, result)
	case d3dsm.OpSgn:
		v := tr.resolve(s0, ShapeVec4)
		desc := Vec(TagFloat, 4)
		t := tr.types.ID(desc)
		result := tr.extInst(t, spirv.GLSLstd450FSign, v)
		tr.idt.setType(result, desc)
		tr.commit(dst, result)
	}
}

func (tr *Transpiler) dispatchPow(tok d3dsm.Token) {
	dst := tr.reader.Next()
	s0 := tr.reader.Next()
	s1 := tr.reader.Next()
	base := tr.resolve(s0, ShapeScalar)
	exp := tr.resolve(s1, ShapeScalar)
	scalarT := tr.types.ID(Scalar(TagFloat))
	result := tr.extInst(scalarT, spirv.GLSLstd450Pow, base, exp)
	tr.idt.setType(result, Scalar(TagFloat))
	tr.commit(dst, result)
}

// dispatchLit approximates the D3DSIO_LIT lighting-coefficient helper as
// (1, max(s0.x,0), s0.x>0 && s0.y>0 ? pow(s0.y,s0.w) : 0, 1); this is the
// closest faithful reproduction of the fixed-function lighting formula
// without modeling its power-clamp edge cases bit-for-bit (spec.md §7
// contract-violation class: approximated, not fully modeled).
func (tr *Transpiler) dispatchLit(tok d3dsm.Token) {
	dst := tr.reader.Next()
	s0 := tr.reader.Next()
	tr.warnf(contractViolation, "LIT is approximated (clamp/specular edge cases are not modeled bit-exactly)")
	v := tr.resolve(s0, ShapeVec4)
	scalarT := tr.types.ID(Scalar(TagFloat))
	one := tr.b.AddConstantFloat32(scalarT, 1)
	zero := tr.b.AddConstantFloat32(scalarT, 0)
	x := tr.b.AddCompositeExtract(scalarT, v, 0)
	y := tr.b.AddCompositeExtract(scalarT, v, 1)
	w := tr.b.AddCompositeExtract(scalarT, v, 3)
	diffuse := tr.extInst(scalarT, spirv.GLSLstd450FMax, x, zero)
	powYW := tr.extInst(scalarT, spirv.GLSLstd450Pow, y, w)
	boolT := tr.types.ID(Scalar(TagBool))
	xPos := tr.b.AddBinaryOp(spirv.OpFOrdGreaterThan, boolT, x, zero)
	yPos := tr.b.AddBinaryOp(spirv.OpFOrdGreaterThan, boolT, y, zero)
	bothPos := tr.b.AddBinaryOp(spirv.OpLogicalAnd, boolT, xPos, yPos)
	specular := tr.b.AddSelect(scalarT, bothPos, powYW, zero)
	vec4T := tr.types.ID(Vec(TagFloat, 4))
	result := tr.b.AddCompositeConstruct(vec4T, one, diffuse, specular, one)
	tr.idt.setType(result, Vec(TagFloat, 4))
	tr.commit(dst, result)
}

// dispatchSinCos computes sin/cos of a scalar source, per spec.md §9: the
// effective shader model governs how many source operands the instruction
// carries (ps.1.x/2.0 took two extra Taylor-coefficient scratch registers
// that real drivers ignored; ps.3.0 dropped them).
func (tr *Transpiler) dispatchSinCos(tok d3dsm.Token) {
	dst := tr.reader.Next()
	s0 := tr.reader.Next()
	major, _ := tr.reader.EffectiveVersion()
	if major <= 2 {
		tr.reader.Skip(2) // scratch Taylor-coefficient operands, unused by any real driver
	}
	x := tr.resolve(s0, ShapeScalar)
	scalarT := tr.types.ID(Scalar(TagFloat))
	sin := tr.extInst(scalarT, spirv.GLSLstd450Sin, x)
	cos := tr.extInst(scalarT, spirv.GLSLstd450Cos, x)
	vec4T := tr.types.ID(Vec(TagFloat, 4))
	result := tr.b.AddCompositeConstruct(vec4T, cos, sin, cos, sin)
	tr.idt.setType(result, Vec(TagFloat, 4))
	tr.commit(dst, result)
}
