package transpile

import (
	"github.com/d3d9spv/transpiler/d3dsm"
	"github.com/d3d9spv/transpiler/spirv"
)

// dispatchBinary handles the two-source arithmetic/comparison instructions
// (spec.md §4.7's Arithmetic group): ADD, SUB, MUL, MIN, MAX, SGE, SLT. Each
// resolves both sources at the destination's natural vec4 width, then picks
// an integer or float opcode from the resolved operand type.
func (tr *Transpiler) dispatchBinary(op d3dsm.Opcode, tok d3dsm.Token) {
	dst := tr.reader.Next()
	s0 := tr.reader.Next()
	s1 := tr.reader.Next()
	a := tr.resolve(s0, ShapeVec4)
	b := tr.resolve(s1, ShapeVec4)
	a, b, desc := tr.coerceOperands(a, b)
	t := tr.types.ID(desc)

	var result uint32
	switch op {
	case d3dsm.OpAdd:
		result = tr.b.AddBinaryOp(tr.arithOp(desc, spirv.OpFAdd, spirv.OpIAdd), t, a, b)
	case d3dsm.OpSub:
		result = tr.b.AddBinaryOp(tr.arithOp(desc, spirv.OpFSub, spirv.OpISub), t, a, b)
	case d3dsm.OpMul:
		result = tr.b.AddBinaryOp(tr.arithOp(desc, spirv.OpFMul, spirv.OpIMul), t, a, b)
	case d3dsm.OpMin:
		result = tr.extInst(t, tr.glslMinMax(desc, true), a, b)
	case d3dsm.OpMax:
		result = tr.extInst(t, tr.glslMinMax(desc, false), a, b)
	case d3dsm.OpSge, d3dsm.OpSlt:
		boolDesc := boolLike(desc)
		boolT := tr.types.ID(boolDesc)
		cmpOp := spirv.OpFOrdGreaterThanEqual
		if op == d3dsm.OpSlt {
			cmpOp = spirv.OpFOrdLessThan
		}
		cmp := tr.b.AddBinaryOp(cmpOp, boolT, a, b)
		result = tr.selectOneZero(cmp, boolDesc)
	}
	tr.idt.setType(result, desc)
	tr.commit(dst, result)
}

// dispatchTernary handles MAD, LRP, CMP, and DP2ADD: every one of these
// takes three sources and produces a single fused result.
func (tr *Transpiler) dispatchTernary(op d3dsm.Opcode, tok d3dsm.Token) {
	dst := tr.reader.Next()
	s0 := tr.reader.Next()
	s1 := tr.reader.Next()
	s2 := tr.reader.Next()

	switch op {
	case d3dsm.OpMad:
		a := tr.resolve(s0, ShapeVec4)
		b := tr.resolve(s1, ShapeVec4)
		c := tr.resolve(s2, ShapeVec4)
		desc := Vec(TagFloat, 4)
		t := tr.types.ID(desc)
		mul := tr.b.AddBinaryOp(spirv.OpFMul, t, a, b)
		result := tr.b.AddBinaryOp(spirv.OpFAdd, t, mul, c)
		tr.idt.setType(result, desc)
		tr.commit(dst, result)
	case d3dsm.OpLrp:
		// lrp dst, s0, s1, s2 == s2 + s0*(s1-s2)
		f := tr.resolve(s0, ShapeVec4)
		x := tr.resolve(s1, ShapeVec4)
		y := tr.resolve(s2, ShapeVec4)
		desc := Vec(TagFloat, 4)
		t := tr.types.ID(desc)
		result := tr.extInst(t, spirv.GLSLstd450FMix, y, x, f)
		tr.idt.setType(result, desc)
		tr.commit(dst, result)
	case d3dsm.OpCmp:
		// cmp dst, s0, s1, s2 == (s0 >= 0) ? s1 : s2, per component.
		cond := tr.resolve(s0, ShapeVec4)
		x := tr.resolve(s1, ShapeVec4)
		y := tr.resolve(s2, ShapeVec4)
		desc := Vec(TagFloat, 4)
		vecT := tr.types.ID(desc)
		zero := tr.zerosLike(desc)
		boolVecT := tr.types.ID(Vec(TagBool, 4))
		ge := tr.b.AddBinaryOp(spirv.OpFOrdGreaterThanEqual, boolVecT, cond, zero)
		result := tr.b.AddSelect(vecT, ge, x, y)
		tr.idt.setType(result, desc)
		tr.commit(dst, result)
	case d3dsm.OpDp2Add:
		// dp2add dst, s0, s1, s2 == dot(s0.xy, s1.xy) + s2.x
		a := tr.resolve(s0, ShapeVec2)
		b := tr.resolve(s1, ShapeVec2)
		c := tr.resolve(s2, ShapeScalar)
		scalarT := tr.types.ID(Scalar(TagFloat))
		dot := tr.b.AddDot(scalarT, a, b)
		result := tr.b.AddBinaryOp(spirv.OpFAdd, scalarT, dot, c)
		tr.idt.setType(result, Scalar(TagFloat))
		tr.commit(dst, result)
	}
}

// dispatchDot handles DP3 and DP4.
func (tr *Transpiler) dispatchDot(op d3dsm.Opcode, tok d3dsm.Token) {
	dst := tr.reader.Next()
	s0 := tr.reader.Next()
	s1 := tr.reader.Next()
	want := ShapeVec3
	if op == d3dsm.OpDp4 {
		want = ShapeVec4
	}
	a := tr.resolve(s0, want)
	b := tr.resolve(s1, want)
	scalarT := tr.types.ID(Scalar(TagFloat))
	result := tr.b.AddDot(scalarT, a, b)
	tr.idt.setType(result, Scalar(TagFloat))
	tr.commit(dst, result)
}

func (tr *Transpiler) dispatchCross(tok d3dsm.Token) {
	dst := tr.reader.Next()
	s0 := tr.reader.Next()
	s1 := tr.reader.Next()
	a := tr.resolve(s0, ShapeVec3)
	b := tr.resolve(s1, ShapeVec3)
	vec3T := tr.types.ID(Vec(TagFloat, 3))
	result := tr.extInst(vec3T, spirv.GLSLstd450Cross, a, b)
	tr.idt.setType(result, Vec(TagFloat, 3))
	tr.commit(dst, result)
}

// dispatchDst builds the D3DSIO_DST distance vector: (1, s0.y*s1.y, s0.z, s1.w).
func (tr *Transpiler) dispatchDst(tok d3dsm.Token) {
	dst := tr.reader.Next()
	s0 := tr.reader.Next()
	s1 := tr.reader.Next()
	a := tr.resolve(s0, ShapeVec4)
	b := tr.resolve(s1, ShapeVec4)
	scalarT := tr.types.ID(Scalar(TagFloat))
	one := tr.b.AddConstantFloat32(scalarT, 1)
	ay := tr.b.AddCompositeExtract(scalarT, a, 1)
	by := tr.b.AddCompositeExtract(scalarT, b, 1)
	yy := tr.b.AddBinaryOp(spirv.OpFMul, scalarT, ay, by)
	az := tr.b.AddCompositeExtract(scalarT, a, 2)
	bw := tr.b.AddCompositeExtract(scalarT, b, 3)
	vec4T := tr.types.ID(Vec(TagFloat, 4))
	result := tr.b.AddCompositeConstruct(vec4T, one, yy, az, bw)
	tr.idt.setType(result, Vec(TagFloat, 4))
	tr.commit(dst, result)
}

func (tr *Transpiler) dispatchNrm(tok d3dsm.Token) {
	dst := tr.reader.Next()
	s0 := tr.reader.Next()
	a := tr.resolve(s0, ShapeVec3)
	vec3T := tr.types.ID(Vec(TagFloat, 3))
	result := tr.extInst(vec3T, spirv.GLSLstd450Normalize, a)
	tr.idt.setType(result, Vec(TagFloat, 3))
	tr.commit(dst, result)
}

// dispatchMatrixVector handles M4x4/M4x3/M3x4/M3x3/M3x2: multiply a vector
// by a matrix built from adjacent constant registers, one per output
// component (four for M4x4/M3x4, three for M4x3/M3x3, two for M3x2; see
// matrixVectorShape) (spec.md §9's vec4->matN coercion, exercised by
// spec.md §8 scenario 4).
func (tr *Transpiler) dispatchMatrixVector(op d3dsm.Opcode, tok d3dsm.Token) {
	dst := tr.reader.Next()
	s0 := tr.reader.Next()
	s1 := tr.reader.Next()

	inputWidth, numRegs, inWant := matrixVectorShape(op)
	class, number := remapConstClass(d3dsm.RegType(s1), d3dsm.RegNumber(s1))
	mat := tr.buildMatrixFromRegisters(regKey{Class: class, Number: number}, numRegs, inputWidth)
	vec := tr.resolve(s0, inWant)

	outDesc := Vec(TagFloat, numRegs)
	outT := tr.types.ID(outDesc)
	result := tr.b.AddVectorTimesMatrix(outT, vec, mat)
	tr.idt.setType(result, outDesc)
	tr.commit(dst, result)
}

// matrixVectorShape maps the five D3D matrix opcodes to (input vector
// width, number of constant registers consumed = output width, input
// Shape). D3D's "MaxB" naming is input-width x output-width: M4x3 takes a
// vec4 and uses 3 registers to produce a vec3; M3x4 takes a vec3 and uses 4
// registers to produce a vec4.
func matrixVectorShape(op d3dsm.Opcode) (inputWidth, numRegs uint32, inWant Shape) {
	switch op {
	case d3dsm.OpM4x4:
		return 4, 4, ShapeVec4
	case d3dsm.OpM4x3:
		return 4, 3, ShapeVec4
	case d3dsm.OpM3x4:
		return 3, 4, ShapeVec3
	case d3dsm.OpM3x3:
		return 3, 3, ShapeVec3
	case d3dsm.OpM3x2:
		return 3, 2, ShapeVec3
	default:
		return 4, 4, ShapeVec4
	}
}

// coerceOperands implements spec.md §7's benign-coercion path: when two
// binary-op sources disagree on int vs float, both are pulled into float
// (the common case: ps.1.x interpolated registers arrive as uint4, D3D
// constants as float4, and the ISA never intended them to mix meaningfully).
func (tr *Transpiler) coerceOperands(a, b uint32) (uint32, uint32, TypeDescriptor) {
	da, _ := tr.idt.typeOf(a)
	db, _ := tr.idt.typeOf(b)
	if da == db && da.Primary != TagVoid {
		return a, b, da
	}
	if isFloaty(da) && isFloaty(db) {
		return a, b, pickWider(da, db)
	}
	tr.warnf(benignCoercion, "binary operator operands have mismatched types; coercing both to float4")
	floatDesc := Vec(TagFloat, 4)
	floatT := tr.types.ID(floatDesc)
	if !isFloaty(da) {
		a = tr.b.AddUnaryOp(spirv.OpConvertUToF, floatT, a)
	}
	if !isFloaty(db) {
		b = tr.b.AddUnaryOp(spirv.OpConvertUToF, floatT, b)
	}
	return a, b, floatDesc
}

func isFloaty(d TypeDescriptor) bool {
	return d.Primary == TagFloat || (d.Primary == TagVector && d.Secondary == TagFloat)
}

func pickWider(a, b TypeDescriptor) TypeDescriptor {
	if a.Count >= b.Count {
		return a
	}
	return b
}

func boolLike(desc TypeDescriptor) TypeDescriptor {
	if desc.Primary == TagVector {
		return Vec(TagBool, desc.Count)
	}
	return Scalar(TagBool)
}

func (tr *Transpiler) arithOp(desc TypeDescriptor, floatOp, intOp spirv.OpCode) spirv.OpCode {
	if isFloaty(desc) {
		return floatOp
	}
	return intOp
}

func (tr *Transpiler) glslMinMax(desc TypeDescriptor, wantMin bool) uint32 {
	if isFloaty(desc) {
		if wantMin {
			return spirv.GLSLstd450FMin
		}
		return spirv.GLSLstd450FMax
	}
	if wantMin {
		return spirv.GLSLstd450SMin
	}
	return spirv.GLSLstd450SMax
}

// selectOneZero turns a per-component boolean vector/scalar into 1.0/0.0,
// the result shape D3DSIO_SGE/SLT actually produce.
func (tr *Transpiler) selectOneZero(cond uint32, boolDesc TypeDescriptor) uint32 {
	floatDesc := Vec(TagFloat, 4)
	if boolDesc.Primary != TagVector {
		floatDesc = Scalar(TagFloat)
	} else {
		floatDesc = Vec(TagFloat, boolDesc.Count)
	}
	t := tr.types.ID(floatDesc)
	one := tr.onesLike(floatDesc)
	zero := tr.zerosLike(floatDesc)
	return tr.b.AddSelect(t, cond, one, zero)
}
