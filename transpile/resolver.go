package transpile

import (
	"github.com/d3d9spv/transpiler/d3dsm"
	"github.com/d3d9spv/transpiler/spirv"
)

// Shape is the requested arity/kind of a resolved source operand
// (spec.md §4.5's "want ∈ {scalar, vec2, vec3, vec4, mat3x3, mat4x4, sampler}").
type Shape uint8

const (
	ShapeScalar Shape = iota
	ShapeVec2
	ShapeVec3
	ShapeVec4
	ShapeMat3x3
	ShapeMat4x4
	ShapeSampler
)

func (s Shape) arity() uint32 {
	switch s {
	case ShapeScalar:
		return 1
	case ShapeVec2:
		return 2
	case ShapeVec3:
		return 3
	case ShapeVec4:
		return 4
	default:
		return 0
	}
}

// remapConstClass folds the CONST2/3/4 parameter classes onto the plain
// constant-float address space (spec.md §4.5 step 1).
func remapConstClass(class d3dsm.RegisterType, number int) (d3dsm.RegisterType, int) {
	switch class {
	case d3dsm.RegConst2:
		return d3dsm.RegConst, number + 2048
	case d3dsm.RegConst3:
		return d3dsm.RegConst, number + 4096
	case d3dsm.RegConst4:
		return d3dsm.RegConst, number + 6144
	default:
		return class, number
	}
}

// resolve loads and shapes a source parameter token into a value id of the
// requested Shape (spec.md §4.5).
func (tr *Transpiler) resolve(src d3dsm.Token, want Shape) uint32 {
	class, number := remapConstClass(d3dsm.RegType(src), d3dsm.RegNumber(src))
	key := regKey{Class: class, Number: number}

	if want == ShapeMat4x4 || want == ShapeMat3x3 {
		return tr.resolveMatrix(key, want)
	}
	if class == d3dsm.RegSampler {
		b := tr.declare(key, 0)
		return b.ptr
	}

	raw, rawDesc := tr.resolveScalarOrVector(key)
	if fixed := tr.applyVertexInputFixups(class, key, raw, rawDesc); fixed != raw {
		raw, rawDesc = fixed, Vec(TagFloat, 4) // both fixups produce a float vec4
	}
	raw = tr.applySourceModifier(d3dsm.SrcModifierOf(src), raw, rawDesc)
	out := tr.applySwizzle(raw, rawDesc, d3dsm.SrcSwizzle(src), want)
	// Record the shaped value's type for coerceOperands, IF and commit.
	desc := rawDesc
	if n := want.arity(); rawDesc.Primary == TagVector && n == 1 {
		desc = Scalar(rawDesc.Secondary)
	} else if rawDesc.Primary == TagVector && n > 1 {
		desc = Vec(rawDesc.Secondary, n)
	}
	tr.idt.setType(out, desc)
	return out
}

// resolveScalarOrVector loads the raw (unswizzled, unmodified) value behind
// a register reference, whatever kind of register it is.
func (tr *Transpiler) resolveScalarOrVector(key regKey) (uint32, TypeDescriptor) {
	for i := len(tr.loopStack) - 1; i >= 0; i-- {
		if f := tr.loopStack[i]; f.kind == loopKindLoop && f.aLKey == key {
			return f.counterPhi, Scalar(TagInt) // inside a LOOP, aL is the counter
		}
	}
	switch key.Class {
	case d3dsm.RegConst:
		ptr := tr.uniforms.floatConstPtr(tr, key.Number)
		desc := Vec(TagFloat, 4)
		return tr.b.AddLoad(tr.types.ID(desc), ptr), desc
	case d3dsm.RegConstInt:
		ptr := tr.uniforms.intConstPtr(tr, key.Number)
		desc := Vec(TagInt, 4)
		return tr.b.AddLoad(tr.types.ID(desc), ptr), desc
	case d3dsm.RegConstBool:
		ptr := tr.uniforms.boolConstPtr(tr, key.Number)
		desc := Scalar(TagInt)
		raw := tr.b.AddLoad(tr.types.ID(desc), ptr)
		boolT := tr.types.ID(Scalar(TagBool))
		zero := tr.b.AddConstant(tr.types.ID(desc), 0)
		b := tr.b.AddBinaryOp(spirv.OpINotEqual, boolT, raw, zero)
		return b, Scalar(TagBool)
	default:
		bnd := tr.declare(key, 0)
		id := tr.b.AddLoad(tr.types.ID(bnd.elem), bnd.ptr)
		return id, bnd.elem
	}
}

func (tr *Transpiler) applyVertexInputFixups(class d3dsm.RegisterType, key regKey, raw uint32, desc TypeDescriptor) uint32 {
	if class != d3dsm.RegInput || tr.stage != d3dsm.StageVertex {
		return raw
	}
	usage, _ := tr.idt.usage(key)
	if usage == d3dsm.UsageColor && desc.Primary == TagVector && desc.Secondary == TagUInt {
		floatVecT := tr.types.ID(Vec(TagFloat, 4))
		asFloat := tr.b.AddUnaryOp(spirv.OpConvertUToF, floatVecT, raw)
		c255 := tr.b.AddConstantFloat32(tr.types.ID(Scalar(TagFloat)), 255)
		divisor := tr.b.AddCompositeConstruct(floatVecT, c255, c255, c255, c255)
		return tr.b.AddBinaryOp(spirv.OpFDiv, floatVecT, asFloat, divisor)
	}
	if usage == d3dsm.UsagePosition || usage == d3dsm.UsagePositionT {
		floatVecT := tr.types.ID(Vec(TagFloat, 4))
		one := tr.b.AddConstantFloat32(tr.types.ID(Scalar(TagFloat)), 1)
		return tr.b.AddCompositeInsert(floatVecT, one, raw, 3)
	}
	return raw
}

func (tr *Transpiler) applySourceModifier(mod d3dsm.SourceModifier, raw uint32, desc TypeDescriptor) uint32 {
	t := tr.types.ID(desc)
	isFloat := desc.Primary == TagFloat || (desc.Primary == TagVector && desc.Secondary == TagFloat)
	switch mod {
	case d3dsm.SrcModNone:
		return raw
	case d3dsm.SrcModNegate:
		if isFloat {
			return tr.b.AddUnaryOp(spirv.OpFNegate, t, raw)
		}
		return tr.b.AddUnaryOp(spirv.OpSNegate, t, raw)
	case d3dsm.SrcModAbs:
		return tr.extInst(t, spirv.GLSLstd450FAbs, raw)
	case d3dsm.SrcModAbsNegate:
		abs := tr.extInst(t, spirv.GLSLstd450FAbs, raw)
		return tr.b.AddUnaryOp(spirv.OpFNegate, t, abs)
	case d3dsm.SrcModSign:
		return tr.extInst(t, spirv.GLSLstd450FSign, raw)
	case d3dsm.SrcModSignNegate:
		sgn := tr.extInst(t, spirv.GLSLstd450FSign, raw)
		return tr.b.AddUnaryOp(spirv.OpFNegate, t, sgn)
	case d3dsm.SrcModComplement:
		one := tr.onesLike(desc)
		return tr.b.AddBinaryOp(spirv.OpFSub, t, one, raw)
	default:
		tr.warnf(contractViolation, "source modifier %d is not modeled; operand used unmodified", mod)
		return raw
	}
}

// applySwizzle extracts/shuffles raw into the shape the caller asked for.
func (tr *Transpiler) applySwizzle(raw uint32, desc TypeDescriptor, sw d3dsm.Swizzle, want Shape) uint32 {
	if desc.Primary != TagVector {
		return raw // scalar constants (bools) ignore swizzle entirely
	}
	n := want.arity()
	if n == 0 {
		return raw
	}
	if n == 4 && sw.IsIdentity() {
		return raw
	}
	scalarT := tr.types.ID(Scalar(desc.Secondary))
	if sw.IsScalarBroadcast() {
		comp := tr.b.AddCompositeExtract(scalarT, raw, uint32(sw[0]))
		if n == 1 {
			return comp
		}
		vecT := tr.types.ID(Vec(desc.Secondary, n))
		args := make([]uint32, n)
		for i := range args {
			args[i] = comp
		}
		return tr.b.AddCompositeConstruct(vecT, args...)
	}
	if n == 1 {
		return tr.b.AddCompositeExtract(scalarT, raw, uint32(sw[0]))
	}
	vecT := tr.types.ID(Vec(desc.Secondary, n))
	comps := make([]uint32, n)
	for i := uint32(0); i < n; i++ {
		comps[i] = uint32(sw[i])
	}
	return tr.b.AddVectorShuffle(vecT, raw, raw, comps)
}

// resolveMatrix builds a 4x4 or 3x3 matrix from the constant register at
// key and its three adjacent registers (spec.md §4.5 step 6, §9's
// vec4->matN coercion path), caching the result per source id.
func (tr *Transpiler) resolveMatrix(key regKey, want Shape) uint32 {
	c0key := key
	rows := make([]uint32, 4)
	for i := 0; i < 4; i++ {
		k := regKey{Class: c0key.Class, Number: c0key.Number + i}
		rows[i], _ = tr.resolveScalarOrVector(k)
	}
	vec4T := tr.types.ID(Vec(TagFloat, 4))
	if id, ok := tr.idt.vec4ToMat4[rows[0]]; ok && want == ShapeMat4x4 {
		return id
	}
	mat4T := tr.types.ID(Mat(4, 4))
	mat4 := tr.b.AddCompositeConstruct(mat4T, rows[0], rows[1], rows[2], rows[3])
	tr.idt.vec4ToMat4[rows[0]] = mat4
	if want == ShapeMat4x4 {
		return mat4
	}
	if id, ok := tr.idt.vec4ToMat3[rows[0]]; ok {
		return id
	}
	vec3T := tr.types.ID(Vec(TagFloat, 3))
	col := func(v uint32) uint32 {
		return tr.b.AddVectorShuffle(vec3T, v, v, []uint32{0, 1, 2})
	}
	mat3T := tr.types.ID(Mat(3, 3))
	mat3 := tr.b.AddCompositeConstruct(mat3T, col(rows[0]), col(rows[1]), col(rows[2]))
	tr.idt.vec4ToMat3[rows[0]] = mat3
	_ = vec4T
	return mat3
}

// buildMatrixFromRegisters loads numRegs adjacent vec4 constant registers
// starting at key and assembles them into a numRegs-column matrix whose
// columns are truncated to inputWidth components (spec.md §9's vec4->matN
// coercion, generalized for the asymmetric M4x3/M3x4/M3x2 instruction
// forms, spec.md §4.7's Matrix-vector group).
func (tr *Transpiler) buildMatrixFromRegisters(key regKey, numRegs, inputWidth uint32) uint32 {
	rows := make([]uint32, numRegs)
	for i := uint32(0); i < numRegs; i++ {
		k := regKey{Class: key.Class, Number: key.Number + int(i)}
		rows[i], _ = tr.resolveScalarOrVector(k)
	}
	if inputWidth != 4 {
		vecT := tr.types.ID(Vec(TagFloat, inputWidth))
		comps := make([]uint32, inputWidth)
		for i := range comps {
			comps[i] = uint32(i)
		}
		for i, v := range rows {
			rows[i] = tr.b.AddVectorShuffle(vecT, v, v, comps)
		}
	}
	matT := tr.types.ID(Mat(numRegs, inputWidth))
	return tr.b.AddCompositeConstruct(matT, rows...)
}

func (tr *Transpiler) extInst(resultType uint32, op uint32, operands ...uint32) uint32 {
	return tr.b.AddExtInst(resultType, tr.glslExtSet, op, operands...)
}

// onesLike returns a value of 1.0 shaped like desc (scalar or vector),
// used by the "complement" source modifier (1 - x).
func (tr *Transpiler) onesLike(desc TypeDescriptor) uint32 {
	scalarT := tr.types.ID(Scalar(TagFloat))
	one := tr.b.AddConstantFloat32(scalarT, 1)
	if desc.Primary != TagVector {
		return one
	}
	vecT := tr.types.ID(desc)
	args := make([]uint32, desc.Count)
	for i := range args {
		args[i] = one
	}
	return tr.b.AddCompositeConstruct(vecT, args...)
}
