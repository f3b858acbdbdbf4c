package transpile

import (
	"github.com/d3d9spv/transpiler/d3dsm"
	"github.com/d3d9spv/transpiler/spirv"
)

// commit is the Write-Mask Committer (spec.md §4.6): it stores (or
// rebinds) value into the destination register named by dst, applying the
// _sat modifier and the write mask. A scalar value written to a vector
// register of the same scalar type is first broadcast to the register's
// width; a vector value written to a scalar-backed register (the address
// register, the depth output) stores its x component; per-channel stores
// extract the written channels out of the (broadcast) value.
func (tr *Transpiler) commit(dst d3dsm.Token, value uint32) uint32 {
	class, number := d3dsm.RegType(dst), d3dsm.RegNumber(dst)
	key := regKey{Class: class, Number: number}
	mask := d3dsm.DestWriteMask(dst)
	mods := d3dsm.DestModifiers(dst)

	desc, ok := tr.idt.typeOf(value)
	if !ok {
		desc = Vec(TagFloat, 4)
	}

	if mods&d3dsm.DestModSaturate != 0 && tagOf(desc) != TagBool {
		value = tr.saturate(value, desc)
	}

	bnd := tr.declare(key, 0)
	if bnd.readOnly {
		tr.idt.bind(key, value)
		return value
	}
	if bnd.ptr == 0 {
		tr.idt.bind(key, value)
		return value
	}
	if desc.Primary != TagVector && bnd.elem.Primary == TagVector && desc.Primary == bnd.elem.Secondary {
		// Scalar results (DP3/DP4, RCP, POW, ...) broadcast across the register.
		args := make([]uint32, bnd.elem.Count)
		for i := range args {
			args[i] = value
		}
		value = tr.b.AddCompositeConstruct(tr.types.ID(bnd.elem), args...)
		desc = bnd.elem
		tr.idt.setType(value, desc)
	}

	if mask == d3dsm.MaskAll || bnd.elem.Primary != TagVector {
		if desc.Primary == TagVector && bnd.elem.Primary != TagVector {
			scalarT := tr.types.ID(Scalar(bnd.elem.Primary))
			value = tr.b.AddCompositeExtract(scalarT, value, 0)
		}
		tr.b.AddStore(bnd.ptr, value)
		tr.idt.bind(key, value)
		return value
	}

	scalarT := tr.types.ID(Scalar(bnd.elem.Secondary))
	for _, ch := range mask.Components() {
		comp := tr.b.AddCompositeExtract(scalarT, value, uint32(ch))
		idxT := tr.types.ID(Scalar(TagUInt))
		idx := tr.b.AddConstant(idxT, uint32(ch))
		elemPtrT := tr.types.ID(PtrTo(bnd.class, Scalar(bnd.elem.Secondary)))
		elemPtr := tr.b.AddAccessChain(elemPtrT, bnd.ptr, idx)
		tr.b.AddStore(elemPtr, comp)
	}
	tr.idt.bind(key, value)
	return value
}

// saturate clamps value to [0,1] via the GLSL-extended FClamp/UClamp
// (spec.md §4.6 step 2). D3D saturate is documented as a float operation,
// but a _sat destination can still receive an int/uint-typed result (e.g.
// MIN/MAX/SGE feeding straight into a saturated MOV before any implicit
// float coercion runs), so the integer family clamps via UClamp against
// 0/1 rather than FClamp against float constants of the wrong type.
func (tr *Transpiler) saturate(value uint32, desc TypeDescriptor) uint32 {
	t := tr.types.ID(desc)
	if tagOf(desc) == TagInt || tagOf(desc) == TagUInt {
		zero := tr.intLike(desc, 0)
		one := tr.intLike(desc, 1)
		return tr.extInst(t, spirv.GLSLstd450UClamp, value, zero, one)
	}
	zero := tr.zerosLike(desc)
	one := tr.onesLike(desc)
	return tr.extInst(t, spirv.GLSLstd450FClamp, value, zero, one)
}

// tagOf returns a descriptor's scalar tag whether it's itself a scalar or a
// vector of scalars.
func tagOf(desc TypeDescriptor) Tag {
	if desc.Primary == TagVector {
		return desc.Secondary
	}
	return desc.Primary
}

// intLike returns a constant value of the given literal shaped like desc
// (scalar or vector), using desc's own int/uint scalar tag.
func (tr *Transpiler) intLike(desc TypeDescriptor, literal uint32) uint32 {
	tag := tagOf(desc)
	scalarT := tr.types.ID(Scalar(tag))
	c := tr.b.AddConstant(scalarT, literal)
	if desc.Primary != TagVector {
		return c
	}
	vecT := tr.types.ID(desc)
	args := make([]uint32, desc.Count)
	for i := range args {
		args[i] = c
	}
	return tr.b.AddCompositeConstruct(vecT, args...)
}

func (tr *Transpiler) zerosLike(desc TypeDescriptor) uint32 {
	scalarT := tr.types.ID(Scalar(TagFloat))
	zero := tr.b.AddConstantFloat32(scalarT, 0)
	if desc.Primary != TagVector {
		return zero
	}
	vecT := tr.types.ID(desc)
	args := make([]uint32, desc.Count)
	for i := range args {
		args[i] = zero
	}
	return tr.b.AddCompositeConstruct(vecT, args...)
}
