package transpile

import (
	"fmt"

	"github.com/d3d9spv/transpiler/d3dsm"
	"github.com/d3d9spv/transpiler/spirv"
)

// binding is what a D3D register resolves to once declared: the pointer it
// is loaded from and stored through, that pointer's storage class, and the
// shape behind it. Temps are Private variables (pixel-stage r0 is the
// fragColor output).
type binding struct {
	ptr      uint32
	class    spirv.StorageClass
	elem     TypeDescriptor // vector/scalar shape behind the pointer
	readOnly bool           // Input-class: commit bypasses the store (spec.md §4.6 step 3)
}

func (tr *Transpiler) bindingFor(key regKey) (binding, bool) {
	b, ok := tr.bindings[key]
	return b, ok
}

// declare implements the "declare on use" half of the Register Resolver
// (spec.md §4.5 step 2 and §9's "implicit declaration" note): the first
// time a register is referenced, pick its storage class and shape from its
// register class, the current stage, and (for input/output classes) a
// usage hint.
func (tr *Transpiler) declare(key regKey, hint d3dsm.Usage) binding {
	if b, ok := tr.bindings[key]; ok {
		return b
	}

	var b binding
	switch key.Class {
	case d3dsm.RegTemp:
		b = tr.declareTemp(key)
	case d3dsm.RegInput:
		b = tr.declareInput(key, hint)
	case d3dsm.RegAddr: // RegTexture aliases this value
		if tr.stage == d3dsm.StagePixel {
			b = tr.declareInput(key, d3dsm.UsageTexCoord)
		} else {
			b = tr.declarePrivate(key, Scalar(TagInt))
		}
	case d3dsm.RegRasterizerOut:
		b = tr.declareRasterizerOut(key)
	case d3dsm.RegAttributeOut:
		b = tr.declareOutput(key, d3dsm.UsageColor, d3dsm.UsageColor)
	case d3dsm.RegTexCrdOut:
		b = tr.declareOutput(key, d3dsm.UsageTexCoord, d3dsm.UsageTexCoord)
	case d3dsm.RegColorOut:
		b = tr.declareOutput(key, d3dsm.UsageColor, d3dsm.UsageColor)
	case d3dsm.RegDepthOut:
		b = binding{ptr: tr.declareBuiltinScalarOutput(spirv.BuiltInFragDepth), class: spirv.StorageClassOutput, elem: Scalar(TagFloat)}
	case d3dsm.RegSampler:
		b = tr.declareSampler(key)
	case d3dsm.RegConst, d3dsm.RegConst2, d3dsm.RegConst3, d3dsm.RegConst4, d3dsm.RegConstInt, d3dsm.RegConstBool:
		panic("transpile: constant classes are resolved inline, not through declare")
	default:
		tr.warnf(contractViolation, "register class %d has no modeled declaration; using a private scratch value", key.Class)
		b = tr.declarePrivate(key, Vec(TagFloat, 4))
	}
	tr.bindings[key] = b
	return b
}

func (tr *Transpiler) declareTemp(key regKey) binding {
	if tr.stage == d3dsm.StagePixel && key.Number == 0 {
		ptrT := tr.types.ID(PtrTo(spirv.StorageClassOutput, Vec(TagFloat, 4)))
		ptr := tr.b.AddVariable(ptrT, spirv.StorageClassOutput)
		tr.idt.setType(ptr, PtrTo(spirv.StorageClassOutput, Vec(TagFloat, 4)))
		tr.b.AddName(ptr, "fragColor")
		tr.b.AddDecorate(ptr, spirv.DecorationLocation, 0)
		tr.entryInterface = append(tr.entryInterface, ptr)
		return binding{ptr: ptr, class: spirv.StorageClassOutput, elem: Vec(TagFloat, 4)}
	}
	return tr.declarePrivate(key, Vec(TagFloat, 4))
}

func (tr *Transpiler) declarePrivate(key regKey, elem TypeDescriptor) binding {
	ptrT := tr.types.ID(PtrTo(spirv.StorageClassPrivate, elem))
	ptr := tr.b.AddVariable(ptrT, spirv.StorageClassPrivate)
	tr.idt.setType(ptr, PtrTo(spirv.StorageClassPrivate, elem))
	tr.idt.name(ptr, fmt.Sprintf("r%d", key.Number))
	return binding{ptr: ptr, class: spirv.StorageClassPrivate, elem: elem}
}

func (tr *Transpiler) declareInput(key regKey, hint d3dsm.Usage) binding {
	usage, idx := hint, key.Number
	if u, ok := tr.idt.usage(key); ok {
		usage = u
	}
	loc := d3dsm.UsageLocation(usage, idx)
	elem := Vec(TagFloat, 4)
	if tr.stage == d3dsm.StageVertex && usage == d3dsm.UsageColor {
		elem = Vec(TagUInt, 4) // packed color; resolver converts on read
	}
	ptrT := tr.types.ID(PtrTo(spirv.StorageClassInput, elem))
	ptr := tr.b.AddVariable(ptrT, spirv.StorageClassInput)
	tr.idt.setType(ptr, PtrTo(spirv.StorageClassInput, elem))
	tr.b.AddDecorate(ptr, spirv.DecorationLocation, uint32(loc))
	tr.entryInterface = append(tr.entryInterface, ptr)
	return binding{ptr: ptr, class: spirv.StorageClassInput, elem: elem, readOnly: true}
}

func (tr *Transpiler) declareOutput(key regKey, hint, fallback d3dsm.Usage) binding {
	usage := hint
	if u, ok := tr.idt.usage(key); ok {
		usage = u
	} else if usage == 0 {
		usage = fallback
	}
	loc := d3dsm.UsageLocation(usage, key.Number)
	elem := Vec(TagFloat, 4)
	ptrT := tr.types.ID(PtrTo(spirv.StorageClassOutput, elem))
	ptr := tr.b.AddVariable(ptrT, spirv.StorageClassOutput)
	tr.idt.setType(ptr, PtrTo(spirv.StorageClassOutput, elem))
	tr.b.AddDecorate(ptr, spirv.DecorationLocation, uint32(loc))
	tr.entryInterface = append(tr.entryInterface, ptr)
	return binding{ptr: ptr, class: spirv.StorageClassOutput, elem: elem}
}

func (tr *Transpiler) declareRasterizerOut(key regKey) binding {
	if key.Number != 0 {
		// Fog/point-size rasterizer outputs: not exercised by this translator's
		// scope, declared as a vec4 output at the fog location so the stream
		// still lowers.
		return tr.declareOutput(key, d3dsm.UsageFog, d3dsm.UsageFog)
	}
	ptrT := tr.types.ID(PtrTo(spirv.StorageClassOutput, Vec(TagFloat, 4)))
	ptr := tr.b.AddVariable(ptrT, spirv.StorageClassOutput)
	tr.idt.setType(ptr, PtrTo(spirv.StorageClassOutput, Vec(TagFloat, 4)))
	tr.b.AddName(ptr, "outPosition")
	tr.b.AddDecorate(ptr, spirv.DecorationBuiltIn, uint32(spirv.BuiltInPosition))
	tr.entryInterface = append(tr.entryInterface, ptr)
	tr.positionOutputPtr = ptr
	return binding{ptr: ptr, class: spirv.StorageClassOutput, elem: Vec(TagFloat, 4)}
}

func (tr *Transpiler) declareBuiltinScalarOutput(b spirv.BuiltIn) uint32 {
	ptrT := tr.types.ID(PtrTo(spirv.StorageClassOutput, Scalar(TagFloat)))
	ptr := tr.b.AddVariable(ptrT, spirv.StorageClassOutput)
	tr.idt.setType(ptr, PtrTo(spirv.StorageClassOutput, Scalar(TagFloat)))
	tr.b.AddDecorate(ptr, spirv.DecorationBuiltIn, uint32(b))
	tr.entryInterface = append(tr.entryInterface, ptr)
	return ptr
}

func (tr *Transpiler) declareSampler(key regKey) binding {
	ptr := tr.uniforms.textureArrayElementPtr(tr, key.Number)
	return binding{ptr: ptr, class: spirv.StorageClassUniformConstant, elem: TypeDescriptor{Primary: TagSampledImage}, readOnly: true}
}
