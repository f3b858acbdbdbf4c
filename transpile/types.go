package transpile

import "github.com/d3d9spv/transpiler/spirv"

// Tag identifies the structural category of a TypeDescriptor. It mirrors a
// SPIR-V type opcode, not a D3D9 concept: the same tag set describes scalars,
// vectors built from them, and pointers to either.
type Tag uint8

const (
	TagVoid Tag = iota
	TagBool
	TagInt
	TagUInt
	TagFloat
	TagVector
	TagMatrix
	TagArray
	TagPointer
	TagImage
	TagSampledImage
	TagSampler
)

// TypeDescriptor is the structural key the Registry interns: two
// descriptors that compare equal always resolve to the same SPIR-V type id,
// regardless of how many call sites asked for them independently.
//
// The nesting is fixed by Primary rather than recursive, since every type
// this transpiler ever needs is at most two levels deep:
//
//   - scalar:        Primary = Bool/Int/UInt/Float
//   - vector:        Primary = Vector, Secondary = base scalar, Count = 2..4
//   - matrix:        Primary = Matrix, Count = column count, Rows = column's
//     vector width (always float)
//   - array:         Primary = Array, Secondary = element's primary tag,
//     Count = length, Rows = element's vector width (0 if scalar)
//   - pointer:       Primary = Pointer, Secondary = pointee's primary tag,
//     Ternary = pointee's base scalar (vectors only), Count = pointee vector
//     width, StorageClass set
//   - image/sampler: Primary = Image/SampledImage/Sampler
type TypeDescriptor struct {
	Primary      Tag
	Secondary    Tag
	Ternary      Tag
	Count        uint32
	Rows         uint32
	StorageClass spirv.StorageClass
	ImageFormat  spirv.ImageFormat
}

// Vec builds the descriptor for a vector of size n over the given base tag.
func Vec(base Tag, n uint32) TypeDescriptor {
	return TypeDescriptor{Primary: TagVector, Secondary: base, Count: n}
}

// Scalar builds the descriptor for a bare scalar type.
func Scalar(base Tag) TypeDescriptor {
	return TypeDescriptor{Primary: base}
}

// Mat builds the descriptor for a matrix of cols columns, each a float
// vector of width rows.
func Mat(cols, rows uint32) TypeDescriptor {
	return TypeDescriptor{Primary: TagMatrix, Count: cols, Rows: rows}
}

// PtrTo builds a pointer descriptor for the given storage class and pointee.
// Scalar, vector, image, sampled-image and sampler pointees are supported;
// any other pointee is recorded by its primary tag only. Pointers to an
// image or sampled image always use the UniformConstant storage class,
// whatever class is passed in.
func PtrTo(sc spirv.StorageClass, pointee TypeDescriptor) TypeDescriptor {
	switch pointee.Primary {
	case TagVector:
		return TypeDescriptor{Primary: TagPointer, Secondary: TagVector, Ternary: pointee.Secondary, Count: pointee.Count, StorageClass: sc}
	case TagImage, TagSampledImage:
		return TypeDescriptor{Primary: TagPointer, Secondary: pointee.Primary, StorageClass: spirv.StorageClassUniformConstant}
	case TagSampler:
		return TypeDescriptor{Primary: TagPointer, Secondary: pointee.Primary, StorageClass: sc}
	default:
		return TypeDescriptor{Primary: TagPointer, Secondary: pointee.Primary, StorageClass: sc}
	}
}

// Registry interns TypeDescriptor values to SPIR-V type ids, emitting the
// declaration (and any dependency it needs) on first use only.
type Registry struct {
	b   *spirv.ModuleBuilder
	ids map[TypeDescriptor]uint32
}

// NewRegistry creates an empty Registry bound to b.
func NewRegistry(b *spirv.ModuleBuilder) *Registry {
	return &Registry{b: b, ids: make(map[TypeDescriptor]uint32)}
}

// ID returns the SPIR-V type id for desc, creating it (and any dependency
// type it needs) the first time it is requested.
func (r *Registry) ID(desc TypeDescriptor) uint32 {
	if id, ok := r.ids[desc]; ok {
		return id
	}
	id := r.materialize(desc)
	r.ids[desc] = id
	return id
}

func (r *Registry) materialize(desc TypeDescriptor) uint32 {
	switch desc.Primary {
	case TagVoid:
		return r.b.AddTypeVoid()
	case TagBool:
		return r.b.AddTypeBool()
	case TagInt:
		return r.b.AddTypeInt(32, true)
	case TagUInt:
		return r.b.AddTypeInt(32, false)
	case TagFloat:
		return r.b.AddTypeFloat(32)
	case TagVector:
		base := r.ID(Scalar(desc.Secondary))
		return r.b.AddTypeVector(base, desc.Count)
	case TagMatrix:
		col := r.ID(Vec(TagFloat, desc.Rows))
		return r.b.AddTypeMatrix(col, desc.Count)
	case TagArray:
		elem := r.elementID(desc)
		length := r.ID(Scalar(TagUInt))
		lengthConst := r.b.AddConstant(length, desc.Count)
		return r.b.AddTypeArray(elem, lengthConst)
	case TagPointer:
		pointee := r.pointeeID(desc)
		return r.b.AddTypePointer(desc.StorageClass, pointee)
	case TagImage:
		sampledType := r.ID(Scalar(TagFloat))
		return r.b.AddTypeImage(sampledType, desc.ImageFormat)
	case TagSampledImage:
		image := r.ID(TypeDescriptor{Primary: TagImage, ImageFormat: desc.ImageFormat})
		return r.b.AddTypeSampledImage(image)
	case TagSampler:
		return r.b.AddTypeSampler()
	default:
		panic("transpile: unreachable type tag")
	}
}

func (r *Registry) elementID(desc TypeDescriptor) uint32 {
	if desc.Rows > 0 {
		return r.ID(Vec(desc.Secondary, desc.Rows))
	}
	return r.ID(Scalar(desc.Secondary))
}

func (r *Registry) pointeeID(desc TypeDescriptor) uint32 {
	switch desc.Secondary {
	case TagVector:
		return r.ID(Vec(desc.Ternary, desc.Count))
	case TagImage:
		return r.ID(TypeDescriptor{Primary: TagImage, ImageFormat: desc.ImageFormat})
	case TagSampledImage:
		return r.ID(TypeDescriptor{Primary: TagSampledImage, ImageFormat: desc.ImageFormat})
	case TagSampler:
		return r.ID(TypeDescriptor{Primary: TagSampler})
	default:
		return r.ID(Scalar(desc.Secondary))
	}
}

// Function types and struct types are few and purpose-built (the single
// entry-point function, the three uniform blocks) so they bypass the
// TypeDescriptor tuple and are emitted directly against the builder by
// convert.go and uniforms.go.
