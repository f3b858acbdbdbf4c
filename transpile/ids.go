package transpile

import "github.com/d3d9spv/transpiler/d3dsm"

// regKey identifies a D3D register independent of how it is backed in
// SPIR-V (pointer variable, UBO member, or a plain SSA value).
type regKey struct {
	Class  d3dsm.RegisterType
	Number int
}

// idTable is the Id Allocator & Symbol Tables component. It does not
// allocate ids itself — every id still comes from the shared
// spirv.ModuleBuilder — it only remembers what each id means.
type idTable struct {
	idType     map[uint32]TypeDescriptor
	currentID  map[regKey]uint32
	regOfID    map[uint32]regKey
	debugNames map[uint32]string
	usageOfKey map[regKey]d3dsm.Usage

	// Conversion caches (spec.md §4.3 and §9's "type-system gap" note):
	// resolveMatrix records each mat4/mat3 it builds under the id of its
	// first register's load. Every resolve emits a fresh load, so a repeat
	// reference builds its matrix again; vec4ToVec3 is never filled.
	vec4ToMat4 map[uint32]uint32
	vec4ToMat3 map[uint32]uint32
	vec4ToVec3 map[uint32]uint32
}

func newIDTable() *idTable {
	return &idTable{
		idType:     make(map[uint32]TypeDescriptor),
		currentID:  make(map[regKey]uint32),
		regOfID:    make(map[uint32]regKey),
		debugNames: make(map[uint32]string),
		usageOfKey: make(map[regKey]d3dsm.Usage),
		vec4ToMat4: make(map[uint32]uint32),
		vec4ToMat3: make(map[uint32]uint32),
		vec4ToVec3: make(map[uint32]uint32),
	}
}

func (t *idTable) setType(id uint32, desc TypeDescriptor) {
	t.idType[id] = desc
}

func (t *idTable) typeOf(id uint32) (TypeDescriptor, bool) {
	d, ok := t.idType[id]
	return d, ok
}

func (t *idTable) get(key regKey) (uint32, bool) {
	id, ok := t.currentID[key]
	return id, ok
}

// bind rebinds a register's current value, the SSA mechanism that stands
// in for a D3D register write (spec.md §9 "SSA via rebind").
func (t *idTable) bind(key regKey, id uint32) {
	t.currentID[key] = id
	t.regOfID[id] = key
}

func (t *idTable) name(id uint32, name string) {
	t.debugNames[id] = name
}

func (t *idTable) usage(key regKey) (d3dsm.Usage, bool) {
	u, ok := t.usageOfKey[key]
	return u, ok
}

func (t *idTable) setUsage(key regKey, u d3dsm.Usage) {
	t.usageOfKey[key] = u
}
