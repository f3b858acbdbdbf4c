package transpile

import (
	"testing"

	"github.com/d3d9spv/transpiler/spirv"
)

func TestRegistryInternsEqualDescriptors(t *testing.T) {
	b := spirv.NewModuleBuilder(spirv.Version1_0)
	r := NewRegistry(b)

	a := r.ID(Vec(TagFloat, 4))
	again := r.ID(Vec(TagFloat, 4))
	if a != again {
		t.Errorf("ID(Vec(Float,4)) returned %d then %d, want the same id both times", a, again)
	}

	other := r.ID(Vec(TagFloat, 3))
	if other == a {
		t.Errorf("Vec(Float,3) and Vec(Float,4) must not share an id")
	}
}

func TestRegistryMatrixDependsOnColumnVector(t *testing.T) {
	b := spirv.NewModuleBuilder(spirv.Version1_0)
	r := NewRegistry(b)

	mat := r.ID(Mat(4, 4))
	col := r.ID(Vec(TagFloat, 4))
	if mat == col {
		t.Errorf("matrix and its column vector must not collide")
	}
	// Requesting the same matrix again must not re-materialize the column type.
	again := r.ID(Mat(4, 4))
	if again != mat {
		t.Errorf("Mat(4,4) is not cached: got %d then %d", mat, again)
	}
}

func TestRegistryPointerToVectorPointee(t *testing.T) {
	b := spirv.NewModuleBuilder(spirv.Version1_0)
	r := NewRegistry(b)

	ptr := r.ID(PtrTo(spirv.StorageClassOutput, Vec(TagFloat, 4)))
	again := r.ID(PtrTo(spirv.StorageClassOutput, Vec(TagFloat, 4)))
	if ptr != again {
		t.Errorf("identical pointer descriptors resolved to different ids")
	}

	otherClass := r.ID(PtrTo(spirv.StorageClassInput, Vec(TagFloat, 4)))
	if otherClass == ptr {
		t.Errorf("pointers of different storage classes must not collide")
	}
}

func TestIDTableBindAndTypeOf(t *testing.T) {
	idt := newIDTable()
	key := regKey{Class: 0, Number: 3}

	if _, ok := idt.get(key); ok {
		t.Fatalf("fresh idTable should have no binding for %v", key)
	}

	idt.bind(key, 42)
	idt.setType(42, Vec(TagFloat, 4))

	got, ok := idt.get(key)
	if !ok || got != 42 {
		t.Errorf("get(%v) = (%d,%v), want (42,true)", key, got, ok)
	}
	desc, ok := idt.typeOf(42)
	if !ok || desc != Vec(TagFloat, 4) {
		t.Errorf("typeOf(42) = (%v,%v), want (Vec(Float,4),true)", desc, ok)
	}

	// Rebinding the same register moves currentID without losing regOfID history.
	idt.bind(key, 99)
	got, _ = idt.get(key)
	if got != 99 {
		t.Errorf("rebind did not update currentID: got %d, want 99", got)
	}
}

func TestIDTableUsageDefaultsAbsent(t *testing.T) {
	idt := newIDTable()
	key := regKey{Class: 1, Number: 0}
	if _, ok := idt.usage(key); ok {
		t.Fatalf("expected no usage recorded for an untouched register")
	}
	idt.setUsage(key, 7)
	u, ok := idt.usage(key)
	if !ok || u != 7 {
		t.Errorf("usage(%v) = (%v,%v), want (7,true)", key, u, ok)
	}
}
