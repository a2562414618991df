package math

import (
	"testing"
)

func TestVec2Length(t *testing.T) {
	v := Vec2{3, 4}
	got := v.Length()
	want := float32(5)
	if got != want {
		t.Errorf("Vec2.Length() = %v, want %v", got, want)
	}
}

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	got := x.Cross(y)
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Vec3.Cross() = %v, want %v", got, want)
	}
}

func TestVec3Normalize(t *testing.T) {
	n := Vec3{0, 3, 4}.Normalize()
	l := n.Length()
	if l < 0.999 || l > 1.001 {
		t.Errorf("Vec3.Normalize().Length() = %v, want ~1", l)
	}
	if (Vec3{}).Normalize() != (Vec3{}) {
		t.Error("normalizing the zero vector should return the zero vector")
	}
}

func TestVec3MinMax(t *testing.T) {
	a := Vec3{1, 5, -2}
	b := Vec3{3, -1, 0}
	if got, want := a.Min(b), (Vec3{1, -1, -2}); got != want {
		t.Errorf("Min() = %v, want %v", got, want)
	}
	if got, want := a.Max(b), (Vec3{3, 5, 0}); got != want {
		t.Errorf("Max() = %v, want %v", got, want)
	}
	if got := a.MaxComponent(); got != 5 {
		t.Errorf("MaxComponent() = %v, want 5", got)
	}
}

func TestAABB(t *testing.T) {
	box := EmptyAABB()
	if !box.IsEmpty() {
		t.Fatal("EmptyAABB should be empty")
	}

	box = box.Extend(Vec3{1, 2, 3}).Extend(Vec3{-1, 4, 0})
	if box.IsEmpty() {
		t.Fatal("box with points should not be empty")
	}
	if box.Min != (Vec3{-1, 2, 0}) || box.Max != (Vec3{1, 4, 3}) {
		t.Errorf("got box %v, want min (-1,2,0) max (1,4,3)", box)
	}

	other := EmptyAABB().Extend(Vec3{5, 5, 5})
	u := box.Union(other)
	if u.Max != (Vec3{5, 5, 5}) || u.Min != box.Min {
		t.Errorf("Union() = %v", u)
	}
	if got := box.Union(EmptyAABB()); got != box {
		t.Errorf("union with empty box changed it: %v", got)
	}
	if got := EmptyAABB().Union(box); got != box {
		t.Errorf("empty union box = %v, want %v", got, box)
	}
}
