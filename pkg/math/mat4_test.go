package math

import (
	"testing"
)

func TestIdentity(t *testing.T) {
	m := Identity()
	// Diagonal should be 1
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	// Off-diagonal should be 0
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
	if !m.IsIdentity() {
		t.Error("IsIdentity() should be true for Identity()")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(1, 2, 3)
	id := Identity()
	result := m.Mul(id)

	for i := 0; i < 16; i++ {
		if result[i] != m[i] {
			t.Errorf("M * I should equal M, element %d: got %f, want %f", i, result[i], m[i])
		}
	}
}

func TestTranslateRowMajor(t *testing.T) {
	m := Translate(5, 10, 15)

	// Translation sits in the last column of a row-major matrix
	if m[3] != 5 || m[7] != 10 || m[11] != 15 {
		t.Errorf("Translate: got (%f, %f, %f), want (5, 10, 15)", m[3], m[7], m[11])
	}
	if got := m.Column(3); got != (Vec3{5, 10, 15}) {
		t.Errorf("Column(3) = %v", got)
	}
}

func TestMulOrder(t *testing.T) {
	// T * S scales first, then translates
	m := Translate(1, 0, 0).Mul(Scale(2, 2, 2))
	got := m.TransformPoint(Vec3{1, 1, 1})
	want := Vec3{3, 2, 2}
	if got != want {
		t.Errorf("(T*S)(p) = %v, want %v", got, want)
	}
}

func TestTransformPoint(t *testing.T) {
	m := Translate(10, 20, 30)
	result := m.TransformPoint(Vec3{1, 2, 3})

	expected := Vec3{11, 22, 33}
	if result != expected {
		t.Errorf("TransformPoint: got %v, want %v", result, expected)
	}
}

func TestTransformDirection(t *testing.T) {
	m := Translate(10, 20, 30).Mul(Scale(2, 1, 1))
	got := m.TransformDirection(Vec3{1, 1, 0})
	want := Vec3{2, 1, 0}
	if got != want {
		t.Errorf("TransformDirection: got %v, want %v", got, want)
	}
}

func TestAt(t *testing.T) {
	m := Mat4{
		0, 1, 2, 3,
		4, 5, 6, 7,
		8, 9, 10, 11,
		12, 13, 14, 15,
	}
	if m.At(2, 1) != 9 {
		t.Errorf("At(2,1) = %v, want 9", m.At(2, 1))
	}
	if got := m.Column(2); got != (Vec3{2, 6, 10}) {
		t.Errorf("Column(2) = %v", got)
	}
}
