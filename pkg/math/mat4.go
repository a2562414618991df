package math

// Mat4 is a 4x4 matrix in row-major order, matching the scene markup:
//
//	[m0  m1  m2  m3 ]
//	[m4  m5  m6  m7 ]
//	[m8  m9  m10 m11]
//	[m12 m13 m14 m15]
//
// Points are column vectors, so the translation lives in m3, m7, m11.
type Mat4 [16]float32

// Identity returns an identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translate returns a translation matrix.
func Translate(x, y, z float32) Mat4 {
	return Mat4{
		1, 0, 0, x,
		0, 1, 0, y,
		0, 0, 1, z,
		0, 0, 0, 1,
	}
}

// Scale returns a scale matrix.
func Scale(x, y, z float32) Mat4 {
	return Mat4{
		x, 0, 0, 0,
		0, y, 0, 0,
		0, 0, z, 0,
		0, 0, 0, 1,
	}
}

// At returns the element at row r, column c.
func (m Mat4) At(r, c int) float32 {
	return m[r*4+c]
}

// Mul multiplies this matrix by another (m * other).
func (m Mat4) Mul(other Mat4) Mat4 {
	var result Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			result[r*4+c] =
				m[r*4+0]*other[0*4+c] +
					m[r*4+1]*other[1*4+c] +
					m[r*4+2]*other[2*4+c] +
					m[r*4+3]*other[3*4+c]
		}
	}
	return result
}

// Column returns the first three rows of column c.
func (m Mat4) Column(c int) Vec3 {
	return Vec3{m[c], m[4+c], m[8+c]}
}

// TransformPoint transforms a point (w=1), dividing by w when projective.
func (m Mat4) TransformPoint(p Vec3) Vec3 {
	x := m[0]*p.X + m[1]*p.Y + m[2]*p.Z + m[3]
	y := m[4]*p.X + m[5]*p.Y + m[6]*p.Z + m[7]
	z := m[8]*p.X + m[9]*p.Y + m[10]*p.Z + m[11]
	w := m[12]*p.X + m[13]*p.Y + m[14]*p.Z + m[15]
	if w != 0 && w != 1 {
		return Vec3{x / w, y / w, z / w}
	}
	return Vec3{x, y, z}
}

// TransformDirection transforms a direction vector (ignores translation).
func (m Mat4) TransformDirection(d Vec3) Vec3 {
	return Vec3{
		m[0]*d.X + m[1]*d.Y + m[2]*d.Z,
		m[4]*d.X + m[5]*d.Y + m[6]*d.Z,
		m[8]*d.X + m[9]*d.Y + m[10]*d.Z,
	}
}

// IsIdentity reports whether m is exactly the identity matrix.
func (m Mat4) IsIdentity() bool {
	return m == Identity()
}
