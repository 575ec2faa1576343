package geometry

// Triangle is a single face with counter-clockwise winding when viewed from
// outside the solid.
type Triangle struct {
	A, B, C Vec3
}

// SignedVolume returns the signed volume of the tetrahedron formed by the
// triangle and the origin. Faces wound away from the origin contribute
// positive volume; summing over a closed surface yields the enclosed volume.
func (t Triangle) SignedVolume() float64 {
	return t.A.Dot(t.B.Cross(t.C)) / 6.0
}

// Area returns the face area.
func (t Triangle) Area() float64 {
	return t.B.Sub(t.A).Cross(t.C.Sub(t.A)).Length() / 2.0
}

// Reversed returns the triangle with flipped winding.
func (t Triangle) Reversed() Triangle {
	return Triangle{A: t.C, B: t.B, C: t.A}
}
