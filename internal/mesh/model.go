package mesh

import "github.com/angelmondragon/quotes3d-backend/internal/geometry"

// Mesh is the triangle soup decoded from one uploaded file. Immutable after
// parse; the analyzer consumes it once and only derived properties survive.
type Mesh struct {
	Name      string
	Triangles []geometry.Triangle
}

// TriangleCount returns the number of faces.
func (m *Mesh) TriangleCount() int {
	return len(m.Triangles)
}
