package geometry

import (
	"math"
	"testing"
)

// boxTriangles returns the 12-triangle surface of an axis-aligned box with
// one corner at origin, wound counter-clockwise viewed from outside.
func boxTriangles(origin Vec3, w, d, h float64) []Triangle {
	p000 := origin
	p100 := origin.Add(Vec3{X: w})
	p010 := origin.Add(Vec3{Y: d})
	p001 := origin.Add(Vec3{Z: h})
	p110 := origin.Add(Vec3{X: w, Y: d})
	p101 := origin.Add(Vec3{X: w, Z: h})
	p011 := origin.Add(Vec3{Y: d, Z: h})
	p111 := origin.Add(Vec3{X: w, Y: d, Z: h})

	return []Triangle{
		{p000, p010, p110}, {p000, p110, p100}, // bottom
		{p001, p101, p111}, {p001, p111, p011}, // top
		{p000, p100, p101}, {p000, p101, p001}, // front
		{p010, p011, p111}, {p010, p111, p110}, // back
		{p000, p001, p011}, {p000, p011, p010}, // left
		{p100, p110, p111}, {p100, p111, p101}, // right
	}
}

func reverseAll(triangles []Triangle) []Triangle {
	out := make([]Triangle, len(triangles))
	for i, tri := range triangles {
		out[i] = tri.Reversed()
	}
	return out
}

func TestAnalyzeCubeVolume(t *testing.T) {
	props := Analyze(boxTriangles(Vec3{}, 10, 10, 10))

	if math.Abs(props.VolumeMM3-1000) > 1e-3 {
		t.Fatalf("expected 1000 mm³, got %v", props.VolumeMM3)
	}
	if props.TriangleCount != 12 {
		t.Fatalf("expected 12 triangles, got %d", props.TriangleCount)
	}
	if !props.Watertight {
		t.Fatal("cube surface must be watertight")
	}
	if props.Bounds.MaxX != 10 || props.Bounds.MinZ != 0 {
		t.Fatalf("unexpected bounds %+v", props.Bounds)
	}
}

func TestAnalyzeBoxAwayFromOrigin(t *testing.T) {
	// Signed tetrahedra only cancel correctly for a closed surface; the box
	// not containing the origin is the case that exposes winding bugs.
	props := Analyze(boxTriangles(Vec3{X: 100, Y: -40, Z: 7}, 2, 3, 4))

	if math.Abs(props.VolumeMM3-24) > 1e-3 {
		t.Fatalf("expected 24 mm³, got %v", props.VolumeMM3)
	}
	w, d, h := props.Bounds.Dimensions()
	if w != 2 || d != 3 || h != 4 {
		t.Fatalf("unexpected dimensions (%v, %v, %v)", w, d, h)
	}
}

func TestAnalyzeInvertedWindingNormalizes(t *testing.T) {
	forward := Analyze(boxTriangles(Vec3{}, 5, 6, 7))
	reversed := Analyze(reverseAll(boxTriangles(Vec3{}, 5, 6, 7)))

	if math.Abs(forward.VolumeMM3-reversed.VolumeMM3) > 1e-9 {
		t.Fatalf("winding flip changed volume: %v vs %v", forward.VolumeMM3, reversed.VolumeMM3)
	}
	if !reversed.Watertight {
		t.Fatal("a consistently inverted surface is still watertight")
	}
}

func TestAnalyzeEmptyMesh(t *testing.T) {
	props := Analyze(nil)

	if props.VolumeMM3 != 0 {
		t.Fatalf("expected zero volume, got %v", props.VolumeMM3)
	}
	if props.Bounds != (Properties{}.Bounds) {
		t.Fatalf("expected degenerate box at origin, got %+v", props.Bounds)
	}
	if props.Watertight {
		t.Fatal("empty mesh must not report watertight")
	}
}

func TestAnalyzeOpenMeshNotWatertight(t *testing.T) {
	open := boxTriangles(Vec3{}, 10, 10, 10)[1:]

	props := Analyze(open)
	if props.Watertight {
		t.Fatal("surface with a hole reported watertight")
	}
	if props.VolumeMM3 <= 0 {
		t.Fatal("open mesh is still assigned a volume for pricing")
	}
}

func TestAnalyzeDoubledFaceNotWatertight(t *testing.T) {
	doubled := boxTriangles(Vec3{}, 10, 10, 10)
	doubled = append(doubled, doubled[0])

	if Analyze(doubled).Watertight {
		t.Fatal("edge shared by three faces reported watertight")
	}
}

func TestAnalyzeWeldsNearbyVertices(t *testing.T) {
	triangles := boxTriangles(Vec3{}, 10, 10, 10)

	// Exporter jitter well below the weld tolerance must not open the mesh.
	triangles[0].A.X += VertexWeldTolerance / 100

	if !Analyze(triangles).Watertight {
		t.Fatal("sub-tolerance jitter broke watertightness")
	}
}

func TestAnalyzeSplitVertexBreaksWatertightness(t *testing.T) {
	triangles := boxTriangles(Vec3{}, 10, 10, 10)

	triangles[0].A.X += VertexWeldTolerance * 10

	if Analyze(triangles).Watertight {
		t.Fatal("vertex displaced beyond the weld tolerance still welded")
	}
}

func TestTriangleSignedVolume(t *testing.T) {
	tri := Triangle{A: Vec3{X: 1}, B: Vec3{Y: 1}, C: Vec3{Z: 1}}
	if got := tri.SignedVolume(); math.Abs(got-1.0/6.0) > 1e-12 {
		t.Fatalf("expected 1/6, got %v", got)
	}
	if got := tri.Reversed().SignedVolume(); math.Abs(got+1.0/6.0) > 1e-12 {
		t.Fatalf("expected -1/6 after winding flip, got %v", got)
	}
}
