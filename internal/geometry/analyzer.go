package geometry

import (
	"math"

	"github.com/angelmondragon/quotes3d-backend/pkg/types"
)

// VertexWeldTolerance is the distance (mm) under which two vertex coordinates
// are treated as the same point when counting edge adjacency. Mesh exporters
// rarely emit bit-identical floats for shared vertices, so watertightness is
// decided on a quantized grid rather than exact equality. Tunable.
const VertexWeldTolerance = 1e-6

// Properties is everything downstream pricing needs to know about a mesh.
// Derived once per upload; the triangle list is discarded afterwards.
type Properties struct {
	VolumeMM3     float64
	Bounds        types.BoundingBox
	Watertight    bool
	TriangleCount int
}

// Analyze derives Properties from a triangle list in a fixed number of
// forward passes. A zero-triangle mesh yields volume 0 and a degenerate box
// at the origin; rejecting it is the validator's call, not ours.
func Analyze(triangles []Triangle) Properties {
	props := Properties{TriangleCount: len(triangles)}
	if len(triangles) == 0 {
		return props
	}

	signedVolume := 0.0
	lo := triangles[0].A
	hi := triangles[0].A
	for _, tri := range triangles {
		signedVolume += tri.SignedVolume()
		lo = lo.Min(tri.A).Min(tri.B).Min(tri.C)
		hi = hi.Max(tri.A).Max(tri.B).Max(tri.C)
	}

	// Inverted winding makes the raw sum negative; normalize, don't reject.
	props.VolumeMM3 = math.Abs(signedVolume)
	props.Bounds = types.BoundingBox{
		MinX: lo.X, MinY: lo.Y, MinZ: lo.Z,
		MaxX: hi.X, MaxY: hi.Y, MaxZ: hi.Z,
	}
	props.Watertight = isWatertight(triangles)
	return props
}

type gridPoint struct {
	x, y, z int64
}

type directedEdge struct {
	from, to gridPoint
}

func quantize(v Vec3) gridPoint {
	return gridPoint{
		x: int64(math.Round(v.X / VertexWeldTolerance)),
		y: int64(math.Round(v.Y / VertexWeldTolerance)),
		z: int64(math.Round(v.Z / VertexWeldTolerance)),
	}
}

// isWatertight checks that every edge is shared by exactly two faces with
// opposite winding: each directed edge must appear exactly once, paired with
// exactly one occurrence of its reverse.
func isWatertight(triangles []Triangle) bool {
	edges := make(map[directedEdge]int, len(triangles)*3)

	for _, tri := range triangles {
		a, b, c := quantize(tri.A), quantize(tri.B), quantize(tri.C)
		if a == b || b == c || c == a {
			// Degenerate face; the surface cannot close cleanly.
			return false
		}
		edges[directedEdge{a, b}]++
		edges[directedEdge{b, c}]++
		edges[directedEdge{c, a}]++
	}

	for edge, count := range edges {
		if count != 1 {
			return false
		}
		if edges[directedEdge{edge.to, edge.from}] != 1 {
			return false
		}
	}
	return true
}
