package mesh

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/angelmondragon/quotes3d-backend/internal/geometry"
	pkgerrors "github.com/angelmondragon/quotes3d-backend/pkg/errors"
)

func tetrahedron() []geometry.Triangle {
	o := geometry.Vec3{}
	x := geometry.Vec3{X: 10}
	y := geometry.Vec3{Y: 10}
	z := geometry.Vec3{Z: 10}
	return []geometry.Triangle{
		{A: o, B: y, C: x},
		{A: o, B: x, C: z},
		{A: o, B: z, C: y},
		{A: x, B: y, C: z},
	}
}

func encodeBinary(t *testing.T, triangles []geometry.Triangle, declared uint32) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	header := make([]byte, 80)
	copy(header, "exported part")
	buf.Write(header)
	if err := binary.Write(buf, binary.LittleEndian, declared); err != nil {
		t.Fatalf("write count: %v", err)
	}
	for _, tri := range triangles {
		var record [50]byte
		writeVertex(record[12:24], tri.A)
		writeVertex(record[24:36], tri.B)
		writeVertex(record[36:48], tri.C)
		buf.Write(record[:])
	}
	return buf.Bytes()
}

func writeVertex(dst []byte, v geometry.Vec3) {
	binary.LittleEndian.PutUint32(dst[0:4], math.Float32bits(float32(v.X)))
	binary.LittleEndian.PutUint32(dst[4:8], math.Float32bits(float32(v.Y)))
	binary.LittleEndian.PutUint32(dst[8:12], math.Float32bits(float32(v.Z)))
}

func encodeASCII(triangles []geometry.Triangle) []byte {
	sb := &strings.Builder{}
	sb.WriteString("solid fixture\n")
	for _, tri := range triangles {
		sb.WriteString("  facet normal 0 0 0\n    outer loop\n")
		for _, v := range []geometry.Vec3{tri.A, tri.B, tri.C} {
			fmt.Fprintf(sb, "      vertex %g %g %g\n", v.X, v.Y, v.Z)
		}
		sb.WriteString("    endloop\n  endfacet\n")
	}
	sb.WriteString("endsolid fixture\n")
	return []byte(sb.String())
}

func expectMalformed(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected MALFORMED_INPUT, got nil")
	}
	if !pkgerrors.HasCode(err, pkgerrors.CodeMalformedInput) {
		t.Fatalf("expected MALFORMED_INPUT, got %v", err)
	}
}

func TestParseEmptyBuffer(t *testing.T) {
	_, err := Parse(nil)
	expectMalformed(t, err)

	_, err = Parse([]byte{})
	expectMalformed(t, err)
}

func TestParseTinyBuffer(t *testing.T) {
	_, err := Parse([]byte("so"))
	expectMalformed(t, err)
}

func TestParseBinaryRoundTrip(t *testing.T) {
	want := tetrahedron()
	m, err := Parse(encodeBinary(t, want, uint32(len(want))))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if m.TriangleCount() != len(want) {
		t.Fatalf("expected %d triangles, got %d", len(want), m.TriangleCount())
	}
	if m.Name != "exported part" {
		t.Fatalf("unexpected model name %q", m.Name)
	}
	if m.Triangles[3].C != (geometry.Vec3{Z: 10}) {
		t.Fatalf("vertex mangled in transit: %+v", m.Triangles[3].C)
	}
}

func TestParseBinaryCountMismatch(t *testing.T) {
	tris := tetrahedron()

	// Declared count larger than payload.
	_, err := Parse(encodeBinary(t, tris, uint32(len(tris)+1)))
	expectMalformed(t, err)

	// Trailing garbage after the last record.
	data := append(encodeBinary(t, tris, uint32(len(tris))), 0xAA, 0xBB)
	_, err = Parse(data)
	expectMalformed(t, err)
}

func TestParseBinaryTruncatedHeader(t *testing.T) {
	_, err := Parse(make([]byte, 60))
	expectMalformed(t, err)
}

func TestParseBinaryZeroTriangles(t *testing.T) {
	// Structurally valid but empty; rejection is the validator's job.
	m, err := Parse(encodeBinary(t, nil, 0))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if m.TriangleCount() != 0 {
		t.Fatalf("expected zero triangles, got %d", m.TriangleCount())
	}
}

func TestParseASCIIRoundTrip(t *testing.T) {
	want := tetrahedron()
	m, err := Parse(encodeASCII(want))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if m.TriangleCount() != len(want) {
		t.Fatalf("expected %d triangles, got %d", len(want), m.TriangleCount())
	}
	if m.Name != "fixture" {
		t.Fatalf("unexpected solid name %q", m.Name)
	}
	if m.Triangles[0].B != (geometry.Vec3{Y: 10}) {
		t.Fatalf("vertex mangled in transit: %+v", m.Triangles[0].B)
	}
}

func TestParseASCIIFacetWithTwoVertices(t *testing.T) {
	text := "solid bad\n facet normal 0 0 0\n vertex 0 0 0\n vertex 1 0 0\n endfacet\nendsolid bad\n"
	_, err := Parse([]byte(text))
	expectMalformed(t, err)
}

func TestParseASCIIFacetWithFourVertices(t *testing.T) {
	text := "solid bad\n facet normal 0 0 0\n vertex 0 0 0\n vertex 1 0 0\n vertex 0 1 0\n vertex 0 0 1\n endfacet\nendsolid bad\n"
	_, err := Parse([]byte(text))
	expectMalformed(t, err)
}

func TestParseASCIIGarbageCoordinate(t *testing.T) {
	text := "solid bad\n facet normal 0 0 0\n vertex 0 zero 0\n vertex 1 0 0\n vertex 0 1 0\n endfacet\nendsolid bad\n"
	_, err := Parse([]byte(text))
	expectMalformed(t, err)
}

func TestParseASCIIMissingEndSolid(t *testing.T) {
	text := strings.TrimSuffix(string(encodeASCII(tetrahedron())), "endsolid fixture\n")
	_, err := Parse([]byte(text))
	expectMalformed(t, err)
}

func TestParsedMeshAnalyzes(t *testing.T) {
	m, err := Parse(encodeASCII(tetrahedron()))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	props := geometry.Analyze(m.Triangles)
	// Tetrahedron volume is a³/6 for legs of length a.
	if math.Abs(props.VolumeMM3-1000.0/6.0) > 1e-3 {
		t.Fatalf("expected %v mm³, got %v", 1000.0/6.0, props.VolumeMM3)
	}
	if !props.Watertight {
		t.Fatal("tetrahedron must be watertight")
	}
}
