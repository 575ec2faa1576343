package mesh

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/angelmondragon/quotes3d-backend/internal/geometry"
	pkgerrors "github.com/angelmondragon/quotes3d-backend/pkg/errors"
)

const (
	binaryHeaderSize  = 80
	binaryRecordSize  = 50
	binaryMinimumSize = binaryHeaderSize + 4
	asciiMagic        = "solid"
	verticesPerFacet  = 3
)

// Parse decodes an STL byte buffer into a Mesh, auto-detecting ASCII versus
// binary encoding. The buffer is consumed in a single forward pass and the
// parser has no side effects beyond the returned mesh or error. Every
// structural defect is reported as MALFORMED_INPUT.
func Parse(data []byte) (*Mesh, error) {
	if len(data) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeMalformedInput, "empty file")
	}
	if len(data) < len(asciiMagic) {
		return nil, pkgerrors.New(pkgerrors.CodeMalformedInput, "file shorter than any mesh header")
	}

	if bytes.HasPrefix(data, []byte(asciiMagic)) {
		return parseASCII(data)
	}
	return parseBinary(data)
}

// parseBinary decodes the fixed-record layout: 80-byte header, uint32 face
// count, then 50 bytes per face (normal, three vertices, attribute count).
// The declared count must match the payload exactly.
func parseBinary(data []byte) (*Mesh, error) {
	if len(data) < binaryMinimumSize {
		return nil, pkgerrors.New(pkgerrors.CodeMalformedInput, "binary header truncated")
	}

	header := bytes.TrimRight(data[:binaryHeaderSize], "\x00")
	declared := binary.LittleEndian.Uint32(data[binaryHeaderSize:binaryMinimumSize])

	payload := data[binaryMinimumSize:]
	if expected := int64(declared) * binaryRecordSize; int64(len(payload)) != expected {
		return nil, pkgerrors.New(pkgerrors.CodeMalformedInput,
			fmt.Sprintf("declared %d triangles but payload holds %d bytes", declared, len(payload)))
	}

	m := &Mesh{
		Name:      strings.TrimSpace(string(header)),
		Triangles: make([]geometry.Triangle, 0, declared),
	}

	for i := uint32(0); i < declared; i++ {
		record := payload[i*binaryRecordSize : (i+1)*binaryRecordSize]
		// Skip the 12-byte normal; winding decides orientation downstream.
		m.Triangles = append(m.Triangles,
			geometry.Triangle{
				A: readVertex(record[12:24]),
				B: readVertex(record[24:36]),
				C: readVertex(record[36:48]),
			})
	}
	return m, nil
}

func readVertex(record []byte) geometry.Vec3 {
	component := func(off int) float64 {
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(record[off : off+4])))
	}
	return geometry.Vec3{X: component(0), Y: component(4), Z: component(8)}
}

// parseASCII decodes the solid/facet/vertex grammar. Every facet must carry
// exactly three vertices and every coordinate must parse; anything else is
// MALFORMED_INPUT rather than a silently skipped face.
func parseASCII(data []byte) (*Mesh, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	m := &Mesh{}
	var vertices []geometry.Vec3
	inFacet := false
	sawEndSolid := false

	for scanner.Scan() {
		fields := strings.Fields(strings.TrimSpace(scanner.Text()))
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "solid":
			if len(fields) > 1 {
				m.Name = strings.Join(fields[1:], " ")
			}

		case "facet":
			if inFacet {
				return nil, pkgerrors.New(pkgerrors.CodeMalformedInput, "nested facet")
			}
			inFacet = true
			vertices = vertices[:0]

		case "vertex":
			if !inFacet {
				return nil, pkgerrors.New(pkgerrors.CodeMalformedInput, "vertex outside facet")
			}
			if len(fields) != 4 {
				return nil, pkgerrors.New(pkgerrors.CodeMalformedInput, "vertex requires three coordinates")
			}
			v, err := parseVertex(fields[1], fields[2], fields[3])
			if err != nil {
				return nil, err
			}
			if len(vertices) == verticesPerFacet {
				return nil, pkgerrors.New(pkgerrors.CodeMalformedInput, "facet holds more than three vertices")
			}
			vertices = append(vertices, v)

		case "endfacet":
			if !inFacet {
				return nil, pkgerrors.New(pkgerrors.CodeMalformedInput, "endfacet without facet")
			}
			if len(vertices) != verticesPerFacet {
				return nil, pkgerrors.New(pkgerrors.CodeMalformedInput,
					fmt.Sprintf("facet holds %d vertices, want %d", len(vertices), verticesPerFacet))
			}
			m.Triangles = append(m.Triangles, geometry.Triangle{
				A: vertices[0],
				B: vertices[1],
				C: vertices[2],
			})
			inFacet = false

		case "endsolid":
			sawEndSolid = true
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeMalformedInput, err, "reading mesh text")
	}
	if inFacet {
		return nil, pkgerrors.New(pkgerrors.CodeMalformedInput, "unterminated facet")
	}
	if !sawEndSolid {
		return nil, pkgerrors.New(pkgerrors.CodeMalformedInput, "missing endsolid")
	}

	return m, nil
}

func parseVertex(xs, ys, zs string) (geometry.Vec3, error) {
	x, errX := strconv.ParseFloat(xs, 64)
	y, errY := strconv.ParseFloat(ys, 64)
	z, errZ := strconv.ParseFloat(zs, 64)
	if errX != nil || errY != nil || errZ != nil {
		return geometry.Vec3{}, pkgerrors.New(pkgerrors.CodeMalformedInput,
			fmt.Sprintf("unparseable vertex (%q, %q, %q)", xs, ys, zs))
	}
	return geometry.Vec3{X: x, Y: y, Z: z}, nil
}
