package constraints

import (
	"fmt"

	"github.com/angelmondragon/quotes3d-backend/internal/geometry"
	pkgerrors "github.com/angelmondragon/quotes3d-backend/pkg/errors"
	"github.com/angelmondragon/quotes3d-backend/pkg/types"
)

// BuildVolume is the printer envelope in millimeters per axis.
type BuildVolume struct {
	MaxX float64
	MaxY float64
	MaxZ float64
}

// Result carries the validation verdict. Warnings never fail validation;
// they ride along for downstream review.
type Result struct {
	Warnings types.LineItemWarnings
}

// Validate gates analyzed mesh properties against the build envelope.
// Parts are checked in their uploaded orientation; no auto-rotation is
// attempted. Returns EMPTY_GEOMETRY or EXCEEDS_BUILD_VOLUME on failure.
func Validate(props geometry.Properties, limit BuildVolume) (Result, error) {
	if props.TriangleCount == 0 || props.VolumeMM3 == 0 {
		return Result{}, pkgerrors.New(pkgerrors.CodeEmptyGeometry, "mesh encloses no volume").
			WithDetails(map[string]any{
				"triangle_count": props.TriangleCount,
				"volume_mm3":     props.VolumeMM3,
			})
	}

	w, d, h := props.Bounds.Dimensions()
	for _, axis := range []struct {
		name      string
		size, max float64
	}{
		{"x", w, limit.MaxX},
		{"y", d, limit.MaxY},
		{"z", h, limit.MaxZ},
	} {
		if axis.size > axis.max {
			return Result{}, pkgerrors.New(pkgerrors.CodeExceedsBuildVolume,
				fmt.Sprintf("part %s dimension %.2fmm exceeds printer limit %.2fmm", axis.name, axis.size, axis.max)).
				WithDetails(map[string]any{
					"axis":     axis.name,
					"size_mm":  axis.size,
					"limit_mm": axis.max,
				})
		}
	}

	result := Result{}
	if !props.Watertight {
		result.Warnings = append(result.Warnings, types.LineItemWarning{
			Type:    types.LineItemWarningNotWatertight,
			Message: "mesh is not watertight; part will be reviewed before printing",
		})
	}
	return result, nil
}
