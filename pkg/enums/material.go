package enums

import "fmt"

// Material identifies a printable material on the rate card.
type Material string

const (
	MaterialPA12Grey  Material = "PA12_GREY"
	MaterialPA12Black Material = "PA12_BLACK"
	MaterialPA12GB    Material = "PA12_GB"
)

var validMaterials = []Material{
	MaterialPA12Grey,
	MaterialPA12Black,
	MaterialPA12GB,
}

// String implements fmt.Stringer.
func (m Material) String() string {
	return string(m)
}

// IsValid reports whether the material is recognized.
func (m Material) IsValid() bool {
	for _, candidate := range validMaterials {
		if candidate == m {
			return true
		}
	}
	return false
}

// Materials returns the offered materials in rate-card order.
func Materials() []Material {
	return append([]Material(nil), validMaterials...)
}

// ParseMaterial converts a raw string into a Material.
func ParseMaterial(value string) (Material, error) {
	for _, candidate := range validMaterials {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid material %q", value)
}
