package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// BoundingBox is the axis-aligned extent of a part in millimeters.
type BoundingBox struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MinZ float64 `json:"min_z"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
	MaxZ float64 `json:"max_z"`
}

// Dimensions returns (width, depth, height) in millimeters.
func (b BoundingBox) Dimensions() (float64, float64, float64) {
	return b.MaxX - b.MinX, b.MaxY - b.MinY, b.MaxZ - b.MinZ
}

// Volume returns the enclosed box volume in mm³.
func (b BoundingBox) Volume() float64 {
	w, d, h := b.Dimensions()
	return w * d * h
}

// Value serializes the box to JSON for JSONB columns.
func (b *BoundingBox) Value() (driver.Value, error) {
	if b == nil {
		return nil, nil
	}
	return json.Marshal(b)
}

// Scan decodes JSONB into the box.
func (b *BoundingBox) Scan(value interface{}) error {
	if value == nil {
		*b = BoundingBox{}
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, b)
}

func asJSON(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported scan type %T", value)
	}
}
