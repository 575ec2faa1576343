package types

import (
	"database/sql/driver"
	"encoding/json"
)

// LineItemWarningType classifies non-fatal findings on an analyzed part.
type LineItemWarningType string

const (
	// LineItemWarningNotWatertight flags open or inconsistently wound meshes.
	// The part is still priced; downstream review decides whether to print.
	LineItemWarningNotWatertight LineItemWarningType = "not_watertight"
)

// LineItemWarning captures a warning attached to a quoted line item.
type LineItemWarning struct {
	Type    LineItemWarningType `json:"type"`
	Message string              `json:"message"`
}

// LineItemWarnings is a slice marshaled as JSONB.
type LineItemWarnings []LineItemWarning

// Value serializes the warnings to JSON.
func (w LineItemWarnings) Value() (driver.Value, error) {
	if w == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(w)
}

// Scan decodes JSONB into the warning slice.
func (w *LineItemWarnings) Scan(value interface{}) error {
	if value == nil {
		*w = nil
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	var decoded LineItemWarnings
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	*w = decoded
	return nil
}
