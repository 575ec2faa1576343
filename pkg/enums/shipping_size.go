package enums

import "fmt"

// ShippingSize is the delivery bracket derived from aggregate part size.
type ShippingSize string

const (
	ShippingSizeSmall  ShippingSize = "SMALL"
	ShippingSizeMedium ShippingSize = "MEDIUM"
	ShippingSizeLarge  ShippingSize = "LARGE"
)

var validShippingSizes = []ShippingSize{
	ShippingSizeSmall,
	ShippingSizeMedium,
	ShippingSizeLarge,
}

// String implements fmt.Stringer.
func (s ShippingSize) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ShippingSize.
func (s ShippingSize) IsValid() bool {
	for _, candidate := range validShippingSizes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseShippingSize converts raw input into a ShippingSize.
func ParseShippingSize(value string) (ShippingSize, error) {
	for _, candidate := range validShippingSizes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid shipping size %q", value)
}
