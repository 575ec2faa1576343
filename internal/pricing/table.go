package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/quotes3d-backend/pkg/config"
	"github.com/angelmondragon/quotes3d-backend/pkg/enums"
)

// TableFromConfig builds the immutable pricing table once at process start.
// Unknown material identifiers in the rate card are rejected so a config
// typo surfaces at boot, not at quote time.
func TableFromConfig(pricing config.PricingConfig, shipping config.ShippingConfig) (Table, error) {
	rates := make(map[enums.Material]decimal.Decimal)
	for name, rate := range pricing.MaterialRates() {
		material, err := enums.ParseMaterial(name)
		if err != nil {
			return Table{}, fmt.Errorf("rate card: %w", err)
		}
		if rate <= 0 {
			return Table{}, fmt.Errorf("rate card: material %s has non-positive rate %v", material, rate)
		}
		rates[material] = decimal.NewFromFloat(rate)
	}

	return Table{
		Rates: rates,
		Tiers: []Tier{
			{Size: enums.ShippingSizeSmall, ThresholdCM3: shipping.SmallThresholdCM3, Cost: decimal.NewFromFloat(shipping.SmallCost)},
			{Size: enums.ShippingSizeMedium, ThresholdCM3: shipping.MediumThresholdCM3, Cost: decimal.NewFromFloat(shipping.MediumCost)},
			{Size: enums.ShippingSizeLarge, ThresholdCM3: Unbounded, Cost: decimal.NewFromFloat(shipping.LargeCost)},
		},
		MarkupPercent: decimal.NewFromFloat(pricing.MarkupPercent),
		MinimumOrder:  decimal.NewFromFloat(pricing.MinimumOrderUSD),
		Currency:      pricing.Currency,
	}, nil
}
