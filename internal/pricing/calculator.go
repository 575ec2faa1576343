package pricing

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/quotes3d-backend/internal/geometry"
	"github.com/angelmondragon/quotes3d-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/quotes3d-backend/pkg/errors"
)

// Item is one validated part selection awaiting pricing.
type Item struct {
	Props    geometry.Properties
	Material enums.Material
	Quantity int
}

// PricedItem extends Item with its computed prices.
type PricedItem struct {
	Item
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
}

// Breakdown is the full deterministic pricing result for one quote.
type Breakdown struct {
	Items        []PricedItem
	Subtotal     decimal.Decimal
	ShippingSize enums.ShippingSize
	ShippingCost decimal.Decimal
	Total        decimal.Decimal
	FlooredToMin bool
}

var (
	oneThousand = decimal.NewFromInt(1000)
	oneHundred  = decimal.NewFromInt(100)
)

// Compute prices a set of items against the table. Pure function of its
// inputs: identical inputs always produce identical output.
//
// Per item: unit_price = volume_cm3 × rate × (1 + markup). Currency values
// are rounded half-up to cents only when a price is produced; volumes and
// rates stay unrounded. The line total multiplies the unrounded unit price
// by quantity before rounding, so a $2.875 unit at quantity 2 yields $5.75,
// not 2 × $2.88.
func Compute(items []Item, table Table) (Breakdown, error) {
	if len(items) == 0 {
		return Breakdown{}, pkgerrors.New(pkgerrors.CodeEmptyOrder, "no line items to price")
	}

	markupFactor := decimal.NewFromInt(1).Add(table.MarkupPercent.Div(oneHundred))

	breakdown := Breakdown{Items: make([]PricedItem, 0, len(items))}
	subtotal := decimal.Zero
	aggregateSizeCM3 := 0.0

	for i, item := range items {
		if item.Quantity < 1 {
			return Breakdown{}, pkgerrors.New(pkgerrors.CodeInvalidQuantity,
				fmt.Sprintf("line %d quantity %d is below 1", i, item.Quantity)).
				WithDetails(map[string]any{"line": i, "quantity": item.Quantity})
		}
		rate, ok := table.Rates[item.Material]
		if !ok {
			return Breakdown{}, pkgerrors.New(pkgerrors.CodeUnknownMaterial,
				fmt.Sprintf("no rate for material %q", item.Material)).
				WithDetails(map[string]any{"material": item.Material.String()})
		}

		volumeCM3 := decimal.NewFromFloat(item.Props.VolumeMM3).Div(oneThousand)
		rawUnit := volumeCM3.Mul(rate).Mul(markupFactor)

		priced := PricedItem{
			Item:       item,
			UnitPrice:  rawUnit.Round(2),
			TotalPrice: rawUnit.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2),
		}
		breakdown.Items = append(breakdown.Items, priced)
		subtotal = subtotal.Add(priced.TotalPrice)
		aggregateSizeCM3 += item.Props.Bounds.Volume() / 1000.0
	}

	// Below-minimum orders are floored to the minimum, not rejected.
	if subtotal.LessThan(table.MinimumOrder) {
		subtotal = table.MinimumOrder
		breakdown.FlooredToMin = true
	}
	breakdown.Subtotal = subtotal.Round(2)

	tier := table.tierFor(aggregateSizeCM3)
	breakdown.ShippingSize = tier.Size
	breakdown.ShippingCost = tier.Cost.Round(2)
	breakdown.Total = breakdown.Subtotal.Add(breakdown.ShippingCost)

	return breakdown, nil
}

// tierFor picks the first tier whose threshold the aggregate does not
// exceed; past every threshold the largest tier applies.
func (t Table) tierFor(aggregateCM3 float64) Tier {
	for _, tier := range t.Tiers {
		if aggregateCM3 <= tier.ThresholdCM3 {
			return tier
		}
	}
	return t.Tiers[len(t.Tiers)-1]
}

// Tier is one shipping bracket. ThresholdCM3 is the upper bound on the
// aggregate bounding-box volume; the last tier is unbounded.
type Tier struct {
	Size         enums.ShippingSize
	ThresholdCM3 float64
	Cost         decimal.Decimal
}

// Table is the immutable rate configuration handed in per call; the engine
// never reads ambient state.
type Table struct {
	Rates         map[enums.Material]decimal.Decimal
	Tiers         []Tier
	MarkupPercent decimal.Decimal
	MinimumOrder  decimal.Decimal
	Currency      string
}

// Unbounded marks the final shipping tier's threshold.
var Unbounded = math.Inf(1)
