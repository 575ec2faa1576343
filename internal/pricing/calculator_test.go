package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/quotes3d-backend/internal/geometry"
	"github.com/angelmondragon/quotes3d-backend/pkg/config"
	"github.com/angelmondragon/quotes3d-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/quotes3d-backend/pkg/errors"
	"github.com/angelmondragon/quotes3d-backend/pkg/types"
)

func testTable(t *testing.T) Table {
	t.Helper()
	table, err := TableFromConfig(
		config.PricingConfig{
			PA12GreyRate:    2.50,
			PA12BlackRate:   0.55,
			PA12GBRate:      0.60,
			MarkupPercent:   15,
			MinimumOrderUSD: 20,
			Currency:        "USD",
		},
		config.ShippingConfig{
			SmallCost: 5, MediumCost: 10, LargeCost: 15,
			SmallThresholdCM3: 100, MediumThresholdCM3: 500,
		},
	)
	if err != nil {
		t.Fatalf("building table: %v", err)
	}
	return table
}

func cubeItem(sideMM float64, material enums.Material, qty int) Item {
	return Item{
		Props: geometry.Properties{
			VolumeMM3:     sideMM * sideMM * sideMM,
			Bounds:        types.BoundingBox{MaxX: sideMM, MaxY: sideMM, MaxZ: sideMM},
			Watertight:    true,
			TriangleCount: 12,
		},
		Material: material,
		Quantity: qty,
	}
}

func mustEqual(t *testing.T, got decimal.Decimal, want string, label string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Fatalf("%s: expected %s, got %s", label, want, got.String())
	}
}

// The worked example from the rate card: 10mm cube, $2.50/cm³, qty 2,
// 15% markup, $20 minimum.
func TestComputeWorkedExample(t *testing.T) {
	breakdown, err := Compute([]Item{cubeItem(10, enums.MaterialPA12Grey, 2)}, testTable(t))
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}

	item := breakdown.Items[0]
	mustEqual(t, item.UnitPrice, "2.88", "unit price")
	mustEqual(t, item.TotalPrice, "5.75", "line total")
	mustEqual(t, breakdown.Subtotal, "20", "floored subtotal")
	if !breakdown.FlooredToMin {
		t.Fatal("expected minimum order floor to apply")
	}
	if breakdown.ShippingSize != enums.ShippingSizeSmall {
		t.Fatalf("expected SMALL shipping, got %s", breakdown.ShippingSize)
	}
	mustEqual(t, breakdown.Total, "25", "total")
}

func TestComputeUnitPriceScalesLinearly(t *testing.T) {
	table := testTable(t)

	single, err := Compute([]Item{cubeItem(10, enums.MaterialPA12Grey, 1)}, table)
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	double := cubeItem(10, enums.MaterialPA12Grey, 1)
	double.Props.VolumeMM3 *= 2
	doubled, err := Compute([]Item{double}, table)
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}

	// Each unit price rounds half-up independently, so the doubled price
	// may sit a cent off the doubled rounded price. Compare against the
	// exact product within that bound.
	exact := single.Items[0].UnitPrice.Mul(decimal.NewFromInt(2))
	diff := doubled.Items[0].UnitPrice.Sub(exact).Abs()
	if diff.GreaterThan(decimal.NewFromFloat(0.01)) {
		t.Fatalf("doubling volume must double unit price within a cent: 2×%s vs %s",
			single.Items[0].UnitPrice, doubled.Items[0].UnitPrice)
	}
}

func TestComputeSubtotalAboveMinimumNotFloored(t *testing.T) {
	// 30mm cube: 27 cm³ × 2.50 × 1.15 = 77.625 → 77.63
	breakdown, err := Compute([]Item{cubeItem(30, enums.MaterialPA12Grey, 1)}, testTable(t))
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}

	mustEqual(t, breakdown.Items[0].UnitPrice, "77.63", "unit price")
	mustEqual(t, breakdown.Subtotal, "77.63", "subtotal")
	if breakdown.FlooredToMin {
		t.Fatal("floor applied above the minimum")
	}
}

func TestComputeShippingTiers(t *testing.T) {
	table := testTable(t)
	cases := []struct {
		sideMM float64
		want   enums.ShippingSize
	}{
		{40, enums.ShippingSizeSmall},   // 64 cm³ bbox
		{70, enums.ShippingSizeMedium},  // 343 cm³
		{100, enums.ShippingSizeLarge},  // 1000 cm³
		{400, enums.ShippingSizeLarge},  // past every threshold
	}
	for _, tc := range cases {
		breakdown, err := Compute([]Item{cubeItem(tc.sideMM, enums.MaterialPA12Grey, 1)}, table)
		if err != nil {
			t.Fatalf("compute failed: %v", err)
		}
		if breakdown.ShippingSize != tc.want {
			t.Fatalf("side %v: expected %s, got %s", tc.sideMM, tc.want, breakdown.ShippingSize)
		}
	}
}

func TestComputeShippingMonotonic(t *testing.T) {
	table := testTable(t)
	prev := decimal.Zero
	for _, side := range []float64{10, 30, 46, 60, 79, 100, 200} {
		breakdown, err := Compute([]Item{cubeItem(side, enums.MaterialPA12Grey, 1)}, table)
		if err != nil {
			t.Fatalf("compute failed: %v", err)
		}
		if breakdown.ShippingCost.LessThan(prev) {
			t.Fatalf("shipping cost decreased at side %v", side)
		}
		prev = breakdown.ShippingCost
	}
}

func TestComputeAggregatesShippingAcrossItems(t *testing.T) {
	// Two 40mm cubes are 128 cm³ together: small alone, medium combined.
	items := []Item{
		cubeItem(40, enums.MaterialPA12Grey, 1),
		cubeItem(40, enums.MaterialPA12Black, 1),
	}
	breakdown, err := Compute(items, testTable(t))
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if breakdown.ShippingSize != enums.ShippingSizeMedium {
		t.Fatalf("expected MEDIUM for combined size, got %s", breakdown.ShippingSize)
	}
}

func TestComputeDeterministic(t *testing.T) {
	table := testTable(t)
	items := []Item{
		cubeItem(17, enums.MaterialPA12GB, 3),
		cubeItem(23, enums.MaterialPA12Black, 2),
	}

	first, err := Compute(items, table)
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	second, err := Compute(items, table)
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}

	if first.Total.String() != second.Total.String() {
		t.Fatalf("identical inputs priced differently: %s vs %s", first.Total, second.Total)
	}
}

func TestComputeEmptyOrder(t *testing.T) {
	_, err := Compute(nil, testTable(t))
	if !pkgerrors.HasCode(err, pkgerrors.CodeEmptyOrder) {
		t.Fatalf("expected EMPTY_ORDER, got %v", err)
	}
}

func TestComputeInvalidQuantity(t *testing.T) {
	_, err := Compute([]Item{cubeItem(10, enums.MaterialPA12Grey, 0)}, testTable(t))
	if !pkgerrors.HasCode(err, pkgerrors.CodeInvalidQuantity) {
		t.Fatalf("expected INVALID_QUANTITY, got %v", err)
	}
}

func TestComputeUnknownMaterial(t *testing.T) {
	item := cubeItem(10, enums.Material("PETG"), 1)
	_, err := Compute([]Item{item}, testTable(t))
	if !pkgerrors.HasCode(err, pkgerrors.CodeUnknownMaterial) {
		t.Fatalf("expected UNKNOWN_MATERIAL, got %v", err)
	}
}

func TestTableFromConfigRejectsBadRate(t *testing.T) {
	_, err := TableFromConfig(
		config.PricingConfig{PA12GreyRate: 0, PA12BlackRate: 0.55, PA12GBRate: 0.60},
		config.ShippingConfig{SmallThresholdCM3: 100, MediumThresholdCM3: 500},
	)
	if err == nil {
		t.Fatal("expected error for non-positive rate")
	}
}
