package controllers

import (
	"net/http"

	"github.com/angelmondragon/quotes3d-backend/api/responses"
	"github.com/angelmondragon/quotes3d-backend/pkg/config"
	"github.com/angelmondragon/quotes3d-backend/pkg/enums"
	"github.com/angelmondragon/quotes3d-backend/pkg/logger"
)

type materialResponse struct {
	ID            string  `json:"id"`
	RatePerCM3    float64 `json:"rate_per_cm3"`
	Currency      string  `json:"currency"`
	MarkupPercent float64 `json:"markup_percent"`
}

// MaterialList exposes the rate card so clients can render selection UIs.
func MaterialList(pricing config.PricingConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rates := pricing.MaterialRates()
		materials := make([]materialResponse, 0, len(rates))
		for _, material := range enums.Materials() {
			materials = append(materials, materialResponse{
				ID:            material.String(),
				RatePerCM3:    rates[material.String()],
				Currency:      pricing.Currency,
				MarkupPercent: pricing.MarkupPercent,
			})
		}
		responses.WriteSuccess(w, map[string]any{"materials": materials})
	}
}
