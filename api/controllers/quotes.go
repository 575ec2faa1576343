package controllers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/quotes3d-backend/api/responses"
	"github.com/angelmondragon/quotes3d-backend/api/validators"
	"github.com/angelmondragon/quotes3d-backend/internal/quotes"
	"github.com/angelmondragon/quotes3d-backend/pkg/config"
	"github.com/angelmondragon/quotes3d-backend/pkg/db/models"
	"github.com/angelmondragon/quotes3d-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/quotes3d-backend/pkg/errors"
	"github.com/angelmondragon/quotes3d-backend/pkg/logger"
	"github.com/angelmondragon/quotes3d-backend/pkg/types"
)

const (
	multipartMemoryLimit = 32 << 20
	maxFileNameLen       = 255
)

// QuoteCreate accepts a multipart upload of STL files plus a JSON
// "selections" field pairing each file with a material and quantity, and
// responds with the priced quote.
func QuoteCreate(svc quotes.Service, upload config.UploadConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quote service unavailable"))
			return
		}

		// Cap the whole request body; per-file limits are enforced below.
		maxBody := upload.MaxFileSizeBytes * int64(max(upload.MaxFilesPerQuote, 1))
		r.Body = http.MaxBytesReader(w, r.Body, maxBody)

		if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart request"))
			return
		}
		defer r.MultipartForm.RemoveAll()

		selections, err := decodeSelections(r.FormValue("selections"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		files, err := collectFiles(r, upload, selections)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.Generate(r.Context(), quotes.GenerateInput{Files: files})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newQuoteResponse(quote, enums.QuoteStatusPriced))
	}
}

// QuoteFetch returns a quote by id with its lifecycle status evaluated at
// read time.
func QuoteFetch(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quoteID, err := quoteIDFromURL(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, status, err := svc.Get(r.Context(), quoteID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newQuoteResponse(quote, status))
	}
}

// QuoteRevise reprices an existing quote with changed material/quantity
// selections. The original quote is superseded, never mutated.
func QuoteRevise(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quoteID, err := quoteIDFromURL(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload reviseRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := quotes.ReviseInput{QuoteID: quoteID}
		for _, sel := range payload.Selections {
			input.Selections = append(input.Selections, quotes.LineSelection{
				Position: sel.Position,
				Material: enums.Material(sel.Material),
				Quantity: sel.Quantity,
			})
		}

		quote, err := svc.Revise(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newQuoteResponse(quote, enums.QuoteStatusPriced))
	}
}

type fileSelectionRequest struct {
	FileName string `json:"file_name" validate:"required"`
	Material string `json:"material" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
}

type selectionsRequest struct {
	Selections []fileSelectionRequest `json:"selections" validate:"required,min=1,dive"`
}

type reviseRequest struct {
	Selections []struct {
		Position int    `json:"position" validate:"min=0"`
		Material string `json:"material" validate:"required"`
		Quantity int    `json:"quantity" validate:"required,min=1"`
	} `json:"selections" validate:"required,min=1,dive"`
}

func decodeSelections(raw string) ([]fileSelectionRequest, error) {
	if raw == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "selections form field required")
	}
	var payload selectionsRequest
	if err := json.Unmarshal([]byte(raw), &payload.Selections); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid selections payload").
			WithDetails(map[string]any{"error": err.Error()})
	}
	if err := validators.ValidateStruct(&payload); err != nil {
		return nil, err
	}
	return payload.Selections, nil
}

// collectFiles pairs uploaded parts with their selections, preserving the
// selection order so line positions are deterministic.
func collectFiles(r *http.Request, upload config.UploadConfig, selections []fileSelectionRequest) ([]quotes.FileSelection, error) {
	parts := r.MultipartForm.File["files"]
	if len(parts) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one file part named 'files' required")
	}

	payloads := make(map[string][]byte, len(parts))
	for _, part := range parts {
		name := validators.SanitizeFileName(part.Filename, maxFileNameLen)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "file part missing a file name")
		}
		if upload.MaxFileSizeBytes > 0 && part.Size > upload.MaxFileSizeBytes {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, name+" exceeds the upload size limit").
				WithDetails(map[string]any{"file_name": name, "size": part.Size})
		}
		if _, dup := payloads[name]; dup {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate file name "+name).
				WithDetails(map[string]any{"file_name": name})
		}

		f, err := part.Open()
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "open uploaded file")
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read uploaded file")
		}
		payloads[name] = data
	}

	files := make([]quotes.FileSelection, 0, len(selections))
	for _, sel := range selections {
		data, ok := payloads[sel.FileName]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "selection references missing file "+sel.FileName).
				WithDetails(map[string]any{"file_name": sel.FileName})
		}
		delete(payloads, sel.FileName)
		files = append(files, quotes.FileSelection{
			FileName: sel.FileName,
			Payload:  data,
			Material: enums.Material(sel.Material),
			Quantity: sel.Quantity,
		})
	}
	for name := range payloads {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file "+name+" has no selection").
			WithDetails(map[string]any{"file_name": name})
	}
	return files, nil
}

func quoteIDFromURL(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "quoteId")
	quoteID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "quote id must be a UUID").
			WithDetails(map[string]any{"quote_id": raw})
	}
	return quoteID, nil
}

type quoteResponse struct {
	ID               string             `json:"id"`
	Status           string             `json:"status"`
	Currency         string             `json:"currency"`
	Subtotal         string             `json:"subtotal"`
	ShippingSize     string             `json:"shipping_size"`
	ShippingCost     string             `json:"shipping_cost"`
	Total            string             `json:"total"`
	FlooredToMinimum bool               `json:"floored_to_minimum"`
	RevisedFrom      *string            `json:"revised_from,omitempty"`
	SupersededBy     *string            `json:"superseded_by,omitempty"`
	ExpiresAt        time.Time          `json:"expires_at"`
	CreatedAt        time.Time          `json:"created_at"`
	LineItems        []lineItemResponse `json:"line_items"`
}

type lineItemResponse struct {
	Position      int                    `json:"position"`
	FileName      string                 `json:"file_name"`
	Material      string                 `json:"material"`
	Quantity      int                    `json:"quantity"`
	VolumeCM3     float64                `json:"volume_cm3"`
	DimensionsMM  [3]float64             `json:"dimensions_mm"`
	TriangleCount int                    `json:"triangle_count"`
	Watertight    bool                   `json:"watertight"`
	UnitPrice     string                 `json:"unit_price"`
	TotalPrice    string                 `json:"total_price"`
	Warnings      types.LineItemWarnings `json:"warnings,omitempty"`
}

func newQuoteResponse(quote *models.Quote, status enums.QuoteStatus) quoteResponse {
	resp := quoteResponse{
		ID:               quote.ID.String(),
		Status:           status.String(),
		Currency:         quote.Currency,
		Subtotal:         formatCents(quote.SubtotalCents),
		ShippingSize:     quote.ShippingSize.String(),
		ShippingCost:     formatCents(quote.ShippingCents),
		Total:            formatCents(quote.TotalCents),
		FlooredToMinimum: quote.FlooredToMin,
		ExpiresAt:        quote.ExpiresAt,
		CreatedAt:        quote.CreatedAt,
	}
	if quote.RevisedFrom != nil {
		value := quote.RevisedFrom.String()
		resp.RevisedFrom = &value
	}
	if quote.SupersededBy != nil {
		value := quote.SupersededBy.String()
		resp.SupersededBy = &value
	}
	for _, line := range quote.LineItems {
		w, d, h := line.BoundingBox.Dimensions()
		resp.LineItems = append(resp.LineItems, lineItemResponse{
			Position:      line.Position,
			FileName:      line.FileName,
			Material:      line.Material.String(),
			Quantity:      line.Quantity,
			VolumeCM3:     line.VolumeMM3 / 1000.0,
			DimensionsMM:  [3]float64{w, d, h},
			TriangleCount: line.TriangleCount,
			Watertight:    line.Watertight,
			UnitPrice:     formatCents(line.UnitPriceCents),
			TotalPrice:    formatCents(line.TotalCents),
			Warnings:      line.Warnings,
		})
	}
	return resp
}

func formatCents(cents int64) string {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).StringFixed(2)
}
