package quotes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/angelmondragon/quotes3d-backend/internal/constraints"
	"github.com/angelmondragon/quotes3d-backend/internal/geometry"
	"github.com/angelmondragon/quotes3d-backend/internal/mesh"
	"github.com/angelmondragon/quotes3d-backend/internal/pricing"
	"github.com/angelmondragon/quotes3d-backend/pkg/db/models"
	"github.com/angelmondragon/quotes3d-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/quotes3d-backend/pkg/errors"
	"github.com/angelmondragon/quotes3d-backend/pkg/logger"
	"github.com/angelmondragon/quotes3d-backend/pkg/metrics"
	"github.com/angelmondragon/quotes3d-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service runs the upload-to-quote pipeline and quote lifecycle reads.
type Service interface {
	Generate(ctx context.Context, input GenerateInput) (*models.Quote, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Quote, enums.QuoteStatus, error)
	Revise(ctx context.Context, input ReviseInput) (*models.Quote, error)
}

// Options tunes the pipeline gates and lifecycle clock.
type Options struct {
	BuildVolume      constraints.BuildVolume
	MaxFiles         int
	MaxFileSizeBytes int64
	MaxQuantity      int
	QuoteTTL         time.Duration
	Logger           *logger.Logger
	Metrics          *metrics.PipelineMetrics
	Now              func() time.Time
}

type service struct {
	repo    Repository
	tx      txRunner
	table   pricing.Table
	opts    Options
	now     func() time.Time
	logg    *logger.Logger
	metrics *metrics.PipelineMetrics
}

// NewService builds a quote service with the required dependencies.
func NewService(repo Repository, tx txRunner, table pricing.Table, opts Options) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("quotes repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if len(table.Rates) == 0 {
		return nil, fmt.Errorf("pricing table required")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:    repo,
		tx:      tx,
		table:   table,
		opts:    opts,
		now:     now,
		logg:    opts.Logger,
		metrics: opts.Metrics,
	}, nil
}

type analysis struct {
	props    geometry.Properties
	warnings types.LineItemWarnings
}

func (s *service) Generate(ctx context.Context, input GenerateInput) (*models.Quote, error) {
	if err := s.gateFiles(input.Files); err != nil {
		s.countFailure(err)
		return nil, err
	}

	analyses, err := s.analyzeAll(ctx, input.Files)
	if err != nil {
		s.countFailure(err)
		return nil, err
	}

	items := make([]pricing.Item, len(input.Files))
	for i, file := range input.Files {
		items[i] = pricing.Item{
			Props:    analyses[i].props,
			Material: file.Material,
			Quantity: file.Quantity,
		}
	}

	start := s.now()
	breakdown, err := pricing.Compute(items, s.table)
	s.metrics.ObserveStage("price", s.now().Sub(start))
	if err != nil {
		s.countFailure(err)
		return nil, err
	}

	quote := s.buildQuote(breakdown, input.Files, analyses)
	if err := s.persist(ctx, quote, nil); err != nil {
		s.countFailure(err)
		return nil, err
	}

	s.metrics.IncPriced()
	if s.logg != nil {
		lctx := s.logg.WithQuoteID(ctx, quote.ID.String())
		s.logg.Info(lctx, "quote priced")
	}
	return quote, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Quote, enums.QuoteStatus, error) {
	if id == uuid.Nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "quote id required")
	}
	quote, err := s.repo.FindQuote(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", pkgerrors.New(pkgerrors.CodeNotFound, "quote not found")
		}
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load quote")
	}
	return quote, quote.StatusAt(s.now()), nil
}

func (s *service) Revise(ctx context.Context, input ReviseInput) (*models.Quote, error) {
	current, status, err := s.Get(ctx, input.QuoteID)
	if err != nil {
		return nil, err
	}
	if status != enums.QuoteStatusPriced {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("quote in status %s cannot be revised", status)).
			WithDetails(map[string]any{"status": status.String()})
	}
	if len(input.Selections) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one selection change required")
	}

	lines := make([]models.QuoteLineItem, len(current.LineItems))
	copy(lines, current.LineItems)
	for _, sel := range input.Selections {
		if sel.Position < 0 || sel.Position >= len(lines) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("no line at position %d", sel.Position)).
				WithDetails(map[string]any{"position": sel.Position})
		}
		if err := s.gateSelection(sel.Material, sel.Quantity, lines[sel.Position].FileName); err != nil {
			return nil, err
		}
		lines[sel.Position].Material = sel.Material
		lines[sel.Position].Quantity = sel.Quantity
	}

	// Reprice from the persisted geometry snapshot; the mesh is gone.
	items := make([]pricing.Item, len(lines))
	files := make([]FileSelection, len(lines))
	analyses := make([]analysis, len(lines))
	for i, line := range lines {
		props := geometry.Properties{
			VolumeMM3:     line.VolumeMM3,
			Bounds:        line.BoundingBox,
			Watertight:    line.Watertight,
			TriangleCount: line.TriangleCount,
		}
		items[i] = pricing.Item{Props: props, Material: line.Material, Quantity: line.Quantity}
		files[i] = FileSelection{FileName: line.FileName, Material: line.Material, Quantity: line.Quantity}
		analyses[i] = analysis{props: props, warnings: line.Warnings}
	}

	breakdown, err := pricing.Compute(items, s.table)
	if err != nil {
		s.countFailure(err)
		return nil, err
	}

	successor := s.buildQuote(breakdown, files, analyses)
	if err := s.persist(ctx, successor, &current.ID); err != nil {
		s.countFailure(err)
		return nil, err
	}

	s.metrics.IncPriced()
	if s.logg != nil {
		lctx := s.logg.WithQuoteID(ctx, successor.ID.String())
		s.logg.Info(lctx, "quote revised")
	}
	return successor, nil
}

// gateFiles enforces the request-shape limits before any decoding starts.
func (s *service) gateFiles(files []FileSelection) error {
	if len(files) == 0 {
		return pkgerrors.New(pkgerrors.CodeEmptyOrder, "no files to quote")
	}
	if s.opts.MaxFiles > 0 && len(files) > s.opts.MaxFiles {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("at most %d files per quote", s.opts.MaxFiles)).
			WithDetails(map[string]any{"max_files": s.opts.MaxFiles, "got": len(files)})
	}
	for _, file := range files {
		if !strings.HasSuffix(strings.ToLower(file.FileName), ".stl") {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("%s: only STL files are accepted", file.FileName)).
				WithDetails(map[string]any{"file_name": file.FileName})
		}
		if s.opts.MaxFileSizeBytes > 0 && int64(len(file.Payload)) > s.opts.MaxFileSizeBytes {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("%s exceeds the %d byte upload limit", file.FileName, s.opts.MaxFileSizeBytes)).
				WithDetails(map[string]any{"file_name": file.FileName, "size": len(file.Payload)})
		}
		if err := s.gateSelection(file.Material, file.Quantity, file.FileName); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) gateSelection(material enums.Material, quantity int, fileName string) error {
	if !material.IsValid() {
		return pkgerrors.New(pkgerrors.CodeUnknownMaterial,
			fmt.Sprintf("%s: material %q is not offered", fileName, material)).
			WithDetails(map[string]any{"file_name": fileName, "material": material.String()})
	}
	if quantity < 1 || (s.opts.MaxQuantity > 0 && quantity > s.opts.MaxQuantity) {
		return pkgerrors.New(pkgerrors.CodeInvalidQuantity,
			fmt.Sprintf("%s: quantity %d outside 1..%d", fileName, quantity, s.opts.MaxQuantity)).
			WithDetails(map[string]any{"file_name": fileName, "quantity": quantity})
	}
	return nil
}

// analyzeAll decodes and analyzes every file concurrently. Each file fails
// or succeeds on its own; all failures are reported together.
func (s *service) analyzeAll(ctx context.Context, files []FileSelection) ([]analysis, error) {
	results := make([]analysis, len(files))
	failures := make([]error, len(files))

	var g errgroup.Group
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				failures[i] = err
				return nil
			}
			result, err := s.analyzeOne(file)
			if err != nil {
				failures[i] = fmt.Errorf("%s: %w", file.FileName, err)
				return nil
			}
			results[i] = result
			return nil
		})
	}
	_ = g.Wait()

	if err := multierr.Combine(failures...); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *service) analyzeOne(file FileSelection) (analysis, error) {
	start := time.Now()
	decoded, err := mesh.Parse(file.Payload)
	s.metrics.ObserveStage("parse", time.Since(start))
	if err != nil {
		return analysis{}, err
	}

	start = time.Now()
	props := geometry.Analyze(decoded.Triangles)
	s.metrics.ObserveStage("analyze", time.Since(start))
	s.metrics.ObserveTriangles(props.TriangleCount)

	result, err := constraints.Validate(props, s.opts.BuildVolume)
	if err != nil {
		return analysis{}, err
	}
	return analysis{props: props, warnings: result.Warnings}, nil
}

// buildQuote freezes a pricing breakdown into the persistent aggregate.
func (s *service) buildQuote(breakdown pricing.Breakdown, files []FileSelection, analyses []analysis) *models.Quote {
	now := s.now()
	quote := &models.Quote{
		ID:            uuid.New(),
		Currency:      s.table.Currency,
		SubtotalCents: toCents(breakdown.Subtotal),
		ShippingSize:  breakdown.ShippingSize,
		ShippingCents: toCents(breakdown.ShippingCost),
		TotalCents:    toCents(breakdown.Total),
		FlooredToMin:  breakdown.FlooredToMin,
		ExpiresAt:     now.Add(s.opts.QuoteTTL),
		CreatedAt:     now,
	}
	for i, priced := range breakdown.Items {
		quote.LineItems = append(quote.LineItems, models.QuoteLineItem{
			ID:             uuid.New(),
			QuoteID:        quote.ID,
			Position:       i,
			FileName:       files[i].FileName,
			Material:       priced.Material,
			Quantity:       priced.Quantity,
			VolumeMM3:      priced.Props.VolumeMM3,
			TriangleCount:  priced.Props.TriangleCount,
			Watertight:     priced.Props.Watertight,
			BoundingBox:    priced.Props.Bounds,
			Warnings:       analyses[i].warnings,
			UnitPriceCents: toCents(priced.UnitPrice),
			TotalCents:     toCents(priced.TotalPrice),
		})
	}
	return quote
}

func (s *service) persist(ctx context.Context, quote *models.Quote, supersedes *uuid.UUID) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if supersedes != nil {
			quote.RevisedFrom = supersedes
		}
		if _, err := repo.CreateQuote(ctx, quote); err != nil {
			return err
		}
		if supersedes != nil {
			if err := repo.MarkSuperseded(ctx, *supersedes, quote.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "quote was already revised")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist quote")
	}
	return nil
}

// countFailure records the rejection in quotes_failed_total by error code.
func (s *service) countFailure(err error) {
	if typed := pkgerrors.As(err); typed != nil {
		s.metrics.IncFailed(string(typed.Code()))
		return
	}
	s.metrics.IncFailed("unknown")
}

var centsPerDollar = decimal.NewFromInt(100)

func toCents(amount decimal.Decimal) int64 {
	return amount.Mul(centsPerDollar).Round(0).IntPart()
}
