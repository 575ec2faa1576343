package quotes

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/quotes3d-backend/pkg/db/models"
)

// Repository defines persistence operations for quote aggregates.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateQuote(ctx context.Context, quote *models.Quote) (*models.Quote, error)
	FindQuote(ctx context.Context, id uuid.UUID) (*models.Quote, error)
	MarkSuperseded(ctx context.Context, id, successorID uuid.UUID) error
}
