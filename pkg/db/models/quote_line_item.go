package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/quotes3d-backend/pkg/enums"
	"github.com/angelmondragon/quotes3d-backend/pkg/types"
)

// QuoteLineItem snapshots one analyzed part inside a quote. Geometry
// results are persisted so a revision can reprice without the original
// file; the mesh itself is never stored.
type QuoteLineItem struct {
	ID             uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	QuoteID        uuid.UUID               `gorm:"column:quote_id;type:uuid;not null;index"`
	Position       int                     `gorm:"column:position;not null"`
	FileName       string                  `gorm:"column:file_name;not null"`
	Material       enums.Material          `gorm:"column:material;type:text;not null"`
	Quantity       int                     `gorm:"column:quantity;not null"`
	VolumeMM3      float64                 `gorm:"column:volume_mm3;not null"`
	TriangleCount  int                     `gorm:"column:triangle_count;not null"`
	Watertight     bool                    `gorm:"column:watertight;not null"`
	BoundingBox    types.BoundingBox       `gorm:"column:bounding_box;type:jsonb;serializer:json"`
	Warnings       types.LineItemWarnings  `gorm:"column:warnings;type:jsonb;serializer:json"`
	UnitPriceCents int64                   `gorm:"column:unit_price_cents;not null"`
	TotalCents     int64                   `gorm:"column:total_cents;not null"`
	CreatedAt      time.Time               `gorm:"column:created_at;autoCreateTime"`
}
