package quotes

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/quotes3d-backend/pkg/enums"
)

// FileSelection pairs one uploaded mesh file with its print selection.
type FileSelection struct {
	FileName string
	Payload  []byte
	Material enums.Material
	Quantity int
}

// GenerateInput carries everything needed to price a new quote.
type GenerateInput struct {
	Files []FileSelection
}

// LineSelection replaces the material/quantity selection of one existing
// line, addressed by its position within the quote.
type LineSelection struct {
	Position int
	Material enums.Material
	Quantity int
}

// ReviseInput reprices an existing quote with changed selections. The
// stored geometry is reused; no files are re-uploaded.
type ReviseInput struct {
	QuoteID    uuid.UUID
	Selections []LineSelection
}
