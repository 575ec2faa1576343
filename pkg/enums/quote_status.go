package enums

import "fmt"

// QuoteStatus tracks the quote lifecycle. Draft quotes have no pricing yet;
// a quote is priced exactly once, then either expires or is superseded by a
// revision. Expired and superseded are terminal.
type QuoteStatus string

const (
	QuoteStatusDraft      QuoteStatus = "draft"
	QuoteStatusPriced     QuoteStatus = "priced"
	QuoteStatusExpired    QuoteStatus = "expired"
	QuoteStatusSuperseded QuoteStatus = "superseded"
)

var validQuoteStatuses = []QuoteStatus{
	QuoteStatusDraft,
	QuoteStatusPriced,
	QuoteStatusExpired,
	QuoteStatusSuperseded,
}

// String implements fmt.Stringer.
func (q QuoteStatus) String() string {
	return string(q)
}

// IsValid reports whether the value is a known QuoteStatus.
func (q QuoteStatus) IsValid() bool {
	for _, candidate := range validQuoteStatuses {
		if candidate == q {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions.
func (q QuoteStatus) IsTerminal() bool {
	return q == QuoteStatusExpired || q == QuoteStatusSuperseded
}

// ParseQuoteStatus converts raw input into a QuoteStatus.
func ParseQuoteStatus(value string) (QuoteStatus, error) {
	for _, candidate := range validQuoteStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid quote status %q", value)
}
