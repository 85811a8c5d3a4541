package stock

import (
	"fmt"
	"time"

	"github.com/lemonco/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AdjustmentLine is a single line in a stock adjustment document.
// Quantity is signed: positive increases stock, negative decreases it.
// UnitCost is required when increasing stock; for decreases it is optional
// and for reference only.
type AdjustmentLine struct {
	ItemCode string
	Quantity decimal.Decimal
	UnitCost *decimal.Decimal
}

// Adjustment is a stock adjustment document: a header plus an ordered list
// of lines. The external system assigns the document number at commit.
type Adjustment struct {
	DocDate     time.Time
	Description string
	RefDocNo    string
	Lines       []AdjustmentLine
}

// DefaultDescription is used when the caller supplies no description.
const DefaultDescription = "Stock adjustment via LemonCo API"

// ParseDocDate parses an ISO-8601 document date string.
func ParseDocDate(value string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, shared.NewValidationError("INVALID_DATE", "Document date must be a valid ISO-8601 date (YYYY-MM-DD)")
	}
	return d, nil
}

// NormalizeLines validates and filters adjustment lines ahead of any
// external call. Zero-quantity lines are dropped silently; they represent
// "no change requested" entries in bulk input. A positive-quantity line
// without a unit cost, an empty item code, or a document that is empty
// after filtering all fail validation.
func NormalizeLines(lines []AdjustmentLine) ([]AdjustmentLine, error) {
	qualifying := make([]AdjustmentLine, 0, len(lines))
	for _, line := range lines {
		if line.ItemCode == "" {
			return nil, shared.NewValidationError("INVALID_ITEM_CODE", "ItemCode is required for all stock adjustment lines")
		}
		if line.Quantity.IsZero() {
			continue
		}
		if line.Quantity.IsPositive() && line.UnitCost == nil {
			return nil, shared.NewValidationError("MISSING_UNIT_COST",
				fmt.Sprintf("UnitCost is required when increasing stock for item %s", line.ItemCode))
		}
		qualifying = append(qualifying, line)
	}
	if len(qualifying) == 0 {
		return nil, shared.NewValidationError("NO_LINES", "At least one line with non-zero quantity is required for stock adjustment")
	}
	return qualifying, nil
}
