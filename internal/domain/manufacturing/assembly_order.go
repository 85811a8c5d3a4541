package manufacturing

import (
	"time"

	"github.com/lemonco/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AssemblyStatus represents the status of an assembly order
type AssemblyStatus string

const (
	AssemblyStatusOpen      AssemblyStatus = "Open"
	AssemblyStatusPosted    AssemblyStatus = "Posted"
	AssemblyStatusCancelled AssemblyStatus = "Cancelled"
)

// IsValid checks if the status is a valid AssemblyStatus
func (s AssemblyStatus) IsValid() bool {
	switch s {
	case AssemblyStatusOpen, AssemblyStatusPosted, AssemblyStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of AssemblyStatus
func (s AssemblyStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status.
// Transitions are one-directional: Open -> Posted, Open -> Cancelled.
// Posted and Cancelled are terminal.
func (s AssemblyStatus) CanTransitionTo(target AssemblyStatus) bool {
	switch s {
	case AssemblyStatusOpen:
		return target == AssemblyStatusPosted || target == AssemblyStatusCancelled
	case AssemblyStatusPosted, AssemblyStatusCancelled:
		return false
	}
	return false
}

// AssemblyOrder is a snapshot of a production order. The document number is
// assigned by the external system at creation and is the sole identity key;
// the external system owns the document once the number is assigned.
type AssemblyOrder struct {
	DocNo           string
	ItemCode        string
	ItemDescription string
	Quantity        decimal.Decimal
	ProductionDate  time.Time
	Remarks         string
	Status          AssemblyStatus
	CreatedDate     time.Time
	PostedDate      *time.Time
	TotalCost       *decimal.Decimal
}

// ValidateNewOrder checks the creation preconditions before any external
// call is attempted.
func ValidateNewOrder(itemCode string, quantity decimal.Decimal) error {
	if itemCode == "" {
		return shared.NewValidationError("INVALID_ITEM_CODE", "Item code cannot be empty")
	}
	if !quantity.IsPositive() {
		return shared.NewValidationError("INVALID_QUANTITY", "Quantity must be greater than zero")
	}
	return nil
}

// ParseProductionDate parses an ISO-8601 calendar date string.
func ParseProductionDate(value string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, shared.NewValidationError("INVALID_DATE", "Production date must be a valid ISO-8601 date (YYYY-MM-DD)")
	}
	return d, nil
}

// CostBreakdown is one entry per consumed component during posting.
// TotalCost holds Quantity * UnitCost exactly.
type CostBreakdown struct {
	ComponentCode string
	Description   string
	Quantity      decimal.Decimal
	UnitCost      decimal.Decimal
	TotalCost     decimal.Decimal
}

// NewCostBreakdown builds a breakdown line with its total derived from
// quantity and unit cost.
func NewCostBreakdown(componentCode, description string, quantity, unitCost decimal.Decimal) CostBreakdown {
	return CostBreakdown{
		ComponentCode: componentCode,
		Description:   description,
		Quantity:      quantity,
		UnitCost:      unitCost,
		TotalCost:     quantity.Mul(unitCost),
	}
}

// SumBreakdowns returns the total cost across breakdown lines.
func SumBreakdowns(lines []CostBreakdown) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.TotalCost)
	}
	return total
}
