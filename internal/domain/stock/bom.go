package stock

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lemonco/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// BomLine is a single component line of a bill of materials. Sequence
// defines the deterministic line ordering for import/export round-trips.
type BomLine struct {
	ComponentCode string
	QtyPer        decimal.Decimal
	Uom           string
	Description   string
	Sequence      int
}

// SortBomLines orders lines by sequence number, in place.
func SortBomLines(lines []BomLine) {
	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].Sequence < lines[j].Sequence
	})
}

// ParseBomCSV parses BOM lines from CSV content with a header row. Each
// data row is ComponentCode,QtyPer,Uom and optionally a Description column.
// Rows with fewer than three columns are skipped; the sequence number is
// the row position so a re-export reproduces the input order.
func ParseBomCSV(content string) ([]BomLine, error) {
	rows := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	lines := make([]BomLine, 0, len(rows))
	seq := 0
	for i, row := range rows {
		if i == 0 || strings.TrimSpace(row) == "" {
			continue // header or blank
		}
		parts := strings.Split(row, ",")
		if len(parts) < 3 {
			continue
		}
		qtyPer, err := decimal.NewFromString(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, shared.NewValidationError("INVALID_QTY_PER",
				fmt.Sprintf("Invalid quantity-per value %q on row %d", strings.TrimSpace(parts[1]), i+1))
		}
		seq++
		line := BomLine{
			ComponentCode: strings.TrimSpace(parts[0]),
			QtyPer:        qtyPer,
			Uom:           strings.TrimSpace(parts[2]),
			Sequence:      seq,
		}
		if line.ComponentCode == "" {
			return nil, shared.NewValidationError("INVALID_COMPONENT_CODE",
				fmt.Sprintf("Component code is required on row %d", i+1))
		}
		if len(parts) > 3 {
			line.Description = strings.TrimSpace(parts[3])
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return nil, shared.NewValidationError("EMPTY_BOM", "CSV content contains no BOM lines")
	}
	return lines, nil
}
