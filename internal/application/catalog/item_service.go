// Package catalog exposes read access to the external item master and the
// bill-of-materials import/export path.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lemonco/backend/internal/domain/erp"
	"github.com/lemonco/backend/internal/domain/shared"
	"github.com/lemonco/backend/internal/domain/stock"
	"go.uber.org/zap"
)

// ItemService handles item master and BOM operations
type ItemService struct {
	masterData erp.MasterData
	boms       erp.BomGateway
	logger     *zap.Logger
}

// NewItemService creates a new ItemService
func NewItemService(masterData erp.MasterData, boms erp.BomGateway, logger *zap.Logger) *ItemService {
	return &ItemService{
		masterData: masterData,
		boms:       boms,
		logger:     logger.Named("item"),
	}
}

// Search lists item master rows matching the query; an empty query lists
// every item.
func (s *ItemService) Search(ctx context.Context, query string) ([]erp.Item, error) {
	return s.masterData.SearchItems(ctx, query)
}

// Get loads one item master row.
func (s *ItemService) Get(ctx context.Context, code string) (*erp.Item, error) {
	item, err := s.masterData.LoadItem(ctx, code)
	if err != nil {
		if errors.Is(err, erp.ErrDocumentNotFound) {
			return nil, shared.NewNotFoundError("ITEM_NOT_FOUND", fmt.Sprintf("Item %s not found", code))
		}
		return nil, err
	}
	return item, nil
}

// GetBom returns the BOM lines for an item, ordered by sequence.
func (s *ItemService) GetBom(ctx context.Context, itemCode string) ([]stock.BomLine, error) {
	rows, err := s.boms.GetBom(ctx, itemCode)
	if err != nil {
		return nil, err
	}
	lines := make([]stock.BomLine, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, stock.BomLine{
			ComponentCode: r.ComponentCode,
			QtyPer:        r.QtyPer,
			Uom:           r.Uom,
			Description:   r.Description,
			Sequence:      r.Sequence,
		})
	}
	stock.SortBomLines(lines)
	return lines, nil
}

// ImportBomCSV parses CSV content and replaces the item's BOM with the
// parsed lines. Returns the number of lines imported.
func (s *ItemService) ImportBomCSV(ctx context.Context, itemCode, content string) (int, error) {
	if itemCode == "" {
		return 0, shared.NewValidationError("INVALID_ITEM_CODE", "Item code cannot be empty")
	}
	exists, err := s.masterData.ItemExists(ctx, itemCode)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, shared.NewNotFoundError("ITEM_NOT_FOUND", fmt.Sprintf("Item %s not found", itemCode))
	}

	lines, err := stock.ParseBomCSV(content)
	if err != nil {
		return 0, err
	}

	erpLines := make([]erp.BomLine, 0, len(lines))
	for _, l := range lines {
		erpLines = append(erpLines, erp.BomLine{
			ComponentCode: l.ComponentCode,
			QtyPer:        l.QtyPer,
			Uom:           l.Uom,
			Description:   l.Description,
			Sequence:      l.Sequence,
		})
	}
	if err := s.boms.SaveBom(ctx, itemCode, erpLines); err != nil {
		s.logger.Error("BOM import failed",
			zap.String("item_code", itemCode),
			zap.Int("lines", len(erpLines)),
			zap.Error(err),
		)
		return 0, err
	}

	s.logger.Info("BOM imported",
		zap.String("item_code", itemCode),
		zap.Int("lines", len(erpLines)),
	)
	return len(erpLines), nil
}

// ExportBomCSV renders the item's BOM as CSV with a header row, ordered by
// sequence, so an import of the output reproduces the BOM.
func (s *ItemService) ExportBomCSV(ctx context.Context, itemCode string) (string, error) {
	lines, err := s.GetBom(ctx, itemCode)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("ComponentCode,QtyPer,Uom,Description\n")
	for _, l := range lines {
		b.WriteString(fmt.Sprintf("%s,%s,%s,%s\n", l.ComponentCode, l.QtyPer.String(), l.Uom, l.Description))
	}
	return b.String(), nil
}
