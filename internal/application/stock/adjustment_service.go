// Package stock drives stock adjustment documents: line validation,
// filtering, and commit against the external system.
package stock

import (
	"context"

	"github.com/lemonco/backend/internal/domain/erp"
	"github.com/lemonco/backend/internal/domain/stock"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AdjustmentLineInput is one inbound adjustment line. Quantity is signed:
// positive increases stock, negative decreases it.
type AdjustmentLineInput struct {
	ItemCode string           `json:"itemCode" binding:"required"`
	Quantity decimal.Decimal  `json:"quantity"`
	UnitCost *decimal.Decimal `json:"unitCost,omitempty"`
}

// CreateAdjustmentInput carries the fields for committing a stock adjustment.
type CreateAdjustmentInput struct {
	DocDate     string                `json:"docDate" binding:"required"`
	Description string                `json:"description"`
	RefDocNo    string                `json:"refDocNo"`
	Lines       []AdjustmentLineInput `json:"lines" binding:"required"`
}

// AdjustmentResult reports the outcome of a stock adjustment commit.
type AdjustmentResult struct {
	DocNo        string `json:"docNo,omitempty"`
	Success      bool   `json:"success"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// AdjustmentService handles stock adjustment business operations
type AdjustmentService struct {
	gateway erp.AdjustmentGateway
	logger  *zap.Logger
}

// NewAdjustmentService creates a new AdjustmentService
func NewAdjustmentService(gateway erp.AdjustmentGateway, logger *zap.Logger) *AdjustmentService {
	return &AdjustmentService{
		gateway: gateway,
		logger:  logger.Named("adjustment"),
	}
}

// Create validates and commits one stock adjustment document. Precondition
// violations return a validation error before any external call; a
// commit-time failure is returned as a structured result carrying the
// original message.
func (s *AdjustmentService) Create(ctx context.Context, input CreateAdjustmentInput) (*AdjustmentResult, error) {
	docDate, err := stock.ParseDocDate(input.DocDate)
	if err != nil {
		return nil, err
	}

	lines := make([]stock.AdjustmentLine, 0, len(input.Lines))
	for _, l := range input.Lines {
		lines = append(lines, stock.AdjustmentLine{
			ItemCode: l.ItemCode,
			Quantity: l.Quantity,
			UnitCost: l.UnitCost,
		})
	}
	qualifying, err := stock.NormalizeLines(lines)
	if err != nil {
		return nil, err
	}

	description := input.Description
	if description == "" {
		description = stock.DefaultDescription
	}

	erpLines := make([]erp.AdjustmentLine, 0, len(qualifying))
	for _, l := range qualifying {
		erpLines = append(erpLines, erp.AdjustmentLine{
			ItemCode: l.ItemCode,
			Qty:      l.Quantity,
			UnitCost: l.UnitCost,
		})
	}

	docNo, err := s.gateway.CreateAdjustment(ctx, erp.NewAdjustment{
		DocDate:     docDate,
		Description: description,
		RefDocNo:    input.RefDocNo,
		Lines:       erpLines,
	})
	if err != nil {
		s.logger.Error("Stock adjustment commit failed",
			zap.String("ref_doc_no", input.RefDocNo),
			zap.Int("lines", len(erpLines)),
			zap.Error(err),
		)
		return &AdjustmentResult{Success: false, ErrorMessage: err.Error()}, nil
	}

	s.logger.Info("Stock adjustment committed",
		zap.String("doc_no", docNo),
		zap.Int("lines", len(erpLines)),
	)
	return &AdjustmentResult{DocNo: docNo, Success: true}, nil
}
