// Package trade drives sales order creation and its master-data validation
// path against the external system.
package trade

import (
	"context"
	"fmt"
	"time"

	"github.com/lemonco/backend/internal/domain/erp"
	"github.com/lemonco/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SalesOrderLineInput is one inbound sales order line.
type SalesOrderLineInput struct {
	ItemCode        string           `json:"itemCode" binding:"required"`
	Qty             decimal.Decimal  `json:"qty" binding:"required"`
	UnitPrice       *decimal.Decimal `json:"unitPrice,omitempty"`
	DiscountPercent *decimal.Decimal `json:"discountPercent,omitempty"`
	Remarks         string           `json:"remarks"`
}

// CreateSalesOrderInput carries the fields for creating a sales order.
type CreateSalesOrderInput struct {
	CustomerCode string                `json:"customerCode" binding:"required"`
	Lines        []SalesOrderLineInput `json:"lines" binding:"required"`
	Remarks      string                `json:"remarks"`
	ExternalRef  string                `json:"externalRef"`
	DeliveryDate string                `json:"deliveryDate"`
}

// SalesOrderResult reports the outcome of a sales order creation.
type SalesOrderResult struct {
	SoNo        string           `json:"soNo,omitempty"`
	Status      string           `json:"status,omitempty"`
	Success     bool             `json:"success"`
	Errors      []string         `json:"errors"`
	TotalAmount *decimal.Decimal `json:"totalAmount,omitempty"`
}

func salesOrderFailure(errs ...string) *SalesOrderResult {
	return &SalesOrderResult{Success: false, Errors: errs}
}

// SalesOrderService handles sales order business operations
type SalesOrderService struct {
	gateway    erp.SalesOrderGateway
	masterData erp.MasterData
	logger     *zap.Logger
}

// NewSalesOrderService creates a new SalesOrderService
func NewSalesOrderService(gateway erp.SalesOrderGateway, masterData erp.MasterData, logger *zap.Logger) *SalesOrderService {
	return &SalesOrderService{
		gateway:    gateway,
		masterData: masterData,
		logger:     logger.Named("salesorder"),
	}
}

// CustomerExists reports whether the external debtor master holds the code.
// Absence is a false result, never an error.
func (s *SalesOrderService) CustomerExists(ctx context.Context, code string) (bool, error) {
	if code == "" {
		return false, nil
	}
	return s.masterData.CustomerExists(ctx, code)
}

// ValidateItems returns the subset of the input codes that do not exist in
// the external item master. An empty result means every item is valid.
func (s *SalesOrderService) ValidateItems(ctx context.Context, codes []string) ([]string, error) {
	invalid := []string{}
	for _, code := range codes {
		exists, err := s.masterData.ItemExists(ctx, code)
		if err != nil {
			return nil, err
		}
		if !exists {
			invalid = append(invalid, code)
		}
	}
	return invalid, nil
}

// Create validates the customer and items against the external masters and
// creates the sales order. Master-data misses and creation failures come
// back as a structured result; only malformed input is returned as an
// error.
func (s *SalesOrderService) Create(ctx context.Context, input CreateSalesOrderInput) (*SalesOrderResult, error) {
	if input.CustomerCode == "" {
		return nil, shared.NewValidationError("INVALID_CUSTOMER_CODE", "Customer code cannot be empty")
	}
	if len(input.Lines) == 0 {
		return nil, shared.NewValidationError("NO_LINES", "At least one line is required for a sales order")
	}
	for _, l := range input.Lines {
		if l.ItemCode == "" {
			return nil, shared.NewValidationError("INVALID_ITEM_CODE", "ItemCode is required for all sales order lines")
		}
		if !l.Qty.IsPositive() {
			return nil, shared.NewValidationError("INVALID_QUANTITY",
				fmt.Sprintf("Quantity must be greater than zero for item %s", l.ItemCode))
		}
	}

	var deliveryDate *time.Time
	if input.DeliveryDate != "" {
		d, err := time.Parse("2006-01-02", input.DeliveryDate)
		if err != nil {
			return nil, shared.NewValidationError("INVALID_DATE", "Delivery date must be a valid ISO-8601 date (YYYY-MM-DD)")
		}
		deliveryDate = &d
	}

	exists, err := s.masterData.CustomerExists(ctx, input.CustomerCode)
	if err != nil {
		return nil, err
	}
	if !exists {
		return salesOrderFailure(fmt.Sprintf("Customer %s does not exist", input.CustomerCode)), nil
	}

	codes := make([]string, 0, len(input.Lines))
	for _, l := range input.Lines {
		codes = append(codes, l.ItemCode)
	}
	invalid, err := s.ValidateItems(ctx, codes)
	if err != nil {
		return nil, err
	}
	if len(invalid) > 0 {
		errs := make([]string, 0, len(invalid))
		for _, code := range invalid {
			errs = append(errs, fmt.Sprintf("Item %s does not exist", code))
		}
		return salesOrderFailure(errs...), nil
	}

	lines := make([]erp.SalesOrderLine, 0, len(input.Lines))
	for _, l := range input.Lines {
		lines = append(lines, erp.SalesOrderLine{
			ItemCode:        l.ItemCode,
			Qty:             l.Qty,
			UnitPrice:       l.UnitPrice,
			DiscountPercent: l.DiscountPercent,
			Remarks:         l.Remarks,
		})
	}

	order := erp.NewSalesOrder{
		CustomerCode: input.CustomerCode,
		Lines:        lines,
		Remarks:      input.Remarks,
		ExternalRef:  input.ExternalRef,
	}
	order.DeliveryDate = deliveryDate

	doc, err := s.gateway.CreateSalesOrder(ctx, order)
	if err != nil {
		s.logger.Error("Sales order creation failed",
			zap.String("customer_code", input.CustomerCode),
			zap.Int("lines", len(lines)),
			zap.Error(err),
		)
		return salesOrderFailure(err.Error()), nil
	}

	s.logger.Info("Sales order created",
		zap.String("so_no", doc.DocNo),
		zap.String("customer_code", input.CustomerCode),
	)
	total := doc.FinalTotal
	return &SalesOrderResult{
		SoNo:        doc.DocNo,
		Status:      "Open",
		Success:     true,
		Errors:      []string{},
		TotalAmount: &total,
	}, nil
}
