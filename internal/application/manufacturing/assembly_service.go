// Package manufacturing drives the assembly order lifecycle: creation,
// retrieval, posting with cost rollup, and cancellation.
package manufacturing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lemonco/backend/internal/domain/erp"
	"github.com/lemonco/backend/internal/domain/manufacturing"
	"github.com/lemonco/backend/internal/infrastructure/logger"
	"github.com/lemonco/backend/internal/infrastructure/postedstore"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateAssemblyInput carries the fields for opening a new assembly order.
type CreateAssemblyInput struct {
	ItemCode       string          `json:"itemCode" binding:"required"`
	Quantity       decimal.Decimal `json:"quantity" binding:"required"`
	ProductionDate string          `json:"productionDate" binding:"required"`
	Remarks        string          `json:"remarks"`
}

// PostAssemblyResult reports the outcome of posting an assembly order.
// Success carries a cost breakdown whose total equals the sum of line
// totals; failure carries the original error message.
type PostAssemblyResult struct {
	DocNo          string                        `json:"docNo"`
	Success        bool                          `json:"success"`
	ErrorMessage   string                        `json:"errorMessage,omitempty"`
	TotalCost      decimal.Decimal               `json:"totalCost"`
	CostBreakdowns []manufacturing.CostBreakdown `json:"costBreakdowns"`
}

func postFailure(docNo, message string) *PostAssemblyResult {
	return &PostAssemblyResult{
		DocNo:          docNo,
		Success:        false,
		ErrorMessage:   message,
		TotalCost:      decimal.Zero,
		CostBreakdowns: []manufacturing.CostBreakdown{},
	}
}

// AssemblyService handles assembly order business operations
type AssemblyService struct {
	gateway erp.AssemblyGateway
	posted  postedstore.Store
	logger  *zap.Logger
}

// NewAssemblyService creates a new AssemblyService
func NewAssemblyService(gateway erp.AssemblyGateway, posted postedstore.Store, log *zap.Logger) *AssemblyService {
	return &AssemblyService{
		gateway: gateway,
		posted:  posted,
		logger:  log.Named("assembly"),
	}
}

// Create opens a new assembly order in the external system and returns the
// snapshot with the externally assigned document number and status Open.
func (s *AssemblyService) Create(ctx context.Context, input CreateAssemblyInput) (*manufacturing.AssemblyOrder, error) {
	if err := manufacturing.ValidateNewOrder(input.ItemCode, input.Quantity); err != nil {
		return nil, err
	}
	productionDate, err := manufacturing.ParseProductionDate(input.ProductionDate)
	if err != nil {
		return nil, err
	}

	doc, err := s.gateway.CreateAssembly(ctx, erp.NewAssembly{
		ItemCode:    input.ItemCode,
		Qty:         input.Quantity,
		DocDate:     productionDate,
		Description: input.Remarks,
	})
	if err != nil {
		s.logger.Error("Failed to create assembly order",
			zap.String("item_code", input.ItemCode),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("Assembly order created",
		zap.String("doc_no", doc.DocNo),
		zap.String("item_code", doc.ItemCode),
		zap.String("request_id", logger.GetRequestID(ctx)),
	)
	return &manufacturing.AssemblyOrder{
		DocNo:          doc.DocNo,
		ItemCode:       doc.ItemCode,
		Quantity:       doc.Qty,
		ProductionDate: doc.DocDate,
		Remarks:        input.Remarks,
		Status:         manufacturing.AssemblyStatusOpen,
		CreatedDate:    time.Now().UTC(),
	}, nil
}

// Get returns the assembly order snapshot, or nil when no document carries
// the number. Absence is not an error.
func (s *AssemblyService) Get(ctx context.Context, docNo string) (*manufacturing.AssemblyOrder, error) {
	doc, err := s.gateway.ViewAssembly(ctx, docNo)
	if err != nil {
		if errors.Is(err, erp.ErrDocumentNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return s.toOrder(ctx, doc)
}

// toOrder derives the order snapshot from the external document. The
// external system only records cancellation, so posted status comes from
// the owned posted store.
func (s *AssemblyService) toOrder(ctx context.Context, doc *erp.AssemblyDocument) (*manufacturing.AssemblyOrder, error) {
	order := &manufacturing.AssemblyOrder{
		DocNo:           doc.DocNo,
		ItemCode:        doc.ItemCode,
		ItemDescription: doc.Description,
		Quantity:        doc.Qty,
		ProductionDate:  doc.DocDate,
		Status:          manufacturing.AssemblyStatusOpen,
		CreatedDate:     doc.DocDate,
	}
	if doc.Cancelled {
		order.Status = manufacturing.AssemblyStatusCancelled
		return order, nil
	}

	postedAt, err := s.posted.PostedAt(ctx, doc.DocNo)
	if err != nil {
		return nil, err
	}
	if postedAt != nil {
		order.Status = manufacturing.AssemblyStatusPosted
		order.PostedDate = postedAt
	}
	return order, nil
}

// Post commits the assembly order: the external system consumes the
// component materials and produces the finished item. On success the result
// carries one cost breakdown line per consumed component. Failures are
// returned as a structured result, never as an error: posting is the
// boundary where external failures must stay catchable and reportable.
func (s *AssemblyService) Post(ctx context.Context, docNo string) *PostAssemblyResult {
	doc, err := s.gateway.ViewAssembly(ctx, docNo)
	if err != nil {
		if errors.Is(err, erp.ErrDocumentNotFound) {
			return postFailure(docNo, fmt.Sprintf("Assembly order %s not found", docNo))
		}
		s.logger.Error("Failed to load assembly order for posting",
			zap.String("doc_no", docNo),
			zap.Error(err),
		)
		return postFailure(docNo, err.Error())
	}
	if doc.Cancelled {
		return postFailure(docNo, fmt.Sprintf("Assembly order %s is cancelled", docNo))
	}

	postedAt, err := s.posted.PostedAt(ctx, docNo)
	if err != nil {
		s.logger.Error("Posted-status lookup failed",
			zap.String("doc_no", docNo),
			zap.Error(err),
		)
		return postFailure(docNo, err.Error())
	}
	if postedAt != nil {
		return postFailure(docNo, fmt.Sprintf("Assembly order %s is already posted", docNo))
	}

	components, err := s.gateway.PostAssembly(ctx, docNo)
	if err != nil {
		s.logger.Error("Assembly posting failed",
			zap.String("doc_no", docNo),
			zap.Error(err),
		)
		return postFailure(docNo, err.Error())
	}

	breakdowns := make([]manufacturing.CostBreakdown, 0, len(components))
	for _, c := range components {
		breakdowns = append(breakdowns, manufacturing.NewCostBreakdown(c.ItemCode, c.Description, c.Qty, c.UnitCost))
	}
	totalCost := manufacturing.SumBreakdowns(breakdowns)

	now := time.Now().UTC()
	marked, err := s.posted.MarkPosted(ctx, docNo, now)
	if err != nil {
		s.logger.Error("Failed to record posted status",
			zap.String("doc_no", docNo),
			zap.Error(err),
		)
	} else if !marked {
		s.logger.Warn("Document was concurrently marked posted",
			zap.String("doc_no", docNo),
		)
	}

	s.logger.Info("Assembly order posted",
		zap.String("doc_no", docNo),
		zap.String("total_cost", totalCost.String()),
		zap.Int("components", len(breakdowns)),
		zap.String("request_id", logger.GetRequestID(ctx)),
	)
	return &PostAssemblyResult{
		DocNo:          docNo,
		Success:        true,
		TotalCost:      totalCost,
		CostBreakdowns: breakdowns,
	}
}

// Cancel voids the assembly order. A missing, already cancelled, or already
// posted document yields false; so does any external failure. Cancel never
// returns an error, keeping the endpoint idempotent-safe for callers.
func (s *AssemblyService) Cancel(ctx context.Context, docNo string) bool {
	doc, err := s.gateway.ViewAssembly(ctx, docNo)
	if err != nil {
		if !errors.Is(err, erp.ErrDocumentNotFound) {
			s.logger.Error("Failed to load assembly order for cancellation",
				zap.String("doc_no", docNo),
				zap.Error(err),
			)
		}
		return false
	}
	if doc.Cancelled {
		return false
	}

	postedAt, err := s.posted.PostedAt(ctx, docNo)
	if err != nil {
		s.logger.Error("Posted-status lookup failed",
			zap.String("doc_no", docNo),
			zap.Error(err),
		)
		return false
	}
	if postedAt != nil {
		// Posted is terminal.
		return false
	}

	if err := s.gateway.DeleteAssembly(ctx, docNo); err != nil {
		s.logger.Error("Failed to cancel assembly order",
			zap.String("doc_no", docNo),
			zap.Error(err),
		)
		return false
	}

	s.logger.Info("Assembly order cancelled", zap.String("doc_no", docNo))
	return true
}

// ListOpen enumerates assembly orders that are still open: not cancelled in
// the external system and not posted by this service.
func (s *AssemblyService) ListOpen(ctx context.Context) ([]manufacturing.AssemblyOrder, error) {
	docs, err := s.gateway.ListOpenAssemblies(ctx)
	if err != nil {
		return nil, err
	}

	orders := make([]manufacturing.AssemblyOrder, 0, len(docs))
	for i := range docs {
		order, err := s.toOrder(ctx, &docs[i])
		if err != nil {
			return nil, err
		}
		if order.Status != manufacturing.AssemblyStatusOpen {
			continue
		}
		orders = append(orders, *order)
	}
	return orders, nil
}
