package erp

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Gateway errors
// ---------------------------------------------------------------------------

var (
	// Session errors
	ErrNotConnected       = errors.New("erp: no session to the external system")
	ErrLoginRejected      = errors.New("erp: operational user login rejected")
	ErrWriteUnavailable   = errors.New("erp: write capability unavailable (license not activated)")
	ErrCommandFailed      = errors.New("erp: external command failed")
	ErrInvalidResponse    = errors.New("erp: invalid response from external system")
	ErrLicenseUnavailable = errors.New("erp: license activation failed")

	// Document errors
	ErrDocumentNotFound  = errors.New("erp: document not found")
	ErrDocumentCancelled = errors.New("erp: document is cancelled")
)

// ---------------------------------------------------------------------------
// Document shapes returned by the external system
// ---------------------------------------------------------------------------

// AssemblyDocument is the external representation of a stock assembly.
// The external system only tracks a cancellation flag; it has no durable
// posted indicator, so posted status is kept in an owned store.
type AssemblyDocument struct {
	DocNo       string
	ItemCode    string
	Description string
	Qty         decimal.Decimal
	DocDate     time.Time
	Cancelled   bool
}

// NewAssembly carries the fields for opening a new assembly document.
type NewAssembly struct {
	ItemCode    string
	Qty         decimal.Decimal
	DocDate     time.Time
	Description string
}

// ConsumedComponent is one component the external system consumed while
// posting an assembly, with the unit cost it charged.
type ConsumedComponent struct {
	ItemCode    string
	Description string
	Qty         decimal.Decimal
	UnitCost    decimal.Decimal
}

// AdjustmentLine is one detail row of a stock adjustment document.
// Qty is signed: positive increases stock, negative decreases it.
type AdjustmentLine struct {
	ItemCode string
	Qty      decimal.Decimal
	UnitCost *decimal.Decimal
}

// NewAdjustment carries the fields for committing a stock adjustment.
type NewAdjustment struct {
	DocDate     time.Time
	Description string
	RefDocNo    string
	Lines       []AdjustmentLine
}

// SalesOrderLine is one detail row of a sales order.
type SalesOrderLine struct {
	ItemCode        string
	Qty             decimal.Decimal
	UnitPrice       *decimal.Decimal
	DiscountPercent *decimal.Decimal
	Remarks         string
}

// NewSalesOrder carries the fields for creating a sales order.
type NewSalesOrder struct {
	CustomerCode string
	Lines        []SalesOrderLine
	Remarks      string
	ExternalRef  string
	DeliveryDate *time.Time
}

// SalesOrderDocument is the external representation of a created sales order.
type SalesOrderDocument struct {
	DocNo      string
	FinalTotal decimal.Decimal
}

// BomLine is one component line of an item's bill of materials. Sequence
// defines the deterministic line ordering for import/export round-trips.
type BomLine struct {
	ComponentCode string
	QtyPer        decimal.Decimal
	Uom           string
	Description   string
	Sequence      int
}

// Item is a row from the external item master.
type Item struct {
	ItemCode    string
	Description string
	BaseUom     string
	ItemGroup   string
	HasBom      bool
}

// ---------------------------------------------------------------------------
// Gateway ports
// ---------------------------------------------------------------------------

// AssemblyGateway issues stock assembly commands against the external system.
type AssemblyGateway interface {
	// CreateAssembly opens a new assembly document; the external system
	// assigns the document number.
	CreateAssembly(ctx context.Context, in NewAssembly) (*AssemblyDocument, error)

	// ViewAssembly loads an assembly document. Returns ErrDocumentNotFound
	// when no document carries the given number.
	ViewAssembly(ctx context.Context, docNo string) (*AssemblyDocument, error)

	// PostAssembly commits the document: the external system consumes the
	// component materials and produces the finished item in one save. The
	// consumed components with their unit costs are returned for costing.
	PostAssembly(ctx context.Context, docNo string) ([]ConsumedComponent, error)

	// DeleteAssembly voids the document in the external system.
	DeleteAssembly(ctx context.Context, docNo string) error

	// ListOpenAssemblies enumerates non-cancelled assembly documents through
	// a direct query against the external system's storage.
	ListOpenAssemblies(ctx context.Context) ([]AssemblyDocument, error)
}

// AdjustmentGateway commits stock adjustment documents.
type AdjustmentGateway interface {
	// CreateAdjustment opens a header, appends one detail per line, commits,
	// and returns the assigned document number.
	CreateAdjustment(ctx context.Context, in NewAdjustment) (string, error)
}

// SalesOrderGateway creates sales orders.
type SalesOrderGateway interface {
	CreateSalesOrder(ctx context.Context, in NewSalesOrder) (*SalesOrderDocument, error)
}

// MasterData answers existence and lookup questions against the external
// customer/debtor and item masters.
type MasterData interface {
	// CustomerExists reports whether the debtor master holds the code.
	// Absence is a false result, never an error.
	CustomerExists(ctx context.Context, code string) (bool, error)

	// ItemExists reports whether the item master holds the code.
	ItemExists(ctx context.Context, code string) (bool, error)

	// LoadItem loads an item master row. Returns ErrDocumentNotFound when
	// the code is unknown.
	LoadItem(ctx context.Context, code string) (*Item, error)

	// SearchItems lists item master rows whose code or description matches
	// the query; an empty query lists all items.
	SearchItems(ctx context.Context, query string) ([]Item, error)
}

// BomGateway reads and writes item bills of materials.
type BomGateway interface {
	// GetBom returns the BOM lines for an item, ordered by sequence.
	GetBom(ctx context.Context, itemCode string) ([]BomLine, error)

	// SaveBom replaces the BOM for an item.
	SaveBom(ctx context.Context, itemCode string, lines []BomLine) error
}
