package erpclient

import (
	"context"
	"time"

	"github.com/lemonco/backend/internal/domain/erp"
	"github.com/shopspring/decimal"
)

// AssemblyGateway drives stock assembly documents through the command
// channel and lists them through the read channel.
type AssemblyGateway struct {
	sessions *SessionManager
}

// NewAssemblyGateway creates an assembly gateway backed by the session manager
func NewAssemblyGateway(sessions *SessionManager) *AssemblyGateway {
	return &AssemblyGateway{sessions: sessions}
}

// CreateAssembly opens a new assembly document in the external system
func (g *AssemblyGateway) CreateAssembly(ctx context.Context, in erp.NewAssembly) (*erp.AssemblyDocument, error) {
	sess, err := g.sessions.Session(ctx)
	if err != nil {
		return nil, err
	}
	var doc *erp.AssemblyDocument
	err = sess.withWriteCommand(func(api commandAPI) error {
		doc, err = api.CreateAssembly(ctx, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// ViewAssembly loads an assembly document
func (g *AssemblyGateway) ViewAssembly(ctx context.Context, docNo string) (*erp.AssemblyDocument, error) {
	sess, err := g.sessions.Session(ctx)
	if err != nil {
		return nil, err
	}
	var doc *erp.AssemblyDocument
	err = sess.withCommand(func(api commandAPI) error {
		doc, err = api.ViewAssembly(ctx, docNo)
		return err
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// PostAssembly saves the document, consuming components and producing the
// finished item, and returns the consumed components for costing
func (g *AssemblyGateway) PostAssembly(ctx context.Context, docNo string) ([]erp.ConsumedComponent, error) {
	sess, err := g.sessions.Session(ctx)
	if err != nil {
		return nil, err
	}
	var components []erp.ConsumedComponent
	err = sess.withWriteCommand(func(api commandAPI) error {
		components, err = api.SaveAssembly(ctx, docNo)
		return err
	})
	if err != nil {
		return nil, err
	}
	return components, nil
}

// DeleteAssembly voids the assembly document
func (g *AssemblyGateway) DeleteAssembly(ctx context.Context, docNo string) error {
	sess, err := g.sessions.Session(ctx)
	if err != nil {
		return err
	}
	return sess.withWriteCommand(func(api commandAPI) error {
		return api.DeleteAssembly(ctx, docNo)
	})
}

// assemblyRow mirrors the external stock_assembly storage table.
type assemblyRow struct {
	DocNo       string          `gorm:"column:doc_no"`
	ItemCode    string          `gorm:"column:item_code"`
	Description string          `gorm:"column:description"`
	Qty         decimal.Decimal `gorm:"column:qty"`
	DocDate     time.Time       `gorm:"column:doc_date"`
	Cancelled   bool            `gorm:"column:cancelled"`
}

// ListOpenAssemblies lists non-cancelled assembly documents, newest first,
// through a direct query against the external storage
func (g *AssemblyGateway) ListOpenAssemblies(ctx context.Context) ([]erp.AssemblyDocument, error) {
	sess, err := g.sessions.Session(ctx)
	if err != nil {
		return nil, err
	}

	var rows []assemblyRow
	err = sess.ReadDB().WithContext(ctx).
		Raw(`SELECT doc_no, item_code, description, qty, doc_date, cancelled
		     FROM stock_assembly
		     WHERE cancelled = false
		     ORDER BY doc_date DESC, doc_no DESC`).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	docs := make([]erp.AssemblyDocument, 0, len(rows))
	for _, r := range rows {
		docs = append(docs, erp.AssemblyDocument{
			DocNo:       r.DocNo,
			ItemCode:    r.ItemCode,
			Description: r.Description,
			Qty:         r.Qty,
			DocDate:     r.DocDate,
			Cancelled:   r.Cancelled,
		})
	}
	return docs, nil
}

var _ erp.AssemblyGateway = (*AssemblyGateway)(nil)
