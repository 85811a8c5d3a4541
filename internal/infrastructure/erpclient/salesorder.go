package erpclient

import (
	"context"

	"github.com/lemonco/backend/internal/domain/erp"
)

// SalesOrderGateway creates sales orders through the command channel.
type SalesOrderGateway struct {
	sessions *SessionManager
}

// NewSalesOrderGateway creates a sales order gateway backed by the session manager
func NewSalesOrderGateway(sessions *SessionManager) *SalesOrderGateway {
	return &SalesOrderGateway{sessions: sessions}
}

// CreateSalesOrder creates a sales order and returns the assigned document
// number together with the final total the external system computed
func (g *SalesOrderGateway) CreateSalesOrder(ctx context.Context, in erp.NewSalesOrder) (*erp.SalesOrderDocument, error) {
	sess, err := g.sessions.Session(ctx)
	if err != nil {
		return nil, err
	}
	var doc *erp.SalesOrderDocument
	err = sess.withWriteCommand(func(api commandAPI) error {
		doc, err = api.CreateSalesOrder(ctx, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

var _ erp.SalesOrderGateway = (*SalesOrderGateway)(nil)
