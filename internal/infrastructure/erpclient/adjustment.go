package erpclient

import (
	"context"

	"github.com/lemonco/backend/internal/domain/erp"
)

// AdjustmentGateway commits stock adjustment documents through the command
// channel.
type AdjustmentGateway struct {
	sessions *SessionManager
}

// NewAdjustmentGateway creates an adjustment gateway backed by the session manager
func NewAdjustmentGateway(sessions *SessionManager) *AdjustmentGateway {
	return &AdjustmentGateway{sessions: sessions}
}

// CreateAdjustment opens, fills, and commits one adjustment document and
// returns the document number the external system assigned
func (g *AdjustmentGateway) CreateAdjustment(ctx context.Context, in erp.NewAdjustment) (string, error) {
	sess, err := g.sessions.Session(ctx)
	if err != nil {
		return "", err
	}
	var docNo string
	err = sess.withWriteCommand(func(api commandAPI) error {
		docNo, err = api.CreateAdjustment(ctx, in)
		return err
	})
	if err != nil {
		return "", err
	}
	return docNo, nil
}

var _ erp.AdjustmentGateway = (*AdjustmentGateway)(nil)
