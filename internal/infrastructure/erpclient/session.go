// Package erpclient is the concrete adapter for the external ERP backend.
// It owns the single process-wide session (a command channel to the ERP
// application server plus a direct read channel to its storage) and
// implements the document gateway ports on top of it.
package erpclient

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lemonco/backend/internal/domain/erp"
	"github.com/lemonco/backend/internal/domain/shared"
	"github.com/lemonco/backend/internal/infrastructure/config"
	"github.com/lemonco/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// commandAPI is the command channel to the ERP application server. The
// concrete implementation is the HTTP commandClient; tests substitute fakes.
type commandAPI interface {
	Login(ctx context.Context, user, password string) error
	ActivateLicense(ctx context.Context, companyCode string) error
	CreateAssembly(ctx context.Context, in erp.NewAssembly) (*erp.AssemblyDocument, error)
	ViewAssembly(ctx context.Context, docNo string) (*erp.AssemblyDocument, error)
	SaveAssembly(ctx context.Context, docNo string) ([]erp.ConsumedComponent, error)
	DeleteAssembly(ctx context.Context, docNo string) error
	CreateAdjustment(ctx context.Context, in erp.NewAdjustment) (string, error)
	CreateSalesOrder(ctx context.Context, in erp.NewSalesOrder) (*erp.SalesOrderDocument, error)
	SaveBom(ctx context.Context, itemCode string, lines []erp.BomLine) error
}

// Session is the authenticated, long-lived handle to the external system.
// The command channel is not safe for concurrent use; every command goes
// through withCommand, which serializes callers. The read channel is a
// pooled SQL connection and needs no extra locking.
type Session struct {
	ID           uuid.UUID
	Connected    bool
	WriteCapable bool

	cmd commandAPI
	db  *gorm.DB
	mu  sync.Mutex
}

// withCommand runs fn against the command channel while holding the
// serialization lock.
func (s *Session) withCommand(fn func(api commandAPI) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.cmd)
}

// withWriteCommand is withCommand gated on write capability. When license
// activation failed at initialization, write operations fail fast here
// instead of deep inside a save.
func (s *Session) withWriteCommand(fn func(api commandAPI) error) error {
	if !s.WriteCapable {
		return shared.NewConnectionError("WRITE_UNAVAILABLE",
			"Write capability unavailable: ERP license was not activated")
	}
	return s.withCommand(fn)
}

// ReadDB returns the read channel to the ERP storage.
func (s *Session) ReadDB() *gorm.DB {
	return s.db
}

// SessionManager owns the lifecycle of the process-wide ERP session. The
// session is created lazily on first demand and reused until process exit;
// a failed call never discards it, only a nil session triggers another
// initialization attempt.
type SessionManager struct {
	cfg    config.ERPConfig
	logger *zap.Logger

	mu      sync.Mutex
	session *Session

	// Injection points for tests.
	openDB    func(dsn string) (*gorm.DB, error)
	newClient func(baseURL string, timeout time.Duration) commandAPI
}

// NewSessionManager creates a session manager for the configured ERP backend
func NewSessionManager(cfg config.ERPConfig, log *zap.Logger) *SessionManager {
	return &SessionManager{
		cfg:    cfg,
		logger: log.Named("erp"),
		openDB: func(dsn string) (*gorm.DB, error) {
			return gorm.Open(postgres.Open(dsn), &gorm.Config{
				Logger: logger.NewGormLogger(log, gormlogger.Warn),
			})
		},
		newClient: func(baseURL string, timeout time.Duration) commandAPI {
			return newCommandClient(baseURL, timeout)
		},
	}
}

// Session returns a ready session handle, lazily initializing one when none
// exists. It never returns a partially initialized handle: on failure the
// error escalates to the caller because no document operation is meaningful
// without a session.
func (m *SessionManager) Session(ctx context.Context) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session != nil {
		return m.session, nil
	}
	if err := m.initializeLocked(ctx); err != nil {
		return nil, err
	}
	return m.session, nil
}

// Initialize attempts a fresh connection, login and license activation.
// Idempotent but not memoized against failure: every invocation of this
// method starts over. An established session is left untouched.
func (m *SessionManager) Initialize(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session != nil {
		return nil
	}
	return m.initializeLocked(ctx)
}

// TestConnection reports whether the external system is reachable. When no
// session exists it attempts initialization, so a successful health check
// may establish the session as a side effect. Failures are reported as
// false, never escalated past the health boundary.
func (m *SessionManager) TestConnection(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session != nil {
		return true
	}
	if err := m.initializeLocked(ctx); err != nil {
		m.logger.Error("ERP connection test failed", zap.Error(err))
		return false
	}
	return true
}

// initializeLocked performs the connection sequence. Caller holds m.mu.
//
// The server address is normalized first: a "tcp:" transport prefix is
// accepted by the raw database connection, but the licensing channel parses
// the same string as a plain host name and would fail to resolve it.
func (m *SessionManager) initializeLocked(ctx context.Context) error {
	server := m.cfg.NormalizedServer()

	m.logger.Info("Initializing ERP connection",
		zap.String("server", server),
		zap.String("database", m.cfg.Database),
	)

	db, err := m.openDB(m.cfg.DSN())
	if err != nil {
		m.logger.Error("Failed to open ERP read channel",
			zap.String("server", server),
			zap.String("database", m.cfg.Database),
			zap.Error(err),
		)
		return shared.NewConnectionError("CONNECT_FAILED",
			fmt.Sprintf("Failed to connect to ERP database %s on %s: %v", m.cfg.Database, server, err))
	}

	client := m.newClient(m.cfg.CommandBaseURL(), m.cfg.CommandTimeout)

	// Authenticate the operational user when one is configured. A rejected
	// login aborts initialization: an unauthenticated session must never
	// be handed out.
	if m.cfg.OperatorUser != "" {
		if err := client.Login(ctx, m.cfg.OperatorUser, m.cfg.OperatorPassword); err != nil {
			m.logger.Error("ERP operator login rejected",
				zap.String("server", server),
				zap.String("user", m.cfg.OperatorUser),
				zap.Error(err),
			)
			return shared.NewConnectionError("LOGIN_REJECTED",
				fmt.Sprintf("ERP login rejected for user %s: %v", m.cfg.OperatorUser, err))
		}
	}

	// License activation is best-effort: read operations work without it,
	// so a degraded licensing dependency must not take reads down. Write
	// operations check WriteCapable and fail fast instead.
	writeCapable := true
	if err := client.ActivateLicense(ctx, m.cfg.CompanyCode); err != nil {
		m.logger.Warn("ERP license activation failed; session is read-only",
			zap.String("server", server),
			zap.String("company", m.cfg.CompanyCode),
			zap.Error(err),
		)
		writeCapable = false
	}

	m.session = &Session{
		ID:           uuid.New(),
		Connected:    true,
		WriteCapable: writeCapable,
		cmd:          client,
		db:           db,
	}

	m.logger.Info("ERP session initialized",
		zap.String("session_id", m.session.ID.String()),
		zap.Bool("write_capable", writeCapable),
	)
	return nil
}
