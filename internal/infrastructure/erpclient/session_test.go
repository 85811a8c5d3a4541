package erpclient

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lemonco/backend/internal/domain/erp"
	"github.com/lemonco/backend/internal/domain/shared"
	"github.com/lemonco/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// fakeCommandAPI is a scriptable command channel. Unset hooks succeed with
// zero values.
type fakeCommandAPI struct {
	loginErr   error
	licenseErr error

	loginCalls   int
	licenseCalls int

	createAssembly  func(in erp.NewAssembly) (*erp.AssemblyDocument, error)
	viewAssembly    func(docNo string) (*erp.AssemblyDocument, error)
	saveAssembly    func(docNo string) ([]erp.ConsumedComponent, error)
	deleteAssembly  func(docNo string) error
	createAdj       func(in erp.NewAdjustment) (string, error)
	createSalesOrd  func(in erp.NewSalesOrder) (*erp.SalesOrderDocument, error)
	saveBom         func(itemCode string, lines []erp.BomLine) error
}

func (f *fakeCommandAPI) Login(ctx context.Context, user, password string) error {
	f.loginCalls++
	return f.loginErr
}

func (f *fakeCommandAPI) ActivateLicense(ctx context.Context, companyCode string) error {
	f.licenseCalls++
	return f.licenseErr
}

func (f *fakeCommandAPI) CreateAssembly(ctx context.Context, in erp.NewAssembly) (*erp.AssemblyDocument, error) {
	if f.createAssembly != nil {
		return f.createAssembly(in)
	}
	return &erp.AssemblyDocument{}, nil
}

func (f *fakeCommandAPI) ViewAssembly(ctx context.Context, docNo string) (*erp.AssemblyDocument, error) {
	if f.viewAssembly != nil {
		return f.viewAssembly(docNo)
	}
	return &erp.AssemblyDocument{DocNo: docNo}, nil
}

func (f *fakeCommandAPI) SaveAssembly(ctx context.Context, docNo string) ([]erp.ConsumedComponent, error) {
	if f.saveAssembly != nil {
		return f.saveAssembly(docNo)
	}
	return nil, nil
}

func (f *fakeCommandAPI) DeleteAssembly(ctx context.Context, docNo string) error {
	if f.deleteAssembly != nil {
		return f.deleteAssembly(docNo)
	}
	return nil
}

func (f *fakeCommandAPI) CreateAdjustment(ctx context.Context, in erp.NewAdjustment) (string, error) {
	if f.createAdj != nil {
		return f.createAdj(in)
	}
	return "ADJ-00001", nil
}

func (f *fakeCommandAPI) CreateSalesOrder(ctx context.Context, in erp.NewSalesOrder) (*erp.SalesOrderDocument, error) {
	if f.createSalesOrd != nil {
		return f.createSalesOrd(in)
	}
	return &erp.SalesOrderDocument{DocNo: "SO-00001"}, nil
}

func (f *fakeCommandAPI) SaveBom(ctx context.Context, itemCode string, lines []erp.BomLine) error {
	if f.saveBom != nil {
		return f.saveBom(itemCode, lines)
	}
	return nil
}

// newMockGormDB opens a gorm connection over sqlmock.
func newMockGormDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err, "Failed to create sqlmock")

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err, "Failed to open GORM connection")

	t.Cleanup(func() { _ = mockDB.Close() })
	return gormDB, mock
}

func testERPConfig() config.ERPConfig {
	return config.ERPConfig{
		Server:           "tcp:erp.internal",
		Port:             5432,
		Database:         "LEMONCO",
		User:             "reader",
		Password:         "secret",
		CommandPort:      8800,
		ConnectionTimeout: 5 * time.Second,
		CommandTimeout:   10 * time.Second,
		OperatorUser:     "OPERATOR",
		OperatorPassword: "oppass",
		CompanyCode:      "LEMON",
	}
}

// newTestManager wires a session manager with injected channels.
func newTestManager(t *testing.T, cfg config.ERPConfig, cmd commandAPI, openErr error) (*SessionManager, sqlmock.Sqlmock) {
	t.Helper()

	db, mock := newMockGormDB(t)
	m := NewSessionManager(cfg, zap.NewNop())
	m.openDB = func(dsn string) (*gorm.DB, error) {
		if openErr != nil {
			return nil, openErr
		}
		return db, nil
	}
	m.newClient = func(baseURL string, timeout time.Duration) commandAPI {
		return cmd
	}
	return m, mock
}

func TestSessionManagerLazyInitialization(t *testing.T) {
	fake := &fakeCommandAPI{}
	m, _ := newTestManager(t, testERPConfig(), fake, nil)

	sess, err := m.Session(context.Background())
	require.NoError(t, err)
	assert.True(t, sess.Connected)
	assert.True(t, sess.WriteCapable)
	assert.Equal(t, 1, fake.loginCalls)
	assert.Equal(t, 1, fake.licenseCalls)

	// Second call reuses the session without reconnecting.
	again, err := m.Session(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sess.ID, again.ID)
	assert.Equal(t, 1, fake.loginCalls)
}

func TestSessionManagerConnectFailure(t *testing.T) {
	fake := &fakeCommandAPI{}
	m, _ := newTestManager(t, testERPConfig(), fake, errors.New("connection refused"))

	sess, err := m.Session(context.Background())
	require.Error(t, err)
	assert.Nil(t, sess)
	assert.True(t, shared.IsKind(err, shared.KindConnection))

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "CONNECT_FAILED", domainErr.Code)

	// The command channel was never reached.
	assert.Equal(t, 0, fake.loginCalls)
}

func TestSessionManagerLoginRejected(t *testing.T) {
	fake := &fakeCommandAPI{loginErr: erp.ErrLoginRejected}
	m, _ := newTestManager(t, testERPConfig(), fake, nil)

	_, err := m.Session(context.Background())
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "LOGIN_REJECTED", domainErr.Code)

	// A later attempt retries from scratch once the credentials work.
	fake.loginErr = nil
	sess, err := m.Session(context.Background())
	require.NoError(t, err)
	assert.True(t, sess.Connected)
	assert.Equal(t, 2, fake.loginCalls)
}

func TestSessionManagerSkipsLoginWithoutOperator(t *testing.T) {
	cfg := testERPConfig()
	cfg.OperatorUser = ""

	fake := &fakeCommandAPI{}
	m, _ := newTestManager(t, cfg, fake, nil)

	_, err := m.Session(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, fake.loginCalls)
	assert.Equal(t, 1, fake.licenseCalls)
}

func TestSessionManagerLicenseFailureDegradesToReadOnly(t *testing.T) {
	fake := &fakeCommandAPI{licenseErr: erp.ErrLicenseUnavailable}
	m, _ := newTestManager(t, testERPConfig(), fake, nil)

	sess, err := m.Session(context.Background())
	require.NoError(t, err)
	assert.True(t, sess.Connected)
	assert.False(t, sess.WriteCapable)

	// Reads still go through.
	err = sess.withCommand(func(api commandAPI) error { return nil })
	assert.NoError(t, err)

	// Writes fail fast at the gate.
	err = sess.withWriteCommand(func(api commandAPI) error {
		t.Fatal("write command must not run on a read-only session")
		return nil
	})
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "WRITE_UNAVAILABLE", domainErr.Code)
}

func TestSessionManagerInitializeIsIdempotent(t *testing.T) {
	fake := &fakeCommandAPI{}
	m, _ := newTestManager(t, testERPConfig(), fake, nil)

	require.NoError(t, m.Initialize(context.Background()))
	require.NoError(t, m.Initialize(context.Background()))
	assert.Equal(t, 1, fake.loginCalls)
}

func TestSessionManagerTestConnection(t *testing.T) {
	t.Run("unreachable backend reports false", func(t *testing.T) {
		m, _ := newTestManager(t, testERPConfig(), &fakeCommandAPI{}, errors.New("no route to host"))
		assert.False(t, m.TestConnection(context.Background()))
	})

	t.Run("healthy backend establishes the session", func(t *testing.T) {
		fake := &fakeCommandAPI{}
		m, _ := newTestManager(t, testERPConfig(), fake, nil)

		assert.True(t, m.TestConnection(context.Background()))

		// The health check left a usable session behind.
		sess, err := m.Session(context.Background())
		require.NoError(t, err)
		assert.True(t, sess.Connected)
		assert.Equal(t, 1, fake.loginCalls)
	})
}
