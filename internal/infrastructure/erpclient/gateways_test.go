package erpclient

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lemonco/backend/internal/domain/erp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readySessionManager returns a manager whose session is already established
// against a fake command channel and a sqlmock read channel.
func readySessionManager(t *testing.T, fake *fakeCommandAPI) (*SessionManager, sqlmock.Sqlmock) {
	t.Helper()

	m, mock := newTestManager(t, testERPConfig(), fake, nil)
	require.NoError(t, m.Initialize(context.Background()))
	return m, mock
}

func TestAssemblyGatewayCreateAssembly(t *testing.T) {
	var captured erp.NewAssembly
	fake := &fakeCommandAPI{
		createAssembly: func(in erp.NewAssembly) (*erp.AssemblyDocument, error) {
			captured = in
			return &erp.AssemblyDocument{
				DocNo:    "AS-00042",
				ItemCode: in.ItemCode,
				Qty:      in.Qty,
				DocDate:  in.DocDate,
			}, nil
		},
	}
	m, _ := readySessionManager(t, fake)
	g := NewAssemblyGateway(m)

	docDate := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	doc, err := g.CreateAssembly(context.Background(), erp.NewAssembly{
		ItemCode: "FG-LEMON-1L",
		Qty:      decimal.NewFromInt(50),
		DocDate:  docDate,
	})
	require.NoError(t, err)
	assert.Equal(t, "AS-00042", doc.DocNo)
	assert.Equal(t, "FG-LEMON-1L", captured.ItemCode)
	assert.True(t, captured.Qty.Equal(decimal.NewFromInt(50)))
}

func TestAssemblyGatewayWriteGate(t *testing.T) {
	fake := &fakeCommandAPI{licenseErr: erp.ErrLicenseUnavailable}
	m, _ := readySessionManager(t, fake)
	g := NewAssemblyGateway(m)

	_, err := g.CreateAssembly(context.Background(), erp.NewAssembly{
		ItemCode: "FG-LEMON-1L",
		Qty:      decimal.NewFromInt(1),
		DocDate:  time.Now(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Write capability unavailable")

	// Viewing is a read and still works on the degraded session.
	doc, err := g.ViewAssembly(context.Background(), "AS-00001")
	require.NoError(t, err)
	assert.Equal(t, "AS-00001", doc.DocNo)
}

func TestAssemblyGatewayPostAssembly(t *testing.T) {
	fake := &fakeCommandAPI{
		saveAssembly: func(docNo string) ([]erp.ConsumedComponent, error) {
			return []erp.ConsumedComponent{
				{ItemCode: "RM-SUGAR", Qty: decimal.NewFromInt(10), UnitCost: decimal.NewFromFloat(1.25)},
				{ItemCode: "RM-LEMON", Qty: decimal.NewFromInt(30), UnitCost: decimal.NewFromFloat(0.4)},
			}, nil
		},
	}
	m, _ := readySessionManager(t, fake)
	g := NewAssemblyGateway(m)

	components, err := g.PostAssembly(context.Background(), "AS-00042")
	require.NoError(t, err)
	require.Len(t, components, 2)
	assert.Equal(t, "RM-SUGAR", components[0].ItemCode)
}

func TestAssemblyGatewayListOpenAssemblies(t *testing.T) {
	m, mock := readySessionManager(t, &fakeCommandAPI{})
	g := NewAssemblyGateway(m)

	rows := sqlmock.NewRows([]string{"doc_no", "item_code", "description", "qty", "doc_date", "cancelled"}).
		AddRow("AS-00002", "FG-LEMON-1L", "March run", "50", time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), false).
		AddRow("AS-00001", "FG-LIME-1L", "", "20", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), false)
	mock.ExpectQuery("FROM stock_assembly").WillReturnRows(rows)

	docs, err := g.ListOpenAssemblies(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "AS-00002", docs[0].DocNo)
	assert.True(t, docs[0].Qty.Equal(decimal.NewFromInt(50)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdjustmentGatewayCreateAdjustment(t *testing.T) {
	var captured erp.NewAdjustment
	fake := &fakeCommandAPI{
		createAdj: func(in erp.NewAdjustment) (string, error) {
			captured = in
			return "ADJ-00007", nil
		},
	}
	m, _ := readySessionManager(t, fake)
	g := NewAdjustmentGateway(m)

	cost := decimal.NewFromFloat(2.5)
	docNo, err := g.CreateAdjustment(context.Background(), erp.NewAdjustment{
		DocDate:     time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Description: "Cycle count",
		Lines: []erp.AdjustmentLine{
			{ItemCode: "RM-SUGAR", Qty: decimal.NewFromInt(5), UnitCost: &cost},
			{ItemCode: "RM-LEMON", Qty: decimal.NewFromInt(-3)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "ADJ-00007", docNo)
	require.Len(t, captured.Lines, 2)
	assert.Equal(t, "Cycle count", captured.Description)
}

func TestSalesOrderGatewayCreateSalesOrder(t *testing.T) {
	fake := &fakeCommandAPI{
		createSalesOrd: func(in erp.NewSalesOrder) (*erp.SalesOrderDocument, error) {
			return &erp.SalesOrderDocument{DocNo: "SO-00099", FinalTotal: decimal.NewFromFloat(147.5)}, nil
		},
	}
	m, _ := readySessionManager(t, fake)
	g := NewSalesOrderGateway(m)

	doc, err := g.CreateSalesOrder(context.Background(), erp.NewSalesOrder{
		CustomerCode: "CUST-300",
		Lines: []erp.SalesOrderLine{
			{ItemCode: "FG-LEMON-1L", Qty: decimal.NewFromInt(10)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "SO-00099", doc.DocNo)
	assert.True(t, doc.FinalTotal.Equal(decimal.NewFromFloat(147.5)))
}

func TestMasterDataReaderCustomerExists(t *testing.T) {
	m, mock := readySessionManager(t, &fakeCommandAPI{})
	r := NewMasterDataReader(m)

	mock.ExpectQuery("FROM debtor").
		WithArgs("CUST-300").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	exists, err := r.CustomerExists(context.Background(), "CUST-300")
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery("FROM debtor").
		WithArgs("NOPE").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	exists, err = r.CustomerExists(context.Background(), "NOPE")
	require.NoError(t, err)
	assert.False(t, exists)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMasterDataReaderLoadItem(t *testing.T) {
	m, mock := readySessionManager(t, &fakeCommandAPI{})
	r := NewMasterDataReader(m)

	t.Run("known item", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"item_code", "description", "base_uom", "item_group", "has_bom"}).
			AddRow("FG-LEMON-1L", "Lemon cordial 1L", "BTL", "FG", true)
		mock.ExpectQuery("FROM item").WithArgs("FG-LEMON-1L").WillReturnRows(rows)

		item, err := r.LoadItem(context.Background(), "FG-LEMON-1L")
		require.NoError(t, err)
		assert.Equal(t, "Lemon cordial 1L", item.Description)
		assert.True(t, item.HasBom)
	})

	t.Run("unknown item", func(t *testing.T) {
		mock.ExpectQuery("FROM item").WithArgs("MISSING").
			WillReturnRows(sqlmock.NewRows([]string{"item_code", "description", "base_uom", "item_group", "has_bom"}))

		_, err := r.LoadItem(context.Background(), "MISSING")
		assert.ErrorIs(t, err, erp.ErrDocumentNotFound)
	})
}

func TestMasterDataReaderSearchItems(t *testing.T) {
	m, mock := readySessionManager(t, &fakeCommandAPI{})
	r := NewMasterDataReader(m)

	rows := sqlmock.NewRows([]string{"item_code", "description", "base_uom", "item_group", "has_bom"}).
		AddRow("FG-LEMON-1L", "Lemon cordial 1L", "BTL", "FG", true).
		AddRow("RM-LEMON", "Fresh lemons", "KG", "RM", false)
	mock.ExpectQuery("FROM item").WithArgs("%lemon%", "%lemon%").WillReturnRows(rows)

	items, err := r.SearchItems(context.Background(), "lemon")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "RM-LEMON", items[1].ItemCode)
}

func TestBomGatewayGetBom(t *testing.T) {
	m, mock := readySessionManager(t, &fakeCommandAPI{})
	g := NewBomGateway(m)

	rows := sqlmock.NewRows([]string{"component_code", "qty_per", "uom", "description", "seq"}).
		AddRow("RM-LEMON", "0.6", "KG", "Fresh lemons", 1).
		AddRow("RM-SUGAR", "0.2", "KG", "White sugar", 2)
	mock.ExpectQuery("FROM bom_detail").WithArgs("FG-LEMON-1L").WillReturnRows(rows)

	lines, err := g.GetBom(context.Background(), "FG-LEMON-1L")
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "RM-LEMON", lines[0].ComponentCode)
	assert.Equal(t, 1, lines[0].Sequence)
}

func TestBomGatewaySaveBom(t *testing.T) {
	var savedItem string
	var savedLines []erp.BomLine
	fake := &fakeCommandAPI{
		saveBom: func(itemCode string, lines []erp.BomLine) error {
			savedItem = itemCode
			savedLines = lines
			return nil
		},
	}
	m, _ := readySessionManager(t, fake)
	g := NewBomGateway(m)

	err := g.SaveBom(context.Background(), "FG-LEMON-1L", []erp.BomLine{
		{ComponentCode: "RM-LEMON", QtyPer: decimal.NewFromFloat(0.6), Uom: "KG", Sequence: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, "FG-LEMON-1L", savedItem)
	require.Len(t, savedLines, 1)
}
