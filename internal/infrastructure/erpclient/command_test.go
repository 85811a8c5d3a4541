package erpclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lemonco/backend/internal/domain/erp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvelope(w http.ResponseWriter, status int, success bool, errMsg string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": success,
		"error":   errMsg,
		"data":    data,
	})
}

func TestCommandClientLoginStoresToken(t *testing.T) {
	var sawAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/session/login":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "OPERATOR", body["user"])
			writeEnvelope(w, http.StatusOK, true, "", map[string]string{"token": "tok-123"})
		case "/api/session/license":
			sawAuth = r.Header.Get("Authorization")
			writeEnvelope(w, http.StatusOK, true, "", nil)
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	c := newCommandClient(server.URL, 5*time.Second)
	require.NoError(t, c.Login(context.Background(), "OPERATOR", "pw"))
	require.NoError(t, c.ActivateLicense(context.Background(), "LEMON"))
	assert.Equal(t, "Bearer tok-123", sawAuth)
}

func TestCommandClientLoginRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, false, "invalid credentials", nil)
	}))
	defer server.Close()

	c := newCommandClient(server.URL, 5*time.Second)
	err := c.Login(context.Background(), "OPERATOR", "wrong")
	require.Error(t, err)
	assert.ErrorIs(t, err, erp.ErrLoginRejected)
	assert.Contains(t, err.Error(), "invalid credentials")
}

func TestCommandClientViewAssembly(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/stock-assembly/AS-00042", r.URL.Path)
		writeEnvelope(w, http.StatusOK, true, "", map[string]any{
			"docNo":     "AS-00042",
			"itemCode":  "FG-LEMON-1L",
			"qty":       "50",
			"docDate":   "2026-03-14",
			"cancelled": false,
		})
	}))
	defer server.Close()

	c := newCommandClient(server.URL, 5*time.Second)
	doc, err := c.ViewAssembly(context.Background(), "AS-00042")
	require.NoError(t, err)
	assert.Equal(t, "AS-00042", doc.DocNo)
	assert.True(t, doc.Qty.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), doc.DocDate)
	assert.False(t, doc.Cancelled)
}

func TestCommandClientNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	c := newCommandClient(server.URL, 5*time.Second)
	_, err := c.ViewAssembly(context.Background(), "MISSING")
	assert.ErrorIs(t, err, erp.ErrDocumentNotFound)
}

func TestCommandClientCommandFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, false, "stock balance would go negative", nil)
	}))
	defer server.Close()

	c := newCommandClient(server.URL, 5*time.Second)
	_, err := c.SaveAssembly(context.Background(), "AS-00042")
	require.Error(t, err)
	assert.ErrorIs(t, err, erp.ErrCommandFailed)
	assert.Contains(t, err.Error(), "stock balance would go negative")
}

func TestCommandClientSaveAssemblyDecodesComponents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/stock-assembly/AS-00042/save", r.URL.Path)
		writeEnvelope(w, http.StatusOK, true, "", map[string]any{
			"components": []map[string]any{
				{"itemCode": "RM-LEMON", "description": "Fresh lemons", "qty": "30", "unitCost": "0.40"},
				{"itemCode": "RM-SUGAR", "description": "White sugar", "qty": "10", "unitCost": "1.25"},
			},
		})
	}))
	defer server.Close()

	c := newCommandClient(server.URL, 5*time.Second)
	components, err := c.SaveAssembly(context.Background(), "AS-00042")
	require.NoError(t, err)
	require.Len(t, components, 2)
	assert.Equal(t, "RM-LEMON", components[0].ItemCode)
	assert.True(t, components[0].UnitCost.Equal(decimal.NewFromFloat(0.4)))
}

func TestCommandClientInvalidResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>gateway timeout</html>"))
	}))
	defer server.Close()

	c := newCommandClient(server.URL, 5*time.Second)
	_, err := c.ViewAssembly(context.Background(), "AS-00001")
	assert.ErrorIs(t, err, erp.ErrInvalidResponse)
}

func TestCommandClientCreateAdjustmentOmitsNilUnitCost(t *testing.T) {
	var payload struct {
		Lines []map[string]any `json:"lines"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		writeEnvelope(w, http.StatusOK, true, "", map[string]string{"docNo": "ADJ-00007"})
	}))
	defer server.Close()

	cost := decimal.NewFromFloat(2.5)
	c := newCommandClient(server.URL, 5*time.Second)
	docNo, err := c.CreateAdjustment(context.Background(), erp.NewAdjustment{
		DocDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Lines: []erp.AdjustmentLine{
			{ItemCode: "RM-SUGAR", Qty: decimal.NewFromInt(5), UnitCost: &cost},
			{ItemCode: "RM-LEMON", Qty: decimal.NewFromInt(-3)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "ADJ-00007", docNo)

	require.Len(t, payload.Lines, 2)
	_, hasCost := payload.Lines[0]["unitCost"]
	assert.True(t, hasCost)
	_, hasCost = payload.Lines[1]["unitCost"]
	assert.False(t, hasCost)
}
