package erpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/lemonco/backend/internal/domain/erp"
	"github.com/shopspring/decimal"
)

// maxResponseSize is the maximum allowed response size from the ERP command
// API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// commandClient speaks the ERP application server's JSON command API over
// HTTP. It is not safe for concurrent use; the owning Session serializes
// access.
type commandClient struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// newCommandClient creates a command client for the given base URL
func newCommandClient(baseURL string, timeout time.Duration) *commandClient {
	return &commandClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// commandEnvelope is the response wrapper every command endpoint returns.
type commandEnvelope struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// do issues one command and decodes the data payload into out (when non-nil).
// A 404 maps to erp.ErrDocumentNotFound; any other non-success outcome maps
// to erp.ErrCommandFailed with the server's message preserved.
func (c *commandClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%w: encode request: %v", erp.ErrCommandFailed, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%w: %v", erp.ErrCommandFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", erp.ErrCommandFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return erp.ErrDocumentNotFound
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("%w: read response: %v", erp.ErrInvalidResponse, err)
	}

	var envelope commandEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("%w: %v", erp.ErrInvalidResponse, err)
	}

	if resp.StatusCode != http.StatusOK || !envelope.Success {
		msg := envelope.Error
		if msg == "" {
			msg = fmt.Sprintf("HTTP %d", resp.StatusCode)
		}
		return fmt.Errorf("%w: %s", erp.ErrCommandFailed, msg)
	}

	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("%w: decode data: %v", erp.ErrInvalidResponse, err)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Session commands
// ---------------------------------------------------------------------------

// Login authenticates the operational user and stores the session token
func (c *commandClient) Login(ctx context.Context, user, password string) error {
	var data struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, http.MethodPost, "/api/session/login", map[string]string{
		"user":     user,
		"password": password,
	}, &data)
	if err != nil {
		return fmt.Errorf("%w: %v", erp.ErrLoginRejected, err)
	}
	c.token = data.Token
	return nil
}

// ActivateLicense loads the standard extensions for the company. Callers
// treat failure as a degraded (read-only) session, not a fatal one.
func (c *commandClient) ActivateLicense(ctx context.Context, companyCode string) error {
	err := c.do(ctx, http.MethodPost, "/api/session/license", map[string]string{
		"companyCode": companyCode,
	}, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", erp.ErrLicenseUnavailable, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Document commands
// ---------------------------------------------------------------------------

type assemblyPayload struct {
	DocNo       string          `json:"docNo"`
	ItemCode    string          `json:"itemCode"`
	Description string          `json:"description"`
	Qty         decimal.Decimal `json:"qty"`
	DocDate     string          `json:"docDate"`
	Cancelled   bool            `json:"cancelled"`
}

func (p assemblyPayload) toDocument() (*erp.AssemblyDocument, error) {
	docDate, err := time.Parse("2006-01-02", p.DocDate)
	if err != nil {
		return nil, fmt.Errorf("%w: bad docDate %q", erp.ErrInvalidResponse, p.DocDate)
	}
	return &erp.AssemblyDocument{
		DocNo:       p.DocNo,
		ItemCode:    p.ItemCode,
		Description: p.Description,
		Qty:         p.Qty,
		DocDate:     docDate,
		Cancelled:   p.Cancelled,
	}, nil
}

// CreateAssembly opens a new assembly document and returns it with the
// externally assigned document number
func (c *commandClient) CreateAssembly(ctx context.Context, in erp.NewAssembly) (*erp.AssemblyDocument, error) {
	var data assemblyPayload
	err := c.do(ctx, http.MethodPost, "/api/stock-assembly", map[string]any{
		"itemCode":    in.ItemCode,
		"qty":         in.Qty,
		"docDate":     in.DocDate.Format("2006-01-02"),
		"description": in.Description,
	}, &data)
	if err != nil {
		return nil, err
	}
	return data.toDocument()
}

// ViewAssembly loads an assembly document
func (c *commandClient) ViewAssembly(ctx context.Context, docNo string) (*erp.AssemblyDocument, error) {
	var data assemblyPayload
	err := c.do(ctx, http.MethodGet, "/api/stock-assembly/"+url.PathEscape(docNo), nil, &data)
	if err != nil {
		return nil, err
	}
	return data.toDocument()
}

type consumedPayload struct {
	ItemCode    string          `json:"itemCode"`
	Description string          `json:"description"`
	Qty         decimal.Decimal `json:"qty"`
	UnitCost    decimal.Decimal `json:"unitCost"`
}

// SaveAssembly commits the assembly: the ERP engine consumes the component
// materials and produces the finished item in one save, returning the
// consumed components for costing
func (c *commandClient) SaveAssembly(ctx context.Context, docNo string) ([]erp.ConsumedComponent, error) {
	var data struct {
		Components []consumedPayload `json:"components"`
	}
	err := c.do(ctx, http.MethodPost, "/api/stock-assembly/"+url.PathEscape(docNo)+"/save", nil, &data)
	if err != nil {
		return nil, err
	}
	components := make([]erp.ConsumedComponent, 0, len(data.Components))
	for _, p := range data.Components {
		components = append(components, erp.ConsumedComponent{
			ItemCode:    p.ItemCode,
			Description: p.Description,
			Qty:         p.Qty,
			UnitCost:    p.UnitCost,
		})
	}
	return components, nil
}

// DeleteAssembly voids the assembly document
func (c *commandClient) DeleteAssembly(ctx context.Context, docNo string) error {
	return c.do(ctx, http.MethodDelete, "/api/stock-assembly/"+url.PathEscape(docNo), nil, nil)
}

// CreateAdjustment commits a stock adjustment and returns the assigned
// document number
func (c *commandClient) CreateAdjustment(ctx context.Context, in erp.NewAdjustment) (string, error) {
	lines := make([]map[string]any, 0, len(in.Lines))
	for _, l := range in.Lines {
		line := map[string]any{
			"itemCode": l.ItemCode,
			"qty":      l.Qty,
		}
		if l.UnitCost != nil {
			line["unitCost"] = *l.UnitCost
		}
		lines = append(lines, line)
	}

	var data struct {
		DocNo string `json:"docNo"`
	}
	err := c.do(ctx, http.MethodPost, "/api/stock-adjustment", map[string]any{
		"docDate":     in.DocDate.Format("2006-01-02"),
		"description": in.Description,
		"refDocNo":    in.RefDocNo,
		"lines":       lines,
	}, &data)
	if err != nil {
		return "", err
	}
	return data.DocNo, nil
}

// CreateSalesOrder creates a sales order and returns the assigned document
// number and final total
func (c *commandClient) CreateSalesOrder(ctx context.Context, in erp.NewSalesOrder) (*erp.SalesOrderDocument, error) {
	lines := make([]map[string]any, 0, len(in.Lines))
	for _, l := range in.Lines {
		line := map[string]any{
			"itemCode": l.ItemCode,
			"qty":      l.Qty,
		}
		if l.UnitPrice != nil {
			line["unitPrice"] = *l.UnitPrice
		}
		if l.DiscountPercent != nil {
			line["discountPercent"] = *l.DiscountPercent
		}
		if l.Remarks != "" {
			line["remarks"] = l.Remarks
		}
		lines = append(lines, line)
	}

	payload := map[string]any{
		"customerCode": in.CustomerCode,
		"lines":        lines,
		"remarks":      in.Remarks,
		"externalRef":  in.ExternalRef,
	}
	if in.DeliveryDate != nil {
		payload["deliveryDate"] = in.DeliveryDate.Format("2006-01-02")
	}

	var data struct {
		DocNo      string          `json:"docNo"`
		FinalTotal decimal.Decimal `json:"finalTotal"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/sales-order", payload, &data); err != nil {
		return nil, err
	}
	return &erp.SalesOrderDocument{
		DocNo:      data.DocNo,
		FinalTotal: data.FinalTotal,
	}, nil
}

// SaveBom replaces the bill of materials for an item
func (c *commandClient) SaveBom(ctx context.Context, itemCode string, lines []erp.BomLine) error {
	payload := make([]map[string]any, 0, len(lines))
	for _, l := range lines {
		payload = append(payload, map[string]any{
			"componentCode": l.ComponentCode,
			"qtyPer":        l.QtyPer,
			"uom":           l.Uom,
			"description":   l.Description,
			"sequence":      l.Sequence,
		})
	}
	return c.do(ctx, http.MethodPut, "/api/items/"+url.PathEscape(itemCode)+"/bom", map[string]any{
		"lines": payload,
	}, nil)
}

// Ensure commandClient implements commandAPI
var _ commandAPI = (*commandClient)(nil)
