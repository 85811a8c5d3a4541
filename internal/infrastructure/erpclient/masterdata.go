package erpclient

import (
	"context"
	"strings"

	"github.com/lemonco/backend/internal/domain/erp"
	"github.com/shopspring/decimal"
)

// MasterDataReader answers existence and lookup questions against the
// external debtor and item masters through the read channel.
type MasterDataReader struct {
	sessions *SessionManager
}

// NewMasterDataReader creates a master data reader backed by the session manager
func NewMasterDataReader(sessions *SessionManager) *MasterDataReader {
	return &MasterDataReader{sessions: sessions}
}

// CustomerExists reports whether the debtor master holds the code
func (r *MasterDataReader) CustomerExists(ctx context.Context, code string) (bool, error) {
	sess, err := r.sessions.Session(ctx)
	if err != nil {
		return false, err
	}
	var count int64
	err = sess.ReadDB().WithContext(ctx).
		Raw(`SELECT COUNT(*) FROM debtor WHERE debtor_code = ?`, code).
		Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ItemExists reports whether the item master holds the code
func (r *MasterDataReader) ItemExists(ctx context.Context, code string) (bool, error) {
	sess, err := r.sessions.Session(ctx)
	if err != nil {
		return false, err
	}
	var count int64
	err = sess.ReadDB().WithContext(ctx).
		Raw(`SELECT COUNT(*) FROM item WHERE item_code = ?`, code).
		Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// itemRow mirrors the external item master table.
type itemRow struct {
	ItemCode    string `gorm:"column:item_code"`
	Description string `gorm:"column:description"`
	BaseUom     string `gorm:"column:base_uom"`
	ItemGroup   string `gorm:"column:item_group"`
	HasBom      bool   `gorm:"column:has_bom"`
}

func (r itemRow) toItem() erp.Item {
	return erp.Item{
		ItemCode:    r.ItemCode,
		Description: r.Description,
		BaseUom:     r.BaseUom,
		ItemGroup:   r.ItemGroup,
		HasBom:      r.HasBom,
	}
}

const itemSelect = `SELECT i.item_code, i.description, i.base_uom, i.item_group,
       EXISTS (SELECT 1 FROM bom_detail b WHERE b.item_code = i.item_code) AS has_bom
FROM item i`

// LoadItem loads one item master row
func (r *MasterDataReader) LoadItem(ctx context.Context, code string) (*erp.Item, error) {
	sess, err := r.sessions.Session(ctx)
	if err != nil {
		return nil, err
	}
	var rows []itemRow
	err = sess.ReadDB().WithContext(ctx).
		Raw(itemSelect+` WHERE i.item_code = ?`, code).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, erp.ErrDocumentNotFound
	}
	item := rows[0].toItem()
	return &item, nil
}

// SearchItems lists item master rows whose code or description contains the
// query, case-insensitively. An empty query lists every item.
func (r *MasterDataReader) SearchItems(ctx context.Context, query string) ([]erp.Item, error) {
	sess, err := r.sessions.Session(ctx)
	if err != nil {
		return nil, err
	}

	db := sess.ReadDB().WithContext(ctx)
	var rows []itemRow
	query = strings.TrimSpace(query)
	if query == "" {
		err = db.Raw(itemSelect + ` ORDER BY i.item_code`).Scan(&rows).Error
	} else {
		pattern := "%" + query + "%"
		err = db.Raw(itemSelect+` WHERE i.item_code ILIKE ? OR i.description ILIKE ? ORDER BY i.item_code`,
			pattern, pattern).Scan(&rows).Error
	}
	if err != nil {
		return nil, err
	}

	items := make([]erp.Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toItem())
	}
	return items, nil
}

var _ erp.MasterData = (*MasterDataReader)(nil)

// BomGateway reads bills of materials through the read channel and writes
// them through the command channel.
type BomGateway struct {
	sessions *SessionManager
}

// NewBomGateway creates a BOM gateway backed by the session manager
func NewBomGateway(sessions *SessionManager) *BomGateway {
	return &BomGateway{sessions: sessions}
}

// bomRow mirrors the external bom_detail table.
type bomRow struct {
	ComponentCode string          `gorm:"column:component_code"`
	QtyPer        decimal.Decimal `gorm:"column:qty_per"`
	Uom           string          `gorm:"column:uom"`
	Description   string          `gorm:"column:description"`
	Seq           int             `gorm:"column:seq"`
}

// GetBom returns the BOM lines for an item, ordered by sequence
func (g *BomGateway) GetBom(ctx context.Context, itemCode string) ([]erp.BomLine, error) {
	sess, err := g.sessions.Session(ctx)
	if err != nil {
		return nil, err
	}
	var rows []bomRow
	err = sess.ReadDB().WithContext(ctx).
		Raw(`SELECT component_code, qty_per, uom, description, seq
		     FROM bom_detail
		     WHERE item_code = ?
		     ORDER BY seq`, itemCode).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	lines := make([]erp.BomLine, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, erp.BomLine{
			ComponentCode: row.ComponentCode,
			QtyPer:        row.QtyPer,
			Uom:           row.Uom,
			Description:   row.Description,
			Sequence:      row.Seq,
		})
	}
	return lines, nil
}

// SaveBom replaces the BOM for an item
func (g *BomGateway) SaveBom(ctx context.Context, itemCode string, lines []erp.BomLine) error {
	sess, err := g.sessions.Session(ctx)
	if err != nil {
		return err
	}
	return sess.withWriteCommand(func(api commandAPI) error {
		return api.SaveBom(ctx, itemCode, lines)
	})
}

var _ erp.BomGateway = (*BomGateway)(nil)
