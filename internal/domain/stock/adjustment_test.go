package stock

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func costOf(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestParseDocDate(t *testing.T) {
	t.Run("parses ISO-8601 date", func(t *testing.T) {
		d, err := ParseDocDate("2025-01-31")
		require.NoError(t, err)
		assert.Equal(t, 31, d.Day())
	})

	t.Run("rejects invalid date", func(t *testing.T) {
		_, err := ParseDocDate("31/01/2025")
		require.Error(t, err)
	})
}

func TestNormalizeLines(t *testing.T) {
	t.Run("accepts decrease without cost and increase with cost", func(t *testing.T) {
		lines, err := NormalizeLines([]AdjustmentLine{
			{ItemCode: "RM-1", Quantity: decimal.NewFromInt(-5)},
			{ItemCode: "RM-2", Quantity: decimal.NewFromInt(10), UnitCost: costOf("2.50")},
		})

		require.NoError(t, err)
		require.Len(t, lines, 2)
		assert.Equal(t, "RM-1", lines[0].ItemCode)
		assert.Equal(t, "RM-2", lines[1].ItemCode)
	})

	t.Run("drops zero-quantity lines silently", func(t *testing.T) {
		lines, err := NormalizeLines([]AdjustmentLine{
			{ItemCode: "RM-1", Quantity: decimal.Zero},
			{ItemCode: "RM-2", Quantity: decimal.NewFromInt(-3)},
		})

		require.NoError(t, err)
		require.Len(t, lines, 1)
		assert.Equal(t, "RM-2", lines[0].ItemCode)
	})

	t.Run("rejects document that is empty after filtering", func(t *testing.T) {
		_, err := NormalizeLines([]AdjustmentLine{
			{ItemCode: "RM-1", Quantity: decimal.Zero},
			{ItemCode: "RM-2", Quantity: decimal.Zero},
		})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "At least one line")
	})

	t.Run("rejects empty input", func(t *testing.T) {
		_, err := NormalizeLines(nil)
		require.Error(t, err)
	})

	t.Run("rejects positive quantity without unit cost, naming the item", func(t *testing.T) {
		_, err := NormalizeLines([]AdjustmentLine{
			{ItemCode: "RM-2", Quantity: decimal.NewFromInt(10)},
		})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "RM-2")
		assert.Contains(t, err.Error(), "UnitCost is required")
	})

	t.Run("rejects empty item code even on zero-quantity lines", func(t *testing.T) {
		_, err := NormalizeLines([]AdjustmentLine{
			{ItemCode: "", Quantity: decimal.Zero},
		})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "ItemCode is required")
	})
}
