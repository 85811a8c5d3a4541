package stock

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBomCSV(t *testing.T) {
	t.Run("parses rows after header with sequential ordering", func(t *testing.T) {
		csv := "ComponentCode,QtyPer,Uom,Description\nRM-1,2,PCS,Bracket\nRM-2,0.5,KG\n"

		lines, err := ParseBomCSV(csv)

		require.NoError(t, err)
		require.Len(t, lines, 2)
		assert.Equal(t, "RM-1", lines[0].ComponentCode)
		assert.True(t, lines[0].QtyPer.Equal(decimal.NewFromInt(2)))
		assert.Equal(t, "PCS", lines[0].Uom)
		assert.Equal(t, "Bracket", lines[0].Description)
		assert.Equal(t, 1, lines[0].Sequence)
		assert.Equal(t, "RM-2", lines[1].ComponentCode)
		assert.Empty(t, lines[1].Description)
		assert.Equal(t, 2, lines[1].Sequence)
	})

	t.Run("handles CRLF content and blank rows", func(t *testing.T) {
		csv := "ComponentCode,QtyPer,Uom\r\nRM-1,1,PCS\r\n\r\n"

		lines, err := ParseBomCSV(csv)

		require.NoError(t, err)
		assert.Len(t, lines, 1)
	})

	t.Run("rejects non-numeric quantity", func(t *testing.T) {
		_, err := ParseBomCSV("ComponentCode,QtyPer,Uom\nRM-1,abc,PCS\n")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "quantity-per")
	})

	t.Run("rejects content with no data rows", func(t *testing.T) {
		_, err := ParseBomCSV("ComponentCode,QtyPer,Uom\n")
		require.Error(t, err)
	})
}

func TestSortBomLines(t *testing.T) {
	lines := []BomLine{
		{ComponentCode: "C", Sequence: 3},
		{ComponentCode: "A", Sequence: 1},
		{ComponentCode: "B", Sequence: 2},
	}

	SortBomLines(lines)

	assert.Equal(t, "A", lines[0].ComponentCode)
	assert.Equal(t, "B", lines[1].ComponentCode)
	assert.Equal(t, "C", lines[2].ComponentCode)
}
