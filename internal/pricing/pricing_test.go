package pricing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-scripts/recipecrawl/internal/extract"
)

func testRecord() extract.Record {
	return extract.Record{
		RecipeID:      12345,
		Name:          "Test Recipe",
		Category:      "Cooking",
		RequiredSkill: 285,
		Materials: []extract.MaterialEntry{
			{ItemID: 123, Quantity: 2},
			{ItemID: 456, Quantity: 1},
		},
		OutputItemID:   789,
		OutputQuantity: 1,
	}
}

func testSnapshot() Snapshot {
	return Snapshot{
		123: {Name: "Material 1", Price: 100},
		456: {Name: "Material 2", Price: 50},
	}
}

func TestCraftCost(t *testing.T) {
	cost := CraftCost(testRecord(), testSnapshot())

	assert.Equal(t, int64(2*100+1*50), cost.Total)
	require.Len(t, cost.Materials, 2)
	assert.Equal(t, "Material 1", cost.Materials[0].Name)
	assert.Equal(t, int64(200), cost.Materials[0].Total)
	assert.False(t, cost.Materials[0].Vendor)
}

func TestCraftCostVendorFallback(t *testing.T) {
	rec := testRecord()
	rec.Materials = []extract.MaterialEntry{
		{ItemID: 123, Quantity: 2},
		{ItemID: 2678, Quantity: 1}, // not in snapshot, vendor-sold
	}
	snap := Snapshot{123: {Name: "Material 1", Price: 100}}

	cost := CraftCost(rec, snap)
	assert.Equal(t, int64(2*100+1*2), cost.Total)
	require.Len(t, cost.Materials, 2)
	assert.True(t, cost.Materials[1].Vendor)
	assert.Equal(t, "Unknown", cost.Materials[1].Name)
}

func TestProfit(t *testing.T) {
	rep := Profit(testRecord(), testSnapshot(), 500)

	assert.Equal(t, int64(250), rep.Cost)
	assert.Equal(t, int64(500), rep.ResultValue)
	assert.Equal(t, int64(250), rep.Profit)
	assert.InDelta(t, 100.0, rep.Margin, 0.001)
	assert.InDelta(t, 100.0, rep.ROI, 0.001)
}

func TestProfitScalesWithOutputQuantity(t *testing.T) {
	rec := testRecord()
	rec.OutputQuantity = 4

	rep := Profit(rec, testSnapshot(), 100)
	assert.Equal(t, int64(400), rep.ResultValue)
	assert.Equal(t, int64(150), rep.Profit)
}

func TestFormatCoins(t *testing.T) {
	tests := []struct {
		copper int64
		want   string
	}{
		{12345, "1g 23s 45c"},
		{1234, "12s 34c"},
		{99, "99c"},
		{0, "0c"},
		{-12345, "-1g 23s 45c"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatCoins(tt.copper))
	}
}

func TestParseCoins(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"1g 23s 45c", 12345},
		{"12s 34c", 1234},
		{"99c", 99},
		{"5g", 50000},
		{"", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseCoins(tt.in))
	}
}

func TestCoinsRoundTrip(t *testing.T) {
	for _, copper := range []int64{0, 99, 1234, 12345, 987654} {
		assert.Equal(t, copper, ParseCoins(FormatCoins(copper)))
	}
}

func TestAuctionFees(t *testing.T) {
	fees := AuctionFees(1000, 50)
	assert.Equal(t, int64(50), fees.Cut)
	assert.Equal(t, int64(50), fees.Listing)
	assert.Equal(t, int64(100), fees.Total)
	assert.Equal(t, int64(900), fees.Net)
}

func TestLoadSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "materials.json")
	content := `{"123": {"name": "Test Material", "price": 100}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	snap, err := LoadSnapshot(path)
	require.NoError(t, err)
	require.Len(t, snap, 1)
	assert.Equal(t, Material{Name: "Test Material", Price: 100}, snap[123])
}

func TestLoadSnapshotRejectsBadKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "materials.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"abc": {"name": "x", "price": 1}}`), 0o644))

	_, err := LoadSnapshot(path)
	assert.Error(t, err)
}
