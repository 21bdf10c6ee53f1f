// Package pricing computes crafting costs and profits over a scraped
// record set. All calculations take an explicit read-only Snapshot so
// the arithmetic stays independent of how prices were obtained.
package pricing

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/go-scripts/recipecrawl/internal/extract"
)

// Material is one priced item in a snapshot. Prices are in copper.
type Material struct {
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// Snapshot maps item identity to its current price. Callers pass it
// into each calculation; there is no ambient price table.
type Snapshot map[int64]Material

// LoadSnapshot reads a materials file keyed by decimal item ids.
func LoadSnapshot(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read materials: %w", err)
	}
	var raw map[string]Material
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode materials: %w", err)
	}
	snap := make(Snapshot, len(raw))
	for key, mat := range raw {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid item id %q in materials", key)
		}
		snap[id] = mat
	}
	return snap, nil
}

// vendorPrices covers common vendor-sold reagents a price snapshot
// rarely bothers to list.
var vendorPrices = map[int64]int64{
	159:   25,   // Refreshing Spring Water
	1179:  125,  // Ice Cold Milk
	2596:  150,  // Skin of Dwarven Stout
	2665:  10,   // Stormwind Seasoning Herbs
	2678:  2,    // Mild Spices
	2692:  2,    // Hot Spices
	3713:  16,   // Soothing Spices
	4470:  38,   // Simple Wood
	4471:  180,  // Flint and Tinder
	6217:  124,  // Copper Rod
	18256: 1600, // Imbued Vial
	30817: 25,   // Simple Flour
}

// MaterialCost is the per-reagent line of a cost breakdown.
type MaterialCost struct {
	ItemID    int64  `json:"itemIdentity"`
	Name      string `json:"name"`
	Quantity  int64  `json:"quantity"`
	UnitPrice int64  `json:"unitPrice"`
	Total     int64  `json:"totalCost"`
	Vendor    bool   `json:"vendorPrice,omitempty"`
}

// Cost is the full crafting cost of one record.
type Cost struct {
	Total     int64          `json:"totalCost"`
	Materials []MaterialCost `json:"materialCosts"`
}

// CraftCost sums the record's materials against the snapshot, falling
// back to vendor prices for items the snapshot does not carry.
func CraftCost(rec extract.Record, snap Snapshot) Cost {
	cost := Cost{Materials: make([]MaterialCost, 0, len(rec.Materials))}
	for _, entry := range rec.Materials {
		line := MaterialCost{
			ItemID:   entry.ItemID,
			Name:     "Unknown",
			Quantity: entry.Quantity,
		}
		if mat, ok := snap[entry.ItemID]; ok {
			line.Name = mat.Name
			line.UnitPrice = mat.Price
		} else {
			line.UnitPrice = vendorPrices[entry.ItemID]
			line.Vendor = true
		}
		line.Total = line.UnitPrice * entry.Quantity
		cost.Total += line.Total
		cost.Materials = append(cost.Materials, line)
	}
	return cost
}

// ProfitReport relates a record's crafting cost to the sale value of
// its output.
type ProfitReport struct {
	Cost        int64          `json:"cost"`
	ResultValue int64          `json:"resultValue"`
	Profit      int64          `json:"profit"`
	Margin      float64        `json:"profitMargin"`
	ROI         float64        `json:"roi"`
	Materials   []MaterialCost `json:"materialCosts"`
}

// Profit values the output at resultPrice per unit and nets it against
// the crafting cost.
func Profit(rec extract.Record, snap Snapshot, resultPrice int64) ProfitReport {
	cost := CraftCost(rec, snap)
	value := resultPrice * rec.OutputQuantity
	rep := ProfitReport{
		Cost:        cost.Total,
		ResultValue: value,
		Profit:      value - cost.Total,
		Materials:   cost.Materials,
	}
	if cost.Total > 0 {
		rep.Margin = float64(rep.Profit) / float64(cost.Total) * 100
		rep.ROI = rep.Margin
	}
	return rep
}

// ResultPrice returns the snapshot's unit price for the record's
// output item, or zero when the output is unpriced. It is the default
// sale-price source for profit queries that take no explicit price.
func ResultPrice(rec extract.Record, snap Snapshot) int64 {
	if mat, found := snap[rec.OutputItemID]; found {
		return mat.Price
	}
	return 0
}

// Fees models the auction house's take on a sale.
type Fees struct {
	Cut     int64 `json:"ahCut"`
	Listing int64 `json:"listingFee"`
	Total   int64 `json:"totalFees"`
	Net     int64 `json:"netProfit"`
}

// AuctionFees applies the house's 5% cut plus the listing deposit.
func AuctionFees(sellPrice, deposit int64) Fees {
	cut := sellPrice * 5 / 100
	return Fees{
		Cut:     cut,
		Listing: deposit,
		Total:   cut + deposit,
		Net:     sellPrice - cut - deposit,
	}
}
