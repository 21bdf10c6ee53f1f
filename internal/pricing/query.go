package pricing

import (
	"sort"
	"strings"

	"github.com/go-scripts/recipecrawl/internal/extract"
)

// Filter narrows a record set. Zero values mean "no constraint".
type Filter struct {
	Category  string
	MinSkill  *int
	MaxSkill  *int
	Search    string
	MinProfit *int64
}

// FilterRecords returns the records matching every set constraint, in
// their original order. Profit constraints value the output at the
// snapshot price of the output item; an unpriced output counts as a
// zero sale, so those records only pass with a negative bound.
func FilterRecords(records []extract.Record, f Filter, snap Snapshot) []extract.Record {
	out := make([]extract.Record, 0, len(records))
	for _, rec := range records {
		if f.Category != "" && !strings.EqualFold(rec.Category, f.Category) {
			continue
		}
		if f.MinSkill != nil && rec.RequiredSkill < *f.MinSkill {
			continue
		}
		if f.MaxSkill != nil && rec.RequiredSkill > *f.MaxSkill {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(rec.Name), strings.ToLower(f.Search)) {
			continue
		}
		if f.MinProfit != nil && Profit(rec, snap, ResultPrice(rec, snap)).Profit < *f.MinProfit {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// SortRecords orders a copy of records by the named key: "name",
// "skill", "category" or "profit". Unknown keys leave the order as-is.
func SortRecords(records []extract.Record, by, order string, snap Snapshot) []extract.Record {
	out := append([]extract.Record(nil), records...)
	desc := strings.EqualFold(order, "desc")

	var less func(a, b extract.Record) bool
	switch by {
	case "name":
		less = func(a, b extract.Record) bool { return a.Name < b.Name }
	case "skill":
		less = func(a, b extract.Record) bool { return a.RequiredSkill < b.RequiredSkill }
	case "category":
		less = func(a, b extract.Record) bool { return a.Category < b.Category }
	case "profit":
		less = func(a, b extract.Record) bool {
			return Profit(a, snap, ResultPrice(a, snap)).Profit <
				Profit(b, snap, ResultPrice(b, snap)).Profit
		}
	default:
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}
