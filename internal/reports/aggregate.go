package reports

import (
	"github.com/shopspring/decimal"

	"github.com/laundryconnect/laundryconnect/internal/laundry"
)

// Aggregate filters records to rng (inclusive on both ends) and buckets them by the chosen key.
// Groups keep the order in which their key was first seen.
func Aggregate(records []TransactionRecord, rng laundry.DateRange, by GroupBy) []AggregatedGroup {
	groups := make([]AggregatedGroup, 0)
	index := make(map[string]int)
	for _, rec := range records {
		if !rng.Contains(rec.Date) {
			continue
		}
		key := groupKey(rec, by)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, AggregatedGroup{Key: key, TotalAmount: decimal.Zero})
		}
		groups[i].Count++
		groups[i].TotalAmount = groups[i].TotalAmount.Add(rec.Amount)
	}
	return groups
}

func groupKey(rec TransactionRecord, by GroupBy) string {
	switch by {
	case GroupByEntity:
		return rec.EntityKey
	case GroupByService:
		return rec.Service
	case GroupByStatus:
		return rec.Status.Label()
	default:
		return laundry.FormatDay(rec.Date)
	}
}
