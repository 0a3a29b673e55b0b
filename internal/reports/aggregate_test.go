package reports

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laundryconnect/laundryconnect/internal/laundry"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func record(id, date, entity, service string, amount string) TransactionRecord {
	return TransactionRecord{
		ID:        id,
		Date:      day(date).Add(15 * time.Hour),
		EntityKey: entity,
		Service:   service,
		Status:    laundry.StatusDelivered,
		Amount:    decimal.RequireFromString(amount),
	}
}

func TestAggregateByDate(t *testing.T) {
	records := []TransactionRecord{
		record("1", "2023-03-14", "FreshFold", "Wash & Fold", "10.00"),
		record("2", "2023-03-15", "FreshFold", "Wash & Fold", "20.00"),
		record("3", "2023-03-16", "SparkleWash", "Ironing", "30.00"),
	}
	groups := Aggregate(records, laundry.NewDateRange(day("2023-03-14"), day("2023-03-16")), GroupByDate)

	require.Len(t, groups, 3)
	assert.Equal(t, []string{"2023-03-14", "2023-03-15", "2023-03-16"}, []string{groups[0].Key, groups[1].Key, groups[2].Key})
	total := decimal.Zero
	for _, g := range groups {
		assert.Equal(t, 1, g.Count)
		total = total.Add(g.TotalAmount)
	}
	assert.True(t, total.Equal(decimal.RequireFromString("60.00")))
}

func TestAggregateRangeIsInclusiveOnBothEnds(t *testing.T) {
	records := []TransactionRecord{
		record("before", "2022-12-31", "A", "S", "1"),
		record("start", "2023-01-01", "A", "S", "2"),
		record("end", "2023-01-03", "A", "S", "4"),
		record("after", "2023-01-04", "A", "S", "8"),
	}
	groups := Aggregate(records, laundry.NewDateRange(day("2023-01-01"), day("2023-01-03")), GroupByEntity)
	require.Len(t, groups, 1)
	assert.Equal(t, 2, groups[0].Count)
	assert.True(t, groups[0].TotalAmount.Equal(decimal.NewFromInt(6)))

	single := Aggregate(records[1:2], laundry.NewDateRange(day("2023-01-01"), day("2023-01-01")), GroupByDate)
	require.Len(t, single, 1)
	assert.Equal(t, "2023-01-01", single[0].Key)
}

func TestAggregateIsCompleteAndKeepsFirstSeenOrder(t *testing.T) {
	records := []TransactionRecord{
		record("1", "2023-03-02", "SparkleWash", "Ironing", "5.25"),
		record("2", "2023-03-01", "FreshFold", "Dry Cleaning", "12.00"),
		record("3", "2023-03-03", "SparkleWash", "Wash & Fold", "7.75"),
		record("4", "2023-03-04", "QuickClean", "Ironing", "3.00"),
	}
	rng := laundry.NewDateRange(day("2023-03-01"), day("2023-03-31"))

	for _, by := range []GroupBy{GroupByDate, GroupByEntity, GroupByService, GroupByStatus} {
		t.Run(by.String(), func(t *testing.T) {
			groups := Aggregate(records, rng, by)
			count := 0
			sum := decimal.Zero
			seen := map[string]bool{}
			for _, g := range groups {
				assert.False(t, seen[g.Key], "duplicate key %q", g.Key)
				seen[g.Key] = true
				count += g.Count
				sum = sum.Add(g.TotalAmount)
			}
			assert.Equal(t, len(records), count)
			assert.True(t, sum.Equal(decimal.RequireFromString("28.00")), sum.String())
		})
	}

	byEntity := Aggregate(records, rng, GroupByEntity)
	assert.Equal(t, []string{"SparkleWash", "FreshFold", "QuickClean"}, keys(byEntity))
	byService := Aggregate(records, rng, GroupByService)
	assert.Equal(t, []string{"Ironing", "Dry Cleaning", "Wash & Fold"}, keys(byService))
	byStatus := Aggregate(records, rng, GroupByStatus)
	assert.Equal(t, []string{"Delivered"}, keys(byStatus))
}

func TestAggregateEmpty(t *testing.T) {
	rng := laundry.NewDateRange(day("2023-03-01"), day("2023-03-31"))
	groups := Aggregate(nil, rng, GroupByDate)
	require.NotNil(t, groups)
	assert.Empty(t, groups)

	outside := []TransactionRecord{record("1", "2023-04-01", "A", "S", "1")}
	groups = Aggregate(outside, rng, GroupByDate)
	require.NotNil(t, groups)
	assert.Empty(t, groups)
}

func TestAggregateDoesNotMutateInput(t *testing.T) {
	records := []TransactionRecord{record("1", "2023-03-01", "A", "S", "1.10"), record("2", "2023-03-01", "A", "S", "2.20")}
	before := append([]TransactionRecord(nil), records...)
	Aggregate(records, laundry.NewDateRange(day("2023-03-01"), day("2023-03-01")), GroupByEntity)
	assert.Equal(t, before, records)
}

func keys(groups []AggregatedGroup) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.Key
	}
	return out
}
