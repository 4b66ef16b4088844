package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRecomputeAverageAndCoverage(t *testing.T) {
	d := Recompute(RecomputeInput{
		TotalSold:      90,
		CurrentStock:   50,
		IncomingStock:  10,
		MonthsHistory:  3,
		ForecastMonths: 3,
	})
	require.InDelta(t, 30.0, d.MonthlyAverage, 1e-9)
	require.InDelta(t, 60.0, d.TotalAvailableStock, 1e-9)
	require.InDelta(t, 2.0, d.CoverageMonths, 1e-9)
	require.True(t, d.NeedReorder)
	require.False(t, d.ReorderWarning)
}

func TestRecomputeCoverageAtHorizonIsNotShort(t *testing.T) {
	d := Recompute(RecomputeInput{
		TotalSold:      30,
		CurrentStock:   30,
		MonthsHistory:  3,
		ForecastMonths: 3,
	})
	require.InDelta(t, 3.0, d.CoverageMonths, 1e-9)
	require.False(t, d.NeedReorder, "coverage equal to the horizon is enough")
	require.False(t, d.ReorderWarning, "warning band is open at the horizon")
}

func TestRecomputeWarningBand(t *testing.T) {
	cases := []struct {
		name     string
		stock    float64
		warning  bool
		reorder  bool
		coverage float64
	}{
		{name: "just above horizon", stock: 31, coverage: 3.1, warning: true},
		{name: "upper bound inclusive", stock: 45, coverage: 4.5, warning: true},
		{name: "past upper bound", stock: 46, coverage: 4.6, warning: false},
		{name: "below horizon", stock: 29, coverage: 2.9, reorder: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := Recompute(RecomputeInput{
				TotalSold:      30,
				CurrentStock:   tc.stock,
				MonthsHistory:  3,
				ForecastMonths: 3,
			})
			require.InDelta(t, tc.coverage, d.CoverageMonths, 1e-9)
			require.Equal(t, tc.warning, d.ReorderWarning)
			require.Equal(t, tc.reorder, d.NeedReorder)
			require.False(t, d.NeedReorder && d.ReorderWarning)
		})
	}
}

func TestRecomputeNoDemandWithStock(t *testing.T) {
	d := Recompute(RecomputeInput{
		CurrentStock:   5,
		MonthsHistory:  3,
		ForecastMonths: 3,
	})
	require.InDelta(t, UnboundedCoverage, d.CoverageMonths, 1e-9)
	require.False(t, d.NeedReorder)
	require.False(t, d.ReorderWarning)
}

func TestRecomputeNoDemandNoStock(t *testing.T) {
	d := Recompute(RecomputeInput{
		MonthsHistory:  3,
		ForecastMonths: 3,
	})
	require.Zero(t, d.CoverageMonths)
	require.False(t, d.NeedReorder, "a dead product is not a shortage")
	require.False(t, d.ReorderWarning)
}

func TestRecomputeZeroMonthsHistory(t *testing.T) {
	d := Recompute(RecomputeInput{
		TotalSold:      90,
		CurrentStock:   10,
		MonthsHistory:  0,
		ForecastMonths: 3,
	})
	require.Zero(t, d.MonthlyAverage)
	require.InDelta(t, UnboundedCoverage, d.CoverageMonths, 1e-9)
}

func TestSalesWindow(t *testing.T) {
	now := time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)
	from, to := SalesWindow(now, 3)
	require.Equal(t, now, to)
	require.InDelta(t, 3*monthDays*24, to.Sub(from).Hours(), 1e-6)
}

func TestIncomingMovementsFilter(t *testing.T) {
	now := time.Date(2025, time.March, 15, 14, 30, 0, 0, time.UTC)
	filter, ok := IncomingMovementsFilter(42, 3, now)
	require.True(t, ok)
	require.Equal(t, int64(42), filter.ProductID)
	require.ElementsMatch(t, []MoveState{MoveAssigned, MoveConfirmed, MoveWaiting, MovePartiallyAvailable}, filter.States)

	require.Equal(t, time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC), filter.From)
	require.Equal(t, 23, filter.To.Hour())
	require.Equal(t, 59, filter.To.Minute())
	require.Equal(t, 59, filter.To.Second())
	require.InDelta(t, 3*monthDays, filter.To.Sub(filter.From).Hours()/24, 1.0)
}

func TestIncomingMovementsFilterGuards(t *testing.T) {
	now := time.Date(2025, time.March, 15, 14, 30, 0, 0, time.UTC)

	_, ok := IncomingMovementsFilter(0, 3, now)
	require.False(t, ok, "no product, nothing to query")

	_, ok = IncomingMovementsFilter(42, 0, now)
	require.False(t, ok, "non-positive horizon, nothing to query")

	_, ok = IncomingMovementsFilter(42, -1, now)
	require.False(t, ok)
}
