package analysis

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecomdash/internal/dataset"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestClassify(t *testing.T) {
	tests := []struct {
		ts   string
		want string
	}{
		{"2024-01-06 10:00:00", Weekend}, // Saturday
		{"2024-01-07 23:59:59", Weekend}, // Sunday
		{"2024-01-08 00:00:00", Weekday}, // Monday
		{"2024-01-12 12:00:00", Weekday}, // Friday
	}

	for _, tt := range tests {
		t.Run(tt.ts, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(date(tt.ts)))
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	for _, s := range []string{
		"2017-10-02 10:56:33",
		"2017-10-02T10:56:33",
		"2017-10-02T10:56:33Z",
		"2017-10-02 10:56",
		"2017-10-02",
	} {
		ts, ok := ParseTimestamp(s)
		assert.True(t, ok, s)
		assert.Equal(t, 2017, ts.Year(), s)
	}

	for _, s := range []string{"", "yesterday", "02/10/2017"} {
		_, ok := ParseTimestamp(s)
		assert.False(t, ok, s)
	}
}

func TestSplitWeek_CountsEveryOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	base := date("2017-01-01 00:00:00")

	times := make([]time.Time, 1000)
	weekend := 0
	for i := range times {
		times[i] = base.Add(time.Duration(rng.Int63n(int64(365 * 24 * time.Hour))))
		if wd := times[i].Weekday(); wd == time.Saturday || wd == time.Sunday {
			weekend++
		}
	}

	split := SplitWeek(times)
	assert.Equal(t, len(times), split.Weekday+split.Weekend)
	assert.Equal(t, len(times), split.Total())
	assert.Equal(t, weekend, split.Weekend)
}

func TestWeekSplit_Rows(t *testing.T) {
	assert.Equal(t, []LabelCount{{Weekday, 5}, {Weekend, 2}}, WeekSplit{Weekday: 5, Weekend: 2}.Rows())
	assert.Equal(t, []LabelCount{{Weekend, 9}, {Weekday, 2}}, WeekSplit{Weekday: 2, Weekend: 9}.Rows())
	assert.Equal(t, []LabelCount{{Weekday, 3}, {Weekend, 3}}, WeekSplit{Weekday: 3, Weekend: 3}.Rows())
}

func TestBuildTrend(t *testing.T) {
	var times []time.Time
	start := date("2017-01-01 08:00:00")
	// 400 consecutive days, two orders on even days
	for d := 0; d < 400; d++ {
		day := start.AddDate(0, 0, d)
		times = append(times, day)
		if d%2 == 0 {
			times = append(times, day.Add(3*time.Hour))
		}
	}
	// shuffle to make sure ordering comes from the buckets
	rand.New(rand.NewSource(1)).Shuffle(len(times), func(i, j int) { times[i], times[j] = times[j], times[i] })

	trend := BuildTrend(times)

	require.Len(t, trend.Daily, DailyBuckets)
	require.Len(t, trend.Weekly, WeeklyBuckets)
	require.Len(t, trend.Monthly, MonthlyBuckets)

	assert.Equal(t, "2017-01-01", trend.Daily[0].Label)
	assert.Equal(t, 2, trend.Daily[0].Count)
	assert.Equal(t, "2017-01-02", trend.Daily[1].Label)
	assert.Equal(t, 1, trend.Daily[1].Count)
	assert.Equal(t, "2017-01-30", trend.Daily[29].Label)

	// 2017-01-01 is a Sunday: its week started on Monday 2016-12-26
	assert.Equal(t, "2016-12-26/2017-01-01", trend.Weekly[0].Label)
	assert.Equal(t, 2, trend.Weekly[0].Count)
	assert.Equal(t, "2017-01-02/2017-01-08", trend.Weekly[1].Label)
	assert.Equal(t, 10, trend.Weekly[1].Count)

	assert.Equal(t, "2017-01", trend.Monthly[0].Label)
	assert.Equal(t, "2017-12", trend.Monthly[11].Label)
	assert.Equal(t, 31+16, trend.Monthly[0].Count)

	for _, buckets := range [][]Bucket{trend.Daily, trend.Weekly, trend.Monthly} {
		for i := 1; i < len(buckets); i++ {
			assert.True(t, buckets[i-1].Start.Before(buckets[i].Start), "chronological order")
		}
	}
}

func TestBuildTrend_FewerBucketsThanLimit(t *testing.T) {
	trend := BuildTrend([]time.Time{date("2018-03-04 10:00:00"), date("2018-03-04 11:00:00")})

	assert.Equal(t, []Bucket{{Label: "2018-03-04", Start: date("2018-03-04 00:00:00"), Count: 2}}, trend.Daily)
	assert.Equal(t, "2018-02-26/2018-03-04", trend.Weekly[0].Label)
	assert.Len(t, trend.Monthly, 1)
}

func TestComputeWeekdayWeekend(t *testing.T) {
	split, err := ComputeWeekdayWeekend(context.Background(), fullSnapshot(t))
	require.NoError(t, err)

	// 2024-01-06 is a Saturday, 2024-01-08 a Monday, 2024-02-01 a Thursday
	assert.Equal(t, 1, split.Weekend)
	assert.Equal(t, 2, split.Weekday)
	assert.Equal(t, 0, split.Unparsed)
}

func TestComputeSalesTrend_Unparsed(t *testing.T) {
	orders := table(t, dataset.Orders,
		[]string{"order_id", "order_purchase_timestamp"},
		[]string{"o1", "2024-01-06 10:00:00"},
		[]string{"o2", "not a date"},
		[]string{"o3", ""},
	)

	trend, err := ComputeSalesTrend(context.Background(), snapshot(t, orders))
	require.NoError(t, err)
	assert.Equal(t, 2, trend.Unparsed)
	assert.Equal(t, 1, trend.Daily[0].Count)

	allBad := table(t, dataset.Orders,
		[]string{"order_id", "order_purchase_timestamp"},
		[]string{"o1", "soon"},
	)
	_, err = ComputeWeekdayWeekend(context.Background(), snapshot(t, allBad))
	assert.ErrorIs(t, err, ErrNoData)
}

func TestComputeSalesTrend_MissingColumn(t *testing.T) {
	orders := table(t, dataset.Orders, []string{"order_id", "order_status"}, []string{"o1", "delivered"})

	_, err := ComputeSalesTrend(context.Background(), snapshot(t, orders))
	assert.True(t, IsComputationError(err))
	assert.Contains(t, err.Error(), "order_purchase_timestamp")
}
