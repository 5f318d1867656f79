package analysis

import (
	"context"
	"sort"
	"strings"
	"time"

	"ecomdash/internal/dataset"
)

const (
	DailyBuckets   = 30
	WeeklyBuckets  = 10
	MonthlyBuckets = 12
)

// Weekday and Weekend are the two classes of WeekSplit.
const (
	Weekday = "Weekday"
	Weekend = "Weekend"
)

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTimestamp reads an order timestamp. Zone-less values are UTC.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Bucket is the order count of one time period.
type Bucket struct {
	Label string    `json:"label"`
	Start time.Time `json:"start"`
	Count int       `json:"count"`
}

// Trend holds the first buckets of each granularity in chronological order.
type Trend struct {
	Daily    []Bucket `json:"daily"`
	Weekly   []Bucket `json:"weekly"`
	Monthly  []Bucket `json:"monthly"`
	Unparsed int      `json:"unparsed"`
}

// WeekSplit counts orders by weekday or weekend purchase.
type WeekSplit struct {
	Weekday  int `json:"weekday"`
	Weekend  int `json:"weekend"`
	Unparsed int `json:"unparsed"`
}

// Total is the number of classified orders.
func (w WeekSplit) Total() int {
	return w.Weekday + w.Weekend
}

// Rows lists the two classes by descending count, weekday first on a tie.
func (w WeekSplit) Rows() []LabelCount {
	rows := []LabelCount{{Label: Weekday, Count: w.Weekday}, {Label: Weekend, Count: w.Weekend}}
	if w.Weekend > w.Weekday {
		rows[0], rows[1] = rows[1], rows[0]
	}
	return rows
}

// Classify returns Weekend for Saturday and Sunday and Weekday otherwise.
func Classify(t time.Time) string {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return Weekend
	default:
		return Weekday
	}
}

func dayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// weekStart is the Monday of t's week.
func weekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return dayStart(t).AddDate(0, 0, -offset)
}

func monthStart(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func dayLabel(start time.Time) string { return start.Format("2006-01-02") }

func weekLabel(start time.Time) string {
	return start.Format("2006-01-02") + "/" + start.AddDate(0, 0, 6).Format("2006-01-02")
}

func monthLabel(start time.Time) string { return start.Format("2006-01") }

// bucketize counts times per period and returns the first limit periods.
func bucketize(times []time.Time, start func(time.Time) time.Time, label func(time.Time) string, limit int) []Bucket {
	counts := make(map[time.Time]int)
	for _, t := range times {
		counts[start(t)]++
	}

	starts := make([]time.Time, 0, len(counts))
	for s := range counts {
		starts = append(starts, s)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })
	if len(starts) > limit {
		starts = starts[:limit]
	}

	out := make([]Bucket, len(starts))
	for i, s := range starts {
		out[i] = Bucket{Label: label(s), Start: s, Count: counts[s]}
	}
	return out
}

// BuildTrend buckets purchase times by day, ISO week and month.
func BuildTrend(times []time.Time) *Trend {
	return &Trend{
		Daily:   bucketize(times, dayStart, dayLabel, DailyBuckets),
		Weekly:  bucketize(times, weekStart, weekLabel, WeeklyBuckets),
		Monthly: bucketize(times, monthStart, monthLabel, MonthlyBuckets),
	}
}

// SplitWeek classifies purchase times.
func SplitWeek(times []time.Time) WeekSplit {
	var w WeekSplit
	for _, t := range times {
		if Classify(t) == Weekend {
			w.Weekend++
		} else {
			w.Weekday++
		}
	}
	return w
}

// purchaseTimes parses the order timestamps and counts the unreadable ones.
func purchaseTimes(kind Kind, snap *dataset.Snapshot) ([]time.Time, int, error) {
	orders, err := input(kind, snap, dataset.Orders, dataset.ColPurchasedAt)
	if err != nil {
		return nil, 0, err
	}
	raw := orders.MustStrings(dataset.ColPurchasedAt)

	times := make([]time.Time, 0, len(raw))
	unparsed := 0
	for _, s := range raw {
		t, ok := ParseTimestamp(s)
		if !ok {
			unparsed++
			continue
		}
		times = append(times, t)
	}
	if len(times) == 0 && len(raw) > 0 {
		return nil, 0, noData(kind, dataset.Orders, dataset.ColPurchasedAt)
	}
	return times, unparsed, nil
}

// ComputeSalesTrend counts orders per day, week and month.
func ComputeSalesTrend(_ context.Context, snap *dataset.Snapshot) (*Trend, error) {
	times, unparsed, err := purchaseTimes(SalesTrend, snap)
	if err != nil {
		return nil, err
	}
	trend := BuildTrend(times)
	trend.Unparsed = unparsed
	return trend, nil
}

// ComputeWeekdayWeekend counts orders placed on weekdays and weekends.
func ComputeWeekdayWeekend(_ context.Context, snap *dataset.Snapshot) (*WeekSplit, error) {
	times, unparsed, err := purchaseTimes(WeekdayWeekend, snap)
	if err != nil {
		return nil, err
	}
	split := SplitWeek(times)
	split.Unparsed = unparsed
	return &split, nil
}
