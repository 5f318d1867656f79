package analysis

import (
	"context"
	"fmt"

	"ecomdash/internal/dataset"
)

const (
	// PriceCutoffQuantile is the quantile above which prices are left out
	// of the distribution.
	PriceCutoffQuantile = 0.99
	// HistogramBins is the number of equal-width price bins.
	HistogramBins = 30
	// FenceFactor scales the IQR to place the boxplot fences.
	FenceFactor = 1.5
)

// Bin is one histogram bucket. Upper is exclusive except for the last bin.
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Histogram is the price distribution after the outlier cut.
type Histogram struct {
	Cutoff  float64 `json:"cutoff"`
	Bins    []Bin   `json:"bins"`
	Kept    int     `json:"kept"`
	Dropped int     `json:"dropped"`
	Missing int     `json:"missing"`
}

// BoxSummary is the five-number summary of the values inside the IQR fences.
type BoxSummary struct {
	LowerFence float64 `json:"lower_fence"`
	UpperFence float64 `json:"upper_fence"`
	IQR        float64 `json:"iqr"`
	Min        float64 `json:"min"`
	Q1         float64 `json:"q1"`
	Median     float64 `json:"median"`
	Q3         float64 `json:"q3"`
	Max        float64 `json:"max"`
	Retained   int     `json:"retained"`
	Excluded   int     `json:"excluded"`
	Missing    int     `json:"missing"`
}

// ClipHistogram keeps the values at or below the q-quantile and bins them.
// NaN values are counted as missing and otherwise ignored.
func ClipHistogram(values []float64, q float64, bins int) (*Histogram, error) {
	if bins < 1 {
		return nil, fmt.Errorf("bins must be positive: %d", bins)
	}
	sorted := finiteSorted(values)
	if len(sorted) == 0 {
		return nil, ErrNoData
	}

	cutoff := quantile(sorted, q)
	kept := sorted
	for i, v := range sorted {
		if v > cutoff {
			kept = sorted[:i]
			break
		}
	}

	return &Histogram{
		Cutoff:  cutoff,
		Bins:    histogram(kept, bins),
		Kept:    len(kept),
		Dropped: len(sorted) - len(kept),
		Missing: len(values) - len(sorted),
	}, nil
}

// FenceSummary applies IQR fencing and summarises what is left.
func FenceSummary(values []float64, factor float64) (*BoxSummary, error) {
	sorted := finiteSorted(values)
	if len(sorted) == 0 {
		return nil, ErrNoData
	}

	q1 := quantile(sorted, 0.25)
	q3 := quantile(sorted, 0.75)
	iqr := q3 - q1
	lower, upper := q1-factor*iqr, q3+factor*iqr

	retained := make([]float64, 0, len(sorted))
	for _, v := range sorted {
		if v >= lower && v <= upper {
			retained = append(retained, v)
		}
	}

	if len(retained) == 0 {
		return nil, ErrNoData
	}

	return &BoxSummary{
		LowerFence: lower,
		UpperFence: upper,
		IQR:        iqr,
		Min:        retained[0],
		Q1:         quantile(retained, 0.25),
		Median:     quantile(retained, 0.5),
		Q3:         quantile(retained, 0.75),
		Max:        retained[len(retained)-1],
		Retained:   len(retained),
		Excluded:   len(sorted) - len(retained),
		Missing:    len(values) - len(sorted),
	}, nil
}

// ComputePriceDistribution bins item prices after cutting the top percentile.
func ComputePriceDistribution(_ context.Context, snap *dataset.Snapshot) (*Histogram, error) {
	items, err := input(PriceDistribution, snap, dataset.Items, dataset.ColPrice)
	if err != nil {
		return nil, err
	}
	prices := items.MustFloats(dataset.ColPrice)

	h, err := ClipHistogram(prices, PriceCutoffQuantile, HistogramBins)
	if err != nil {
		return nil, &ComputationError{Kind: PriceDistribution, Table: dataset.Items, Column: dataset.ColPrice, Err: err}
	}
	return h, nil
}

// ComputePriceBoxplot summarises item prices without IQR outliers.
func ComputePriceBoxplot(_ context.Context, snap *dataset.Snapshot) (*BoxSummary, error) {
	items, err := input(PriceBoxplot, snap, dataset.Items, dataset.ColPrice)
	if err != nil {
		return nil, err
	}
	prices := items.MustFloats(dataset.ColPrice)

	box, err := FenceSummary(prices, FenceFactor)
	if err != nil {
		return nil, &ComputationError{Kind: PriceBoxplot, Table: dataset.Items, Column: dataset.ColPrice, Err: err}
	}
	return box, nil
}
