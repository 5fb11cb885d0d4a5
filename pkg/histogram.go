package music

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Range is a closed interval of sample values used as histogram span.
type Range struct {
	Low  float64 `json:"low" yaml:"low"`
	High float64 `json:"high" yaml:"high"`
}

func (r Range) Validate() error {
	if math.IsNaN(r.Low) || math.IsNaN(r.High) || math.IsInf(r.Low, 0) || math.IsInf(r.High, 0) {
		return errors.New("bounds must be finite")
	}
	if r.High <= r.Low {
		return fmt.Errorf("high bound %g must be greater than low bound %g", r.High, r.Low)
	}
	return nil
}

func (r Range) Contains(v float64) bool {
	return v >= r.Low && v <= r.High
}

// Histogram holds len(Counts)+1 equal-width bin edges.
// Bin i counts samples in [Edges[i], Edges[i+1]); the last bin is closed.
type Histogram struct {
	Edges  []float64
	Counts []float64
}

func (h Histogram) Bins() int {
	return len(h.Counts)
}

func (h Histogram) Width() float64 {
	if len(h.Edges) < 2 {
		return 0
	}
	return h.Edges[1] - h.Edges[0]
}

func (h Histogram) Center(i int) float64 {
	return (h.Edges[i] + h.Edges[i+1]) / 2
}

func (h Histogram) Centers() []float64 {
	centers := make([]float64, len(h.Counts))
	for i := range centers {
		centers[i] = h.Center(i)
	}
	return centers
}

func (h Histogram) Entries() int {
	return int(floats.Sum(h.Counts))
}

// Populated returns the number of bins with at least one entry.
func (h Histogram) Populated() int {
	n := 0
	for _, c := range h.Counts {
		if c > 0 {
			n++
		}
	}
	return n
}

// BuildHistogram bins samples into the given number of bins. With a nil
// span the histogram covers [min, max] of the samples, otherwise samples
// outside span are ignored.
func BuildHistogram(samples []float64, bins int, span *Range) (Histogram, error) {
	if bins <= 0 {
		return Histogram{}, &ErrConfiguration{Field: "bins", Reason: fmt.Sprintf("got %d, must be greater than zero", bins)}
	}

	var r Range
	if span != nil {
		if err := span.Validate(); err != nil {
			return Histogram{}, &ErrConfiguration{Field: "range", Reason: err.Error()}
		}
		r = *span
	} else {
		if len(samples) == 0 {
			return Histogram{}, &ErrInputShape{Reason: "cannot build histogram range from empty sample"}
		}
		r = Range{Low: floats.Min(samples), High: floats.Max(samples)}
		if r.Low == r.High {
			r = Range{Low: r.Low - 0.5, High: r.High + 0.5}
		}
	}

	edges := floats.Span(make([]float64, bins+1), r.Low, r.High)
	edges[bins] = r.High

	// stat.Histogram needs sorted values strictly below the last edge,
	// values sitting on it belong to the closed last bin.
	inside := make([]float64, 0, len(samples))
	onEdge := 0
	for _, v := range samples {
		switch {
		case v == r.High:
			onEdge++
		case v >= r.Low && v < r.High:
			inside = append(inside, v)
		}
	}
	slices.Sort(inside)

	counts := make([]float64, bins)
	if len(inside) > 0 {
		stat.Histogram(counts, edges, inside, nil)
	}
	counts[bins-1] += float64(onEdge)

	return Histogram{Edges: edges, Counts: counts}, nil
}

// HistogramSummary describes the sample behind a histogram, used to
// report fit failures.
type HistogramSummary struct {
	Entries   int
	Mean      float64
	StdDev    float64
	Min       float64
	Max       float64
	Populated int
}

func (s HistogramSummary) String() string {
	return fmt.Sprintf("entries=%d mean=%.3f std=%.3f min=%.3f max=%.3f populated bins=%d",
		s.Entries, s.Mean, s.StdDev, s.Min, s.Max, s.Populated)
}

func Summarize(samples []float64, h Histogram) HistogramSummary {
	summary := HistogramSummary{Entries: len(samples), Populated: h.Populated()}
	if len(samples) == 0 {
		return summary
	}
	summary.Min = floats.Min(samples)
	summary.Max = floats.Max(samples)
	if len(samples) > 1 {
		summary.Mean, summary.StdDev = stat.MeanStdDev(samples, nil)
	} else {
		summary.Mean = samples[0]
	}
	return summary
}
