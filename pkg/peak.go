package music

import "gonum.org/v1/gonum/floats"

// LocatePeak returns the first bin holding the maximum count.
// counts must not be empty.
func LocatePeak(counts []float64) (int, float64) {
	idx := floats.MaxIdx(counts)
	return idx, counts[idx]
}

// SeedFromHistogram builds the initial fit estimate from the peak bin and
// the configured width prior.
func SeedFromHistogram(h Histogram, sigma float64) GaussParams {
	idx, value := LocatePeak(h.Counts)
	return GaussParams{Amplitude: value, Center: h.Center(idx), Sigma: sigma}
}
