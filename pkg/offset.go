package music

// EstimateOffset returns the center of the first non-empty bin of h. Short
// strips show a sharp rising edge at their baseline, so this approximates
// the shelf without a fit.
func EstimateOffset(h Histogram) (float64, error) {
	for i, c := range h.Counts {
		if c > 0 {
			return h.Center(i), nil
		}
	}
	err := &ErrOffsetNotFound{}
	if len(h.Edges) > 0 {
		err.Low = h.Edges[0]
		err.High = h.Edges[len(h.Edges)-1]
	}
	return 0, err
}
