package dashboard

// averageWindow is the number of samples kept per subscription.
const averageWindow = 5

// RollingAverage keeps the last few samples and their mean.
type RollingAverage struct {
	samples []float64
	mean    float64
}

// Add records f, dropping the oldest sample when the window is full, and
// returns the new mean.
func (r *RollingAverage) Add(f float64) float64 {
	if len(r.samples) >= averageWindow {
		copy(r.samples, r.samples[1:])
		r.samples = r.samples[:averageWindow-1]
	}
	r.samples = append(r.samples, f)

	var sum float64
	for _, s := range r.samples {
		sum += s
	}
	r.mean = sum / float64(len(r.samples))
	return r.mean
}

// Mean reports false until the first sample arrives.
func (r *RollingAverage) Mean() (float64, bool) {
	return r.mean, len(r.samples) > 0
}

func (r *RollingAverage) Samples() []float64 {
	out := make([]float64, len(r.samples))
	copy(out, r.samples)
	return out
}

func (r *RollingAverage) Len() int { return len(r.samples) }
