package ui

import "strings"

// SparklineChars are the eight bar heights, lowest first.
var SparklineChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline keeps the most recent samples in a ring buffer and renders them
// as block characters scaled to the largest sample held.
type Sparkline struct {
	samples []float64
	head    int
	count   int
}

// NewSparkline creates a sparkline holding up to capacity samples.
func NewSparkline(capacity int) *Sparkline {
	if capacity <= 0 {
		capacity = 60
	}
	return &Sparkline{samples: make([]float64, capacity)}
}

// Add appends a sample, evicting the oldest when full.
func (s *Sparkline) Add(value float64) {
	s.samples[s.head] = value
	s.head = (s.head + 1) % len(s.samples)
	s.count++
}

// Count returns the number of samples added since the last Clear.
func (s *Sparkline) Count() int {
	return s.count
}

// Clear drops all samples.
func (s *Sparkline) Clear() {
	clear(s.samples)
	s.head = 0
	s.count = 0
}

// recent returns up to n samples, oldest first.
func (s *Sparkline) recent(n int) []float64 {
	held := min(s.count, len(s.samples))
	n = min(n, held)
	out := make([]float64, n)
	for i := range n {
		idx := (s.head - n + i + len(s.samples)) % len(s.samples)
		out[i] = s.samples[idx]
	}
	return out
}

// Render draws the most recent width samples, left-padded with spaces.
// A width of zero or less uses the full capacity.
func (s *Sparkline) Render(width int) string {
	if width <= 0 {
		width = len(s.samples)
	}
	values := s.recent(width)

	peak := 0.0
	for _, v := range values {
		peak = max(peak, v)
	}

	var sb strings.Builder
	sb.Grow(width * 3)
	sb.WriteString(strings.Repeat(" ", width-len(values)))
	top := len(SparklineChars) - 1
	for _, v := range values {
		idx := 0
		if peak > 0 {
			idx = min(max(int(v/peak*float64(top)), 0), top)
		}
		sb.WriteRune(SparklineChars[idx])
	}
	return sb.String()
}
