package fingerprint

import "math"

// Threshold is the raw score a winner must exceed to be reported
const Threshold = 0.3

// Result is a positive detection
type Result struct {
	Platform string `json:"platform"    example:"WordPress"`
	// Confidence is min(raw*100, 100) rounded to two decimals, so 0.4+0.3 reads 70
	Confidence float64  `json:"confidence"  example:"80"`
	Indicators []string `json:"indicators"`
}

// Score is the raw outcome for one platform
type Score struct {
	Platform string   `json:"platform"`
	Raw      float64  `json:"raw"`
	Matched  []string `json:"matched"`
}

// Detector evaluates a Table against HTML
// it holds no mutable state and is safe for concurrent use
type Detector struct {
	table *Table
}

// New builds a detector over t
func New(t *Table) *Detector {
	if t == nil {
		panic("fingerprint: nil table")
	}
	return &Detector{table: t}
}

// Table returns the table the detector scores against
func (d *Detector) Table() *Table { return d.table }

// Rank scores every platform in table order
func (d *Detector) Rank(html string) []Score {
	out := make([]Score, len(d.table.Signatures))
	for i, sig := range d.table.Signatures {
		s := Score{Platform: sig.Platform}
		if html != "" {
			for _, ind := range sig.Indicators {
				if ind.Matches(html) {
					s.Raw += ind.Weight
					s.Matched = append(s.Matched, ind.Text)
				}
			}
		}
		out[i] = s
	}
	return out
}

// Detect returns the best platform for html, ok is false when nothing scored above Threshold
func (d *Detector) Detect(html string) (Result, bool) {
	scores := d.Rank(html)

	// strictly greater keeps the earlier platform on ties
	best, top := -1, 0.0
	for i, s := range scores {
		if s.Raw > top {
			best, top = i, s.Raw
		}
	}
	if best < 0 || top <= Threshold {
		return Result{}, false
	}

	w := scores[best]
	ind := make([]string, len(w.Matched))
	copy(ind, w.Matched)
	return Result{
		Platform:   w.Platform,
		Confidence: confidence(top),
		Indicators: ind,
	}, true
}

// confidence scales a raw score to 0..100 and trims float noise to two decimals
func confidence(raw float64) float64 {
	c := math.Min(raw*100, 100)
	if c < 0 {
		c = 0
	}
	return math.Round(c*100) / 100
}
