// Package gauge converts raw dashboard metrics into a clamped percentage and
// a three-step colour band.
package gauge

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidArgument is returned when a maximum is not strictly positive.
var ErrInvalidArgument = errors.New("invalid argument")

// Band thresholds. A percentage equal to a threshold belongs to the lower band.
const (
	LowCeiling = 44.0
	MidCeiling = 74.0
)

// Band classifies a percentage.
type Band int

const (
	Low Band = iota
	Mid
	High
)

func (b Band) String() string {
	switch b {
	case Low:
		return "low"
	case Mid:
		return "mid"
	case High:
		return "high"
	}
	return fmt.Sprintf("band(%d)", int(b))
}

// Color is the dial colour for the band.
func (b Band) Color() string {
	switch b {
	case Low:
		return "#ef4444"
	case Mid:
		return "#facc15"
	default:
		return "#22c55e"
	}
}

// Label is the human readable rating shown under the dial.
func (b Band) Label() string {
	switch b {
	case Low:
		return "Bad"
	case Mid:
		return "Good"
	default:
		return "Excellent"
	}
}

// MarshalText renders the band by name in JSON payloads.
func (b Band) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText parses a band name.
func (b *Band) UnmarshalText(text []byte) error {
	switch string(text) {
	case "low":
		*b = Low
	case "mid":
		*b = Mid
	case "high":
		*b = High
	default:
		return fmt.Errorf("unknown band %q", text)
	}
	return nil
}

// Classify maps a percentage onto its band.
func Classify(pct float64) Band {
	switch {
	case pct <= LowCeiling:
		return Low
	case pct <= MidCeiling:
		return Mid
	default:
		return High
	}
}

// Reading is a normalized gauge value.
type Reading struct {
	Raw        float64 `json:"raw"`
	Max        float64 `json:"max"`
	Percentage float64 `json:"percentage"`
	Band       Band    `json:"band"`
}

// Part is one contribution to an aggregate gauge.
type Part struct {
	Name string  `json:"name"`
	Raw  float64 `json:"raw"`
	Max  float64 `json:"max"`
}

// Normalize returns raw/max as a percentage clamped to [0, 100]. Both values
// must be finite and max positive.
func Normalize(raw, max float64) (Reading, error) {
	if !(max > 0) || !finite(raw) || !finite(max) {
		return Reading{}, fmt.Errorf("normalize raw=%v max=%v: %w", raw, max, ErrInvalidArgument)
	}
	pct := clamp(raw * 100 / max)
	return Reading{Raw: raw, Max: max, Percentage: pct, Band: Classify(pct)}, nil
}

// NormalizeParts sums the raw values and divides by the summed maxima. The
// result differs from averaging the per-part percentages whenever the maxima
// differ.
func NormalizeParts(parts ...Part) (Reading, error) {
	if len(parts) == 0 {
		return Reading{}, fmt.Errorf("normalize parts: no parts: %w", ErrInvalidArgument)
	}
	var raw, max float64
	for _, p := range parts {
		if !(p.Max > 0) {
			return Reading{}, fmt.Errorf("normalize part %q max=%v: %w", p.Name, p.Max, ErrInvalidArgument)
		}
		raw += p.Raw
		max += p.Max
	}
	return Normalize(raw, max)
}

// Dial returns the filled and remaining portions of the dial in percent.
func (r Reading) Dial() (filled, remaining float64) {
	return r.Percentage, 100 - r.Percentage
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func clamp(pct float64) float64 {
	if pct < 0 || math.IsNaN(pct) {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
