// Package sample produces the bounded random series and scalars the dashboard
// widgets display in place of live metrics.
package sample

import (
	"math/rand/v2"
)

// MonthLabels is the fixed category axis every series is generated against.
var MonthLabels = []string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// Series is an ordered set of samples, one per category bucket.
type Series []int

// Floats converts the series for chart consumption.
func (s Series) Floats() []float64 {
	out := make([]float64, len(s))
	for i, v := range s {
		out[i] = float64(v)
	}
	return out
}

// Sum returns the total of all samples.
func (s Series) Sum() int {
	total := 0
	for _, v := range s {
		total += v
	}
	return total
}

// AppointmentSplit partitions a total count into concluded and canceled.
type AppointmentSplit struct {
	Total     int `json:"total"`
	Concluded int `json:"concluded"`
	Canceled  int `json:"canceled"`
}

// Source is the random number port. IntN returns a uniform value in [0, n).
type Source interface {
	IntN(n int) int
}

// Generator produces sample data from a Source.
type Generator struct {
	src Source
}

// New returns a Generator backed by src.
func New(src Source) *Generator {
	return &Generator{src: src}
}

// NewRandom returns a Generator whose values are not reproducible.
func NewRandom() *Generator {
	return New(rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
}

// NewSeeded returns a Generator that yields the same values for the same seed.
func NewSeeded(seed uint64) *Generator {
	return New(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// Generate returns count independent values in [0, max).
func (g *Generator) Generate(count, max int) Series {
	if count <= 0 {
		return Series{}
	}
	out := make(Series, count)
	if max <= 0 {
		return out
	}
	for i := range out {
		out[i] = g.src.IntN(max)
	}
	return out
}

// Monthly returns one value per month in [0, max).
func (g *Generator) Monthly(max int) Series {
	return g.Generate(len(MonthLabels), max)
}

// Scalar returns a single value in [0, max).
func (g *Generator) Scalar(max int) int {
	return g.Generate(1, max)[0]
}

// Split draws the concluded part uniformly from [0, total] and assigns the
// rest to canceled. A negative total is treated as zero.
func (g *Generator) Split(total int) AppointmentSplit {
	if total < 0 {
		total = 0
	}
	concluded := g.src.IntN(total + 1)
	return AppointmentSplit{
		Total:     total,
		Concluded: concluded,
		Canceled:  total - concluded,
	}
}
