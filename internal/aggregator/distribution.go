package aggregator

import "github.com/mandaraliyanage/ECDWA-Medisis/internal/classify"

// Rule is a named bucket predicate.
type Rule struct {
	Name  string
	Match func(v float64) bool
}

// Bucket is one named share of a distribution.
type Bucket struct {
	Name    string `json:"name"`
	Count   int    `json:"count"`
	Percent int    `json:"percent"`
}

// Distribution lists buckets in rule order.
type Distribution []Bucket

// Percent returns the percentage of the named bucket, 0 if there is none.
func (d Distribution) Percent(name string) int {
	for _, b := range d {
		if b.Name == name {
			return b.Percent
		}
	}
	return 0
}

// Percentages returns bucket name to percentage.
func (d Distribution) Percentages() map[string]int {
	out := make(map[string]int, len(d))
	for _, b := range d {
		out[b.Name] = b.Percent
	}
	return out
}

// Distribute assigns each value to the first rule that matches it and
// reports per-bucket percentages over max(1, len(values)). Values no rule
// matches are not counted in any bucket but still weigh in the denominator.
func Distribute(values []float64, rules []Rule) Distribution {
	out := make(Distribution, len(rules))
	for i, r := range rules {
		out[i].Name = r.Name
	}
	for _, v := range values {
		for i, r := range rules {
			if r.Match(v) {
				out[i].Count++
				break
			}
		}
	}
	total := len(values)
	if total < 1 {
		total = 1
	}
	for i := range out {
		out[i].Percent = Round(float64(out[i].Count) / float64(total) * 100)
	}
	return out
}

// HeartRateRules buckets heart rates into ok, warn and crit.
var HeartRateRules = []Rule{
	{Name: string(classify.CategoryOK), Match: func(v float64) bool { return v >= 60 && v <= 100 }},
	{Name: string(classify.CategoryWarn), Match: func(v float64) bool { return (v >= 50 && v < 60) || (v > 100 && v <= 120) }},
	{Name: string(classify.CategoryCrit), Match: func(v float64) bool { return v < 50 || v > 120 }},
}

// OxygenRules buckets oxygen saturation into ok, warn and crit.
var OxygenRules = []Rule{
	{Name: string(classify.CategoryOK), Match: func(v float64) bool { return v >= 95 }},
	{Name: string(classify.CategoryWarn), Match: func(v float64) bool { return v >= 90 && v < 95 }},
	{Name: string(classify.CategoryCrit), Match: func(v float64) bool { return v < 90 }},
}
