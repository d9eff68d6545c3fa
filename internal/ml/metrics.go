package ml

import (
	"fmt"
	"strings"
)

// Accuracy returns the fraction of positions where pred equals truth.
func Accuracy(truth, pred []int) float64 {
	if len(truth) == 0 || len(truth) != len(pred) {
		return 0
	}
	hit := 0
	for i := range truth {
		if truth[i] == pred[i] {
			hit++
		}
	}
	return float64(hit) / float64(len(truth))
}

// ClassScore holds the per-class figures of a Report.
type ClassScore struct {
	Label     string
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// Report is a per-class precision/recall/F1 summary over a holdout set.
type Report struct {
	Classes  []ClassScore
	Accuracy float64
	Macro    ClassScore
	Weighted ClassScore
	Total    int
}

// ClassificationReport scores pred against truth. names[i] labels class i.
// Classes with no support and no predictions are left out of the table
// but the averages follow the labels present in truth or pred.
func ClassificationReport(truth, pred []int, names []string) Report {
	k := len(names)
	tp := make([]int, k)
	fp := make([]int, k)
	fn := make([]int, k)
	for i := range truth {
		t, p := truth[i], pred[i]
		if t < 0 || t >= k || p < 0 || p >= k {
			continue
		}
		if t == p {
			tp[t]++
			continue
		}
		fp[p]++
		fn[t]++
	}

	r := Report{Accuracy: Accuracy(truth, pred), Total: len(truth)}
	var present int
	for c := 0; c < k; c++ {
		support := tp[c] + fn[c]
		if support == 0 && fp[c] == 0 {
			continue
		}
		s := ClassScore{
			Label:     names[c],
			Precision: ratio(tp[c], tp[c]+fp[c]),
			Recall:    ratio(tp[c], support),
			Support:   support,
		}
		if s.Precision+s.Recall > 0 {
			s.F1 = 2 * s.Precision * s.Recall / (s.Precision + s.Recall)
		}
		r.Classes = append(r.Classes, s)
		present++

		r.Macro.Precision += s.Precision
		r.Macro.Recall += s.Recall
		r.Macro.F1 += s.F1

		w := float64(support)
		r.Weighted.Precision += w * s.Precision
		r.Weighted.Recall += w * s.Recall
		r.Weighted.F1 += w * s.F1
	}

	r.Macro.Label = "macro avg"
	r.Macro.Support = r.Total
	if present > 0 {
		r.Macro.Precision /= float64(present)
		r.Macro.Recall /= float64(present)
		r.Macro.F1 /= float64(present)
	}
	r.Weighted.Label = "weighted avg"
	r.Weighted.Support = r.Total
	if r.Total > 0 {
		r.Weighted.Precision /= float64(r.Total)
		r.Weighted.Recall /= float64(r.Total)
		r.Weighted.F1 /= float64(r.Total)
	}
	return r
}

func ratio(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}

// String renders the report as a plain-text table.
func (r Report) String() string {
	width := len("weighted avg")
	for _, c := range r.Classes {
		width = max(width, len(c.Label))
	}

	var b strings.Builder
	row := func(label, p, rc, f, s string) {
		fmt.Fprintf(&b, "%*s %10s %10s %10s %10s\n", width, label, p, rc, f, s)
	}
	score := func(c ClassScore) {
		row(c.Label,
			fmt.Sprintf("%.2f", c.Precision),
			fmt.Sprintf("%.2f", c.Recall),
			fmt.Sprintf("%.2f", c.F1),
			fmt.Sprintf("%d", c.Support))
	}

	row("", "precision", "recall", "f1-score", "support")
	b.WriteString("\n")
	for _, c := range r.Classes {
		score(c)
	}
	b.WriteString("\n")
	row("accuracy", "", "", fmt.Sprintf("%.2f", r.Accuracy), fmt.Sprintf("%d", r.Total))
	score(r.Macro)
	score(r.Weighted)
	return b.String()
}
