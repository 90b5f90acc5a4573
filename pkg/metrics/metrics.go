// Package metrics computes the classification metrics shared by the
// hyperparameter search objective and the final evaluation: micro-F1,
// macro-F1 and accuracy, for both single-label and multi-label outputs.
package metrics

import (
	"math"

	"github.com/montanaflynn/stats"
)

// DefaultThreshold is the decision threshold applied to squashed multi-label
// logits.
const DefaultThreshold = 0.5

// Sigmoid squashes a logit into (0, 1).
func Sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// Argmax returns the index of the maximum value. Ties resolve to the lowest
// index, which keeps decoding deterministic.
func Argmax(row []float64) int {
	best := 0
	for i, v := range row {
		if v > row[best] {
			best = i
		}
	}
	return best
}

// DecodeSingleLabel turns logit rows into predicted class ids.
func DecodeSingleLabel(logits [][]float64) []int {
	out := make([]int, len(logits))
	for i, row := range logits {
		out[i] = Argmax(row)
	}
	return out
}

// DecodeMultiLabel turns logit rows into multi-hot vectors by squashing each
// logit and thresholding it.
func DecodeMultiLabel(logits [][]float64, threshold float64) [][]int {
	out := make([][]int, len(logits))
	for i, row := range logits {
		hot := make([]int, len(row))
		for j, v := range row {
			if Sigmoid(v) > threshold {
				hot[j] = 1
			}
		}
		out[i] = hot
	}
	return out
}

func f1FromCounts(tp, fp, fn int) float64 {
	denom := float64(2*tp + fp + fn)
	if denom == 0 {
		return 0
	}
	return 2 * float64(tp) / denom
}

func multiclassCounts(pred, ref []int, numClasses int) (tp, fp, fn []int) {
	tp = make([]int, numClasses)
	fp = make([]int, numClasses)
	fn = make([]int, numClasses)
	for i := range pred {
		p, r := pred[i], ref[i]
		if p == r {
			tp[p]++
			continue
		}
		if p >= 0 && p < numClasses {
			fp[p]++
		}
		if r >= 0 && r < numClasses {
			fn[r]++
		}
	}
	return tp, fp, fn
}

// MicroF1Multiclass pools true/false positives and negatives across all
// classes before computing F1.
func MicroF1Multiclass(pred, ref []int, numClasses int) float64 {
	tp, fp, fn := multiclassCounts(pred, ref, numClasses)
	var sumTP, sumFP, sumFN int
	for c := 0; c < numClasses; c++ {
		sumTP += tp[c]
		sumFP += fp[c]
		sumFN += fn[c]
	}
	return f1FromCounts(sumTP, sumFP, sumFN)
}

// MacroF1Multiclass averages per-class F1 scores unweighted.
func MacroF1Multiclass(pred, ref []int, numClasses int) float64 {
	tp, fp, fn := multiclassCounts(pred, ref, numClasses)
	perClass := make([]float64, numClasses)
	for c := 0; c < numClasses; c++ {
		perClass[c] = f1FromCounts(tp[c], fp[c], fn[c])
	}

	mean, err := stats.Mean(perClass)
	if err != nil {
		return 0
	}
	return mean
}

// AccuracyMulticlass is the fraction of exact matches.
func AccuracyMulticlass(pred, ref []int) float64 {
	if len(pred) == 0 {
		return 0
	}
	matches := 0
	for i := range pred {
		if pred[i] == ref[i] {
			matches++
		}
	}
	return float64(matches) / float64(len(pred))
}

func multilabelCounts(pred, ref [][]int) (tpCols, fpCols, fnCols []int) {
	if len(pred) == 0 {
		return nil, nil, nil
	}
	width := len(pred[0])
	tpCols = make([]int, width)
	fpCols = make([]int, width)
	fnCols = make([]int, width)
	for i := range pred {
		var refRow []int
		if i < len(ref) {
			refRow = ref[i]
		}
		for j := 0; j < width; j++ {
			// rows narrower than the prediction width count as negatives
			p, r := 0, 0
			if j < len(pred[i]) {
				p = pred[i][j]
			}
			if j < len(refRow) {
				r = refRow[j]
			}
			switch {
			case p == 1 && r == 1:
				tpCols[j]++
			case p == 1 && r == 0:
				fpCols[j]++
			case p == 0 && r == 1:
				fnCols[j]++
			}
		}
	}
	return tpCols, fpCols, fnCols
}

// MicroF1Multilabel pools every label decision across all examples and labels.
func MicroF1Multilabel(pred, ref [][]int) float64 {
	tp, fp, fn := multilabelCounts(pred, ref)
	var sumTP, sumFP, sumFN int
	for j := range tp {
		sumTP += tp[j]
		sumFP += fp[j]
		sumFN += fn[j]
	}
	return f1FromCounts(sumTP, sumFP, sumFN)
}

// MacroF1Multilabel averages per-label F1 scores unweighted.
func MacroF1Multilabel(pred, ref [][]int) float64 {
	tp, fp, fn := multilabelCounts(pred, ref)
	if len(tp) == 0 {
		return 0
	}
	perLabel := make([]float64, len(tp))
	for j := range tp {
		perLabel[j] = f1FromCounts(tp[j], fp[j], fn[j])
	}

	mean, err := stats.Mean(perLabel)
	if err != nil {
		return 0
	}
	return mean
}

// AccuracyMultilabel is the exact-match fraction over whole label vectors.
func AccuracyMultilabel(pred, ref [][]int) float64 {
	if len(pred) == 0 {
		return 0
	}
	matches := 0
outer:
	for i := range pred {
		if i >= len(ref) || len(ref[i]) != len(pred[i]) {
			continue
		}
		for j := range pred[i] {
			if pred[i][j] != ref[i][j] {
				continue outer
			}
		}
		matches++
	}
	return float64(matches) / float64(len(pred))
}
