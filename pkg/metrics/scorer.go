package metrics

// EvalPrediction pairs model logits with the reference labels of the split
// they were produced on. ClassIDs carries single-label references,
// LabelVectors carries multi-hot multi-label references; only one of the two
// is consulted depending on the scorer mode.
type EvalPrediction struct {
	Logits       [][]float64 `json:"logits"`
	ClassIDs     []int       `json:"class_ids,omitempty"`
	LabelVectors [][]int     `json:"label_vectors,omitempty"`
}

// Scorer decodes logits and computes metrics for one problem setting.
// It is deterministic: the same prediction always yields the same scores.
type Scorer struct {
	MultiLabel bool
	NumLabels  int
	Threshold  float64
}

// NewScorer returns a scorer for the given mode with the default decision
// threshold.
func NewScorer(multiLabel bool, numLabels int) Scorer {
	return Scorer{
		MultiLabel: multiLabel,
		NumLabels:  numLabels,
		Threshold:  DefaultThreshold,
	}
}

// Objective is the search objective: micro-F1 over the decoded predictions.
func (s Scorer) Objective(ep EvalPrediction) float64 {
	if s.MultiLabel {
		return MicroF1Multilabel(DecodeMultiLabel(ep.Logits, s.Threshold), ep.LabelVectors)
	}
	return MicroF1Multiclass(DecodeSingleLabel(ep.Logits), ep.ClassIDs, s.NumLabels)
}

// Compute returns the full evaluation report.
func (s Scorer) Compute(ep EvalPrediction) Report {
	if s.MultiLabel {
		decoded := DecodeMultiLabel(ep.Logits, s.Threshold)
		return Report{
			F1:       MicroF1Multilabel(decoded, ep.LabelVectors),
			F1Macro:  MacroF1Multilabel(decoded, ep.LabelVectors),
			Accuracy: AccuracyMultilabel(decoded, ep.LabelVectors),
		}
	}

	decoded := DecodeSingleLabel(ep.Logits)
	return Report{
		F1:       MicroF1Multiclass(decoded, ep.ClassIDs, s.NumLabels),
		F1Macro:  MacroF1Multiclass(decoded, ep.ClassIDs, s.NumLabels),
		Accuracy: AccuracyMulticlass(decoded, ep.ClassIDs),
	}
}
