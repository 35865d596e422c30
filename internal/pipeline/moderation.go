package pipeline

import (
	"context"
)

// Label is one unsafe-content category reported by the classifier.
type Label struct {
	Name       string
	Confidence float32
}

// Verdict is the gate's decision for a single piece of content. It is
// consumed immediately and never persisted.
type Verdict struct {
	Flagged bool
	Labels  []Label
}

// Classifier scores image bytes against unsafe-content categories. Labels
// below minConfidence are not returned.
type Classifier interface {
	Detect(ctx context.Context, image []byte, minConfidence float32) ([]Label, error)
}

// GatePolicy states which media kinds are screened. Skipping a kind is an
// explicit deployment decision, never an accident of the code path.
type GatePolicy struct {
	ModerateImages bool
	ModerateVideos bool
	MinConfidence  float32
}

// Gate blocks release of generated content the classifier flags at or above
// the configured confidence. A missing or failing classifier fails closed:
// content is withheld with KindModerationError, never released unchecked.
type Gate struct {
	classifier Classifier
	policy     GatePolicy
}

// NewGate builds a gate with the given policy. MinConfidence zero is a valid
// threshold (every reported label flags); only negatives are rejected.
func NewGate(classifier Classifier, policy GatePolicy) *Gate {
	if policy.MinConfidence < 0 {
		policy.MinConfidence = 0
	}
	return &Gate{classifier: classifier, policy: policy}
}

// Applies reports whether this operation's output must be screened.
func (g *Gate) Applies(op Operation) bool {
	if g == nil {
		return false
	}
	if op == OpTextToImage {
		return g.policy.ModerateImages
	}
	return g.policy.ModerateVideos
}

// Screen classifies every output's bytes and merges the labels into one
// verdict. Any label at or above the threshold flags the whole result.
func (g *Gate) Screen(ctx context.Context, outputs [][]byte) (*Verdict, error) {
	if g.classifier == nil {
		return nil, Errf(KindModerationError, "moderation required but no classifier is configured")
	}
	verdict := &Verdict{}
	for _, data := range outputs {
		labels, err := g.classifier.Detect(ctx, data, g.policy.MinConfidence)
		if err != nil {
			return nil, WrapErr(KindModerationError, err, "moderation service call failed")
		}
		for _, label := range labels {
			if label.Confidence >= g.policy.MinConfidence {
				verdict.Flagged = true
				verdict.Labels = append(verdict.Labels, label)
			}
		}
	}
	return verdict, nil
}
