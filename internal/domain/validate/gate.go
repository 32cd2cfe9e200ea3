package validate

import "github.com/okian/playsketch/internal/domain/model"

// DefaultMinMeanConfidence is the lowest acceptable mean player confidence.
const DefaultMinMeanConfidence = 0.3

// Gate rejection reasons.
const (
	ReasonNoPlayers      = "no players detected"
	ReasonLowConfidence  = "confidence too low, retake photo"
	ReasonNoSkillPlayers = "no skill players detected"
)

// Verdict is the gate's decision. Reason is empty when Usable.
type Verdict struct {
	Usable bool
	Reason string
}

// GateOption applies a configuration option to the Gate.
type GateOption func(*Gate)

// WithMinMeanConfidence sets the mean confidence floor.
func WithMinMeanConfidence(c float64) GateOption {
	return func(g *Gate) {
		if c >= 0 && c <= 1 {
			g.minMean = c
		}
	}
}

// Gate rejects analyses too poor to normalize.
type Gate struct {
	minMean float64
}

// NewGate creates a Gate.
func NewGate(opts ...GateOption) *Gate {
	g := &Gate{minMean: DefaultMinMeanConfidence}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Check applies the rules in order and stops at the first failure.
func (g *Gate) Check(result model.AnalysisResult) Verdict {
	if len(result.Players) == 0 {
		return Verdict{Reason: ReasonNoPlayers}
	}

	var sum float64
	for _, p := range result.Players {
		sum += p.Confidence
	}
	if sum/float64(len(result.Players)) < g.minMean {
		return Verdict{Reason: ReasonLowConfidence}
	}

	if result.SkillPlayers() == 0 {
		return Verdict{Reason: ReasonNoSkillPlayers}
	}
	return Verdict{Usable: true}
}
