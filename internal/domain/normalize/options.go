package normalize

import "github.com/okian/playsketch/internal/domain/model"

// Default thresholds.
const (
	DefaultLOSPercent             = 60.0
	DefaultLOSConfidenceThreshold = 0.6
	DefaultSkillDefaultThreshold  = 0.5
	DefaultLowConfidenceWarning   = 0.6
	DefaultRouteConfidenceWarning = 0.6

	// absentLOSConfidence is assumed when the model gave no hint.
	absentLOSConfidence = 0.5
)

// Option applies a configuration option to the Normalizer.
type Option func(*Normalizer)

// WithGeometry replaces the canvas geometry. Non-positive sizes are ignored.
func WithGeometry(g Geometry) Option {
	return func(n *Normalizer) {
		if g.Width > 0 && g.Height > 0 {
			n.geo = g
		}
	}
}

// WithPlacements replaces the skill player fallback spots. They are taken as
// coordinates on the configured canvas and still kept inside its margin.
func WithPlacements(p map[model.Position]model.Point) Option {
	return func(n *Normalizer) {
		if p != nil {
			n.placements = p
			n.ownPlacements = true
		}
	}
}

// WithDefaultLOSPercent sets the LOS used when the model gave none.
func WithDefaultLOSPercent(pct float64) Option {
	return func(n *Normalizer) {
		if pct >= 0 && pct <= 100 {
			n.defaultLOS = pct
		}
	}
}

// WithLOSConfidenceThreshold sets the LOS confidence below which a warning is added.
func WithLOSConfidenceThreshold(c float64) Option {
	return func(n *Normalizer) { n.losWarn = unit(c, n.losWarn) }
}

// WithSkillDefaultThreshold sets the confidence below which a skill player
// with a known label is moved to its default spot.
func WithSkillDefaultThreshold(c float64) Option {
	return func(n *Normalizer) { n.skillDefault = unit(c, n.skillDefault) }
}

// WithLowConfidenceWarning sets the skill confidence below which an advisory is added.
func WithLowConfidenceWarning(c float64) Option {
	return func(n *Normalizer) { n.skillWarn = unit(c, n.skillWarn) }
}

// WithRouteConfidenceThreshold sets the route confidence below which a warning is added.
func WithRouteConfidenceThreshold(c float64) Option {
	return func(n *Normalizer) { n.routeWarn = unit(c, n.routeWarn) }
}

func unit(v, fallback float64) float64 {
	if v < 0 || v > 1 {
		return fallback
	}
	return v
}
