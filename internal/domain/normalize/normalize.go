// Package normalize maps a validated analysis onto canvas elements.
//
// Vertical coordinates are shifted so the line of scrimmage lands on the
// canvas LOS row; horizontal coordinates scale across the full width.
// Linemen are snapped to five canonical slots rather than drawn where they
// were detected.
package normalize

import (
	"fmt"
	"math"
	"sort"

	"github.com/okian/playsketch/internal/domain/model"
)

const (
	elementColor = "#000000"
	strokeWidth  = 3
)

// Normalizer is safe for concurrent use; it holds only configuration.
type Normalizer struct {
	geo        Geometry
	placements map[model.Position]model.Point
	// ownPlacements is set when placements are given in the target geometry.
	ownPlacements bool

	defaultLOS   float64
	losWarn      float64
	skillDefault float64
	skillWarn    float64
	routeWarn    float64
}

// New creates a Normalizer with the standard canvas.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		geo:          DefaultGeometry(),
		defaultLOS:   DefaultLOSPercent,
		losWarn:      DefaultLOSConfidenceThreshold,
		skillDefault: DefaultSkillDefaultThreshold,
		skillWarn:    DefaultLowConfidenceWarning,
		routeWarn:    DefaultRouteConfidenceWarning,
	}
	for _, opt := range opts {
		opt(n)
	}
	if !n.ownPlacements {
		n.placements = n.geo.scaled(DefaultPlacements())
	}
	return n
}

// transform converts percent coordinates to canvas units for one analysis.
type transform struct {
	width, height, yOffset float64
}

func (t transform) x(pct float64) float64 { return pct / 100 * t.width }
func (t transform) y(pct float64) float64 { return pct/100*t.height + t.yOffset }

// Normalize never fails; anything doubtful becomes a warning.
func (n *Normalizer) Normalize(a model.AnalysisResult) model.PipelineOutput {
	out := model.PipelineOutput{
		Players:  make([]model.NormalizedPlayer, 0, len(lineSlots)+len(a.Players)),
		Routes:   make([]model.NormalizedRoute, 0, len(a.Routes)),
		Warnings: []string{},
	}

	losPct, losConf := n.defaultLOS, absentLOSConfidence
	if a.LineOfScrimmage != nil {
		losPct, losConf = a.LineOfScrimmage.Y, a.LineOfScrimmage.Confidence
	}
	if losConf < n.losWarn {
		out.Warnings = append(out.Warnings, "LOS detection uncertain; positions may need adjustment.")
	}
	tf := transform{
		width:   n.geo.Width,
		height:  n.geo.Height,
		yOffset: n.geo.LOSY - losPct/100*n.geo.Height,
	}

	var linemen, skills []model.DetectedPlayer
	for _, p := range a.Players {
		if p.IsLineman {
			linemen = append(linemen, p)
		} else {
			skills = append(skills, p)
		}
	}

	out.Players = append(out.Players, n.line(linemen)...)
	if len(linemen) != len(lineSlots) {
		out.Warnings = append(out.Warnings, fmt.Sprintf(
			"Detected %d offensive linemen instead of %d; using standard line positions.",
			len(linemen), len(lineSlots)))
	}

	for i, p := range skills {
		player, warnings := n.skill(i, p, tf)
		out.Players = append(out.Players, player)
		out.Warnings = append(out.Warnings, warnings...)
	}

	for i, r := range a.Routes {
		if r.OriginPlayerIndex < 0 || r.OriginPlayerIndex >= len(a.Players) {
			out.Warnings = append(out.Warnings, fmt.Sprintf("Route %d references an invalid player index.", i+1))
			continue
		}
		out.Routes = append(out.Routes, n.route(i, r, a.Players[r.OriginPlayerIndex], tf))
		if r.Confidence < n.routeWarn {
			out.Warnings = append(out.Warnings, fmt.Sprintf(
				"Route %d detection confidence is low (%d%%).", i+1, percent(r.Confidence)))
		}
	}

	if a.Notes != "" {
		out.Warnings = append(out.Warnings, a.Notes)
	}
	return out
}

// line fills the five canonical slots left to right from the detected
// linemen sorted by X. Slots beyond the detected count carry no confidence.
func (n *Normalizer) line(linemen []model.DetectedPlayer) []model.NormalizedPlayer {
	sorted := append([]model.DetectedPlayer(nil), linemen...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

	out := make([]model.NormalizedPlayer, 0, len(lineSlots))
	for i, slot := range lineSlots {
		var conf *float64
		if i < len(sorted) {
			c := sorted[i].Confidence
			conf = &c
		}
		out = append(out, model.NormalizedPlayer{
			ID:          fmt.Sprintf("oline-%d", i),
			Type:        model.ElementPlayer,
			Points:      []model.Point{n.geo.slotPoint(slot)},
			Color:       elementColor,
			Label:       slot.label,
			Shape:       model.ShapeTextOnly,
			Variant:     model.VariantFilled,
			PositionKey: string(slot.key),
			GroupID:     model.GroupOffensiveLine,
			Confidence:  conf,
		})
	}
	return out
}

func (n *Normalizer) skill(i int, p model.DetectedPlayer, tf transform) (model.NormalizedPlayer, []string) {
	var warnings []string
	label := p.Label.Display()

	pt, hasDefault := n.placements[p.Label]
	if p.Confidence < n.skillDefault && hasDefault {
		warnings = append(warnings, fmt.Sprintf("Low confidence for %s position; using default placement.", label))
	} else {
		pt = model.Point{X: tf.x(p.X), Y: tf.y(p.Y)}
	}
	pt = n.geo.inside(pt)
	if p.Confidence < n.skillWarn {
		warnings = append(warnings, fmt.Sprintf("%s detection confidence is low (%d%%).", label, percent(p.Confidence)))
	}

	conf := p.Confidence
	return model.NormalizedPlayer{
		ID:          fmt.Sprintf("skill-%d", i),
		Type:        model.ElementPlayer,
		Points:      []model.Point{pt},
		Color:       elementColor,
		Label:       label,
		Shape:       model.ShapeCircle,
		Variant:     model.VariantFilled,
		PositionKey: label,
		Confidence:  &conf,
	}, warnings
}

// route starts at the origin player's detected position, not at any default
// placement it may have been moved to.
func (n *Normalizer) route(i int, r model.DetectedRoute, origin model.DetectedPlayer, tf transform) model.NormalizedRoute {
	points := make([]model.Point, 0, len(r.Points)+1)
	points = append(points, n.onCanvas(tf, origin.X, origin.Y))
	for _, p := range r.Points {
		points = append(points, n.onCanvas(tf, p.X, p.Y))
	}
	return model.NormalizedRoute{
		ID:          fmt.Sprintf("route-%d", i),
		Type:        model.ElementPolyline,
		Points:      points,
		Color:       elementColor,
		StrokeWidth: strokeWidth,
		Style:       r.Style,
		Terminator:  r.Terminator,
		Confidence:  r.Confidence,
	}
}

func (n *Normalizer) onCanvas(tf transform, xPct, yPct float64) model.Point {
	return model.Point{
		X: clamp(tf.x(xPct), 0, n.geo.Width),
		Y: clamp(tf.y(yPct), 0, n.geo.Height),
	}
}

func percent(c float64) int { return int(math.Round(c * 100)) }

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
