package normalize

import "github.com/okian/playsketch/internal/domain/model"

// Geometry describes the target canvas.
type Geometry struct {
	Width          float64
	Height         float64
	LOSY           float64 // canvas Y the line of scrimmage is anchored to
	CenterX        float64
	LinemanSpacing float64
	Margin         float64 // keep-out band for skill players
}

// DefaultGeometry is the editor's standard canvas.
func DefaultGeometry() Geometry {
	return Geometry{
		Width:          950,
		Height:         450,
		LOSY:           290,
		CenterX:        475,
		LinemanSpacing: 38,
		Margin:         20,
	}
}

// lineSlot is one canonical offensive line position.
type lineSlot struct {
	key    model.Position
	label  string
	offset float64 // multiples of LinemanSpacing from CenterX
}

// lineSlots are ordered left to right.
var lineSlots = [5]lineSlot{
	{key: model.PositionLT, label: "T", offset: -2},
	{key: model.PositionLG, label: "G", offset: -1},
	{key: model.PositionC, label: "C", offset: 0},
	{key: model.PositionRG, label: "G", offset: 1},
	{key: model.PositionRT, label: "T", offset: 2},
}

func (g Geometry) slotPoint(s lineSlot) model.Point {
	return model.Point{X: g.CenterX + s.offset*g.LinemanSpacing, Y: g.LOSY}
}

// inside pulls p into the band Margin away from every edge.
func (g Geometry) inside(p model.Point) model.Point {
	return model.Point{
		X: clamp(p.X, g.Margin, g.Width-g.Margin),
		Y: clamp(p.Y, g.Margin, g.Height-g.Margin),
	}
}

// scaled maps spots laid out on the default canvas onto g.
func (g Geometry) scaled(spots map[model.Position]model.Point) map[model.Position]model.Point {
	d := DefaultGeometry()
	sx, sy := g.Width/d.Width, g.Height/d.Height
	out := make(map[model.Position]model.Point, len(spots))
	for k, p := range spots {
		out[k] = model.Point{X: p.X * sx, Y: p.Y * sy}
	}
	return out
}

// DefaultPlacements are the fallback spots for doubtful skill players on the
// default canvas. Other geometries get them scaled proportionally.
func DefaultPlacements() map[model.Position]model.Point {
	return map[model.Position]model.Point{
		model.PositionQB: {X: 510, Y: 375},
		model.PositionRB: {X: 420, Y: 390},
		model.PositionX:  {X: 80, Y: 290},
		model.PositionY:  {X: 870, Y: 290},
		model.PositionZ:  {X: 710, Y: 330},
		model.PositionH:  {X: 750, Y: 337},
		model.PositionF:  {X: 350, Y: 390},
	}
}
