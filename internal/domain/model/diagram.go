package model

// Point is a 2D coordinate. Detected entities use percent of the image,
// normalized entities use canvas units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DetectedPlayer is a sanitized player marker in percent coordinates.
type DetectedPlayer struct {
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
	Label      Position `json:"label"`
	Confidence float64  `json:"confidence"`
	IsLineman  bool     `json:"isLineman"`
}

// DetectedRoute is a sanitized route. OriginPlayerIndex indexes into
// AnalysisResult.Players.
type DetectedRoute struct {
	OriginPlayerIndex int        `json:"originPlayerIndex"`
	Points            []Point    `json:"points"`
	Style             RouteStyle `json:"style"`
	Terminator        Terminator `json:"terminator"`
	Confidence        float64    `json:"confidence"`
}

// LOSHint is the detected line of scrimmage, in percent of image height.
type LOSHint struct {
	Y          float64 `json:"y"`
	Confidence float64 `json:"confidence"`
}

// AnalysisResult is the validated reading of a diagram.
type AnalysisResult struct {
	Players         []DetectedPlayer `json:"players"`
	Routes          []DetectedRoute  `json:"routes"`
	LineOfScrimmage *LOSHint         `json:"lineOfScrimmage"`
	Notes           string           `json:"notes"`
}

// SkillPlayers returns the number of players not flagged as linemen.
func (a AnalysisResult) SkillPlayers() int {
	n := 0
	for _, p := range a.Players {
		if !p.IsLineman {
			n++
		}
	}
	return n
}

// Marker shapes and variants understood by the diagram editor.
const (
	ShapeCircle   = "circle"
	ShapeSquare   = "square"
	ShapeTextOnly = "text-only"

	VariantFilled  = "filled"
	VariantOutline = "outline"

	ElementPlayer   = "player"
	ElementPolyline = "polyline"

	GroupOffensiveLine = "offensive-line"
)

// NormalizedPlayer is a canvas-ready player element.
type NormalizedPlayer struct {
	ID          string   `json:"id"`
	Type        string   `json:"type"`
	Points      []Point  `json:"points"`
	Color       string   `json:"color"`
	Label       string   `json:"label"`
	Shape       string   `json:"shape"`
	Variant     string   `json:"variant"`
	PositionKey string   `json:"positionKey,omitempty"`
	GroupID     string   `json:"groupId,omitempty"`
	Confidence  *float64 `json:"detectionConfidence,omitempty"`
}

// NormalizedRoute is a canvas-ready polyline. Points[0] is the origin
// player's position.
type NormalizedRoute struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	Points      []Point    `json:"points"`
	Color       string     `json:"color"`
	StrokeWidth float64    `json:"strokeWidth"`
	Style       RouteStyle `json:"style"`
	Terminator  Terminator `json:"terminator"`
	Confidence  float64    `json:"detectionConfidence"`
}

// PipelineOutput is what the pipeline hands back to the caller.
type PipelineOutput struct {
	Players  []NormalizedPlayer `json:"players"`
	Routes   []NormalizedRoute  `json:"routes"`
	Warnings []string           `json:"warnings"`
}
