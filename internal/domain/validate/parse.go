// Package validate turns the model's free-text reply into a sanitized
// AnalysisResult and decides whether that result is usable.
//
// Parsing only fails when no JSON object can be found. Everything else
// degrades: bad entries are dropped, numbers are clamped, unknown labels
// and styles fall back to defaults.
package validate

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/okian/playsketch/internal/domain/model"
	"github.com/okian/playsketch/pkg/errs"
)

// Defaults for Parse.
const (
	DefaultNotesMaxLength = 500
	defaultConfidence     = 0.5
)

var fenced = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)```")

// Option applies a configuration option to Parse.
type Option func(*parser)

// WithNotesMaxLength caps the notes length in runes.
func WithNotesMaxLength(n int) Option {
	return func(p *parser) {
		if n > 0 {
			p.notesMax = n
		}
	}
}

type parser struct {
	notesMax int
}

// Parse extracts and sanitizes the analysis from raw. It returns ErrParse
// when raw holds no JSON object.
func Parse(raw string, opts ...Option) (model.AnalysisResult, error) {
	const op = "validate.parse"

	p := parser{notesMax: DefaultNotesMaxLength}
	for _, opt := range opts {
		opt(&p)
	}

	obj, err := isolate(raw)
	if err != nil {
		return model.AnalysisResult{}, errs.WrapKind(op, ErrParse, err)
	}

	result := model.AnalysisResult{
		Players: p.players(obj),
	}
	result.Routes = p.routes(obj, len(result.Players))
	result.LineOfScrimmage = p.los(obj)
	result.Notes = p.notes(obj)
	return result, nil
}

// isolate finds the JSON object in raw: a fenced block first, then the whole
// text, then the span from the first '{' to the last '}'.
func isolate(raw string) (map[string]any, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, errors.New("empty reply")
	}

	var candidates []string
	if m := fenced.FindStringSubmatch(text); m != nil {
		candidates = append(candidates, strings.TrimSpace(m[1]))
	}
	candidates = append(candidates, text)
	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
		candidates = append(candidates, text[start:end+1])
	}

	var lastErr error
	for _, c := range candidates {
		obj, err := decodeObject(c)
		if err == nil {
			return obj, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func decodeObject(s string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errors.New("payload is not an object")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after payload")
	}
	return obj, nil
}

func (p parser) players(obj map[string]any) []model.DetectedPlayer {
	list, _ := field(obj, "players").([]any)
	out := make([]model.DetectedPlayer, 0, len(list))
	for _, item := range list {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		x, okX := number(entry["x"])
		y, okY := number(entry["y"])
		if !okX || !okY {
			continue
		}
		label, _ := field(entry, "label", "suggestedLabel").(string)
		out = append(out, model.DetectedPlayer{
			X:          clamp(x, 0, 100),
			Y:          clamp(y, 0, 100),
			Label:      model.ParsePosition(label),
			Confidence: confidence(entry["confidence"]),
			IsLineman:  truthy(field(entry, "isLineman", "isOLine")),
		})
	}
	return out
}

func (p parser) routes(obj map[string]any, playerCount int) []model.DetectedRoute {
	list, _ := field(obj, "routes").([]any)
	out := make([]model.DetectedRoute, 0, len(list))
	for _, item := range list {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		idx, ok := number(field(entry, "originPlayerIndex", "fromPlayerIndex"))
		if !ok || idx != math.Trunc(idx) || idx < 0 || idx >= float64(playerCount) {
			continue
		}
		points := routePoints(entry["points"])
		if len(points) == 0 {
			continue
		}
		style, _ := entry["style"].(string)
		term, _ := field(entry, "terminator", "endType").(string)
		out = append(out, model.DetectedRoute{
			OriginPlayerIndex: int(idx),
			Points:            points,
			Style:             model.ParseRouteStyle(style),
			Terminator:        model.ParseTerminator(term),
			Confidence:        confidence(entry["confidence"]),
		})
	}
	return out
}

func routePoints(v any) []model.Point {
	list, _ := v.([]any)
	var out []model.Point
	for _, item := range list {
		pt, ok := item.(map[string]any)
		if !ok {
			continue
		}
		x, okX := number(pt["x"])
		y, okY := number(pt["y"])
		if !okX || !okY {
			continue
		}
		out = append(out, model.Point{X: clamp(x, 0, 100), Y: clamp(y, 0, 100)})
	}
	return out
}

func (p parser) los(obj map[string]any) *model.LOSHint {
	entry, ok := obj["lineOfScrimmage"].(map[string]any)
	if !ok {
		return nil
	}
	y, ok := number(entry["y"])
	if !ok {
		return nil
	}
	return &model.LOSHint{Y: clamp(y, 0, 100), Confidence: confidence(entry["confidence"])}
}

func (p parser) notes(obj map[string]any) string {
	s, _ := field(obj, "notes", "detectionNotes").(string)
	if utf8.RuneCountInString(s) <= p.notesMax {
		return s
	}
	return string([]rune(s)[:p.notesMax])
}

// field returns the first present key's value.
func field(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

// number accepts JSON numbers and numeric strings. NaN and infinities are rejected.
func number(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	case float64:
		f = t
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func confidence(v any) float64 {
	c, ok := number(v)
	if !ok {
		return defaultConfidence
	}
	return clamp(c, 0, 1)
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case json.Number, float64:
		n, ok := number(t)
		return ok && n != 0
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		return err == nil && b
	default:
		return false
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
