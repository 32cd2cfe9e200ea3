// Package model contains domain models passed between pipeline stages.
package model

import "strings"

// Position is a player position label from the closed diagram vocabulary.
type Position string

// Known positions. PositionUnknown is the fallback for anything else.
const (
	PositionQB      Position = "QB"
	PositionRB      Position = "RB"
	PositionFB      Position = "FB"
	PositionX       Position = "X"
	PositionY       Position = "Y"
	PositionZ       Position = "Z"
	PositionH       Position = "H"
	PositionA       Position = "A"
	PositionF       Position = "F"
	PositionT       Position = "T"
	PositionG       Position = "G"
	PositionC       Position = "C"
	PositionLT      Position = "LT"
	PositionLG      Position = "LG"
	PositionRG      Position = "RG"
	PositionRT      Position = "RT"
	PositionWR      Position = "WR"
	PositionTE      Position = "TE"
	PositionHB      Position = "HB"
	PositionUnknown Position = "unknown"
)

var positions = map[Position]struct{}{
	PositionQB: {}, PositionRB: {}, PositionFB: {}, PositionX: {}, PositionY: {},
	PositionZ: {}, PositionH: {}, PositionA: {}, PositionF: {}, PositionT: {},
	PositionG: {}, PositionC: {}, PositionLT: {}, PositionLG: {}, PositionRG: {},
	PositionRT: {}, PositionWR: {}, PositionTE: {}, PositionHB: {},
}

// ParsePosition maps free text onto the vocabulary (case-insensitive).
func ParsePosition(s string) Position {
	p := Position(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := positions[p]; ok {
		return p
	}
	return PositionUnknown
}

// Display returns the marker text drawn on the canvas.
func (p Position) Display() string {
	if p == PositionUnknown || p == "" {
		return "?"
	}
	return string(p)
}

// RouteStyle is the stroke style of a route.
type RouteStyle string

const (
	StyleSolid  RouteStyle = "solid"
	StyleDashed RouteStyle = "dashed"
	StyleZigzag RouteStyle = "zigzag"
)

// ParseRouteStyle falls back to StyleSolid.
func ParseRouteStyle(s string) RouteStyle {
	switch st := RouteStyle(strings.ToLower(strings.TrimSpace(s))); st {
	case StyleSolid, StyleDashed, StyleZigzag:
		return st
	default:
		return StyleSolid
	}
}

// Terminator is the end marker of a route.
type Terminator string

const (
	TerminatorArrow Terminator = "arrow"
	TerminatorDot   Terminator = "dot"
	TerminatorNone  Terminator = "none"
)

// ParseTerminator falls back to TerminatorArrow.
func ParseTerminator(s string) Terminator {
	switch t := Terminator(strings.ToLower(strings.TrimSpace(s))); t {
	case TerminatorArrow, TerminatorDot, TerminatorNone:
		return t
	default:
		return TerminatorArrow
	}
}
