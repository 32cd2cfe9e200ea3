package validate_test

import (
	"errors"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/playsketch/internal/domain/model"
	"github.com/okian/playsketch/internal/domain/validate"
)

func TestParse_PayloadIsolation(t *testing.T) {
	Convey("Given replies wrapping the same object differently", t, func() {
		const payload = `{"players":[{"x":50,"y":70,"label":"qb","confidence":0.9,"isLineman":false}]}`

		replies := map[string]string{
			"bare":         payload,
			"fenced json":  "Here you go:\n```json\n" + payload + "\n```\nGood luck!",
			"fenced plain": "```\n" + payload + "\n```",
			"prose around": "Sure. " + payload + " Let me know.",
			"unclosed fence": "```json\n" + payload,
		}

		for name, raw := range replies {
			res, err := validate.Parse(raw)
			Convey("Then the "+name+" reply yields the player", func() {
				So(err, ShouldBeNil)
				So(res.Players, ShouldHaveLength, 1)
				So(res.Players[0].Label, ShouldEqual, model.PositionQB)
			})
		}
	})

	Convey("Given replies with no object", t, func() {
		for _, raw := range []string{"", "   ", "I cannot read this image.", "[1,2,3]", "null", "{not json}", `{"players": [}`} {
			_, err := validate.Parse(raw)
			So(errors.Is(err, validate.ErrParse), ShouldBeTrue)
		}
	})

	Convey("Given an empty object", t, func() {
		res, err := validate.Parse("{}")

		Convey("Then an empty result is returned without error", func() {
			So(err, ShouldBeNil)
			So(res.Players, ShouldBeEmpty)
			So(res.Routes, ShouldBeEmpty)
			So(res.LineOfScrimmage, ShouldBeNil)
			So(res.Notes, ShouldEqual, "")
		})
	})
}

func TestParse_Players(t *testing.T) {
	Convey("Given player entries of mixed quality", t, func() {
		raw := `{"players":[
			{"x": 120, "y": -5, "label": "wr", "confidence": 3, "isLineman": "true"},
			{"x": "40.5", "y": "60", "suggestedLabel": "Mike", "isOLine": 1},
			{"x": 10},
			{"x": "left", "y": 20},
			"not an object",
			{"x": 30, "y": 30, "label": 7, "confidence": "high", "isLineman": "yes"},
			{"x": 31, "y": 31, "confidence": -1, "isLineman": 0}
		]}`
		res, err := validate.Parse(raw)
		So(err, ShouldBeNil)

		Convey("Then entries without numeric coordinates are dropped", func() {
			So(res.Players, ShouldHaveLength, 4)
		})

		Convey("Then coordinates and confidences are clamped", func() {
			p := res.Players[0]
			So(p.X, ShouldEqual, 100)
			So(p.Y, ShouldEqual, 0)
			So(p.Confidence, ShouldEqual, 1)
			So(p.Label, ShouldEqual, model.PositionWR)
			So(p.IsLineman, ShouldBeTrue)
			So(res.Players[3].Confidence, ShouldEqual, 0)
		})

		Convey("Then aliases and numeric strings are accepted", func() {
			p := res.Players[1]
			So(p.X, ShouldEqual, 40.5)
			So(p.Y, ShouldEqual, 60)
			So(p.Label, ShouldEqual, model.PositionUnknown)
			So(p.Confidence, ShouldEqual, 0.5)
			So(p.IsLineman, ShouldBeTrue)
		})

		Convey("Then unusable labels, confidences and flags fall back", func() {
			p := res.Players[2]
			So(p.Label, ShouldEqual, model.PositionUnknown)
			So(p.Confidence, ShouldEqual, 0.5)
			So(p.IsLineman, ShouldBeFalse)
			So(res.Players[3].IsLineman, ShouldBeFalse)
		})
	})
}

func TestParse_Routes(t *testing.T) {
	Convey("Given three players and routes with dangling origins", t, func() {
		raw := `{
			"players": [
				{"x": 10, "y": 60, "label": "X"},
				{"x": 50, "y": 70, "label": "QB"},
				{"x": 90, "y": 60, "label": "Z"}
			],
			"routes": [
				{"originPlayerIndex": 0, "points": [{"x": 10, "y": 20}], "style": "DASHED", "terminator": "dot", "confidence": 0.7},
				{"originPlayerIndex": 7, "points": [{"x": 50, "y": 20}]},
				{"fromPlayerIndex": 2, "points": [{"x": 150, "y": -20}, {"x": "bad"}], "style": "wavy", "endType": "none"},
				{"originPlayerIndex": 1.5, "points": [{"x": 1, "y": 1}]},
				{"originPlayerIndex": -1, "points": [{"x": 1, "y": 1}]},
				{"originPlayerIndex": 1, "points": []},
				{"originPlayerIndex": 1, "points": [{"x": "a", "y": 1}]},
				{"points": [{"x": 1, "y": 1}]}
			]
		}`
		res, err := validate.Parse(raw)

		Convey("Then the out-of-range route is dropped and valid routes remain", func() {
			So(err, ShouldBeNil)
			So(res.Routes, ShouldHaveLength, 2)
			So(res.Routes[0].OriginPlayerIndex, ShouldEqual, 0)
			So(res.Routes[1].OriginPlayerIndex, ShouldEqual, 2)
		})

		Convey("Then styles and terminators are parsed with fallbacks", func() {
			So(res.Routes[0].Style, ShouldEqual, model.StyleDashed)
			So(res.Routes[0].Terminator, ShouldEqual, model.TerminatorDot)
			So(res.Routes[0].Confidence, ShouldEqual, 0.7)
			So(res.Routes[1].Style, ShouldEqual, model.StyleSolid)
			So(res.Routes[1].Terminator, ShouldEqual, model.TerminatorNone)
			So(res.Routes[1].Confidence, ShouldEqual, 0.5)
		})

		Convey("Then invalid points are skipped and valid ones clamped", func() {
			So(res.Routes[1].Points, ShouldResemble, []model.Point{{X: 100, Y: 0}})
		})
	})

	Convey("Given routes indexing players that were dropped", t, func() {
		raw := `{
			"players": [{"x": 10, "y": 60}, {"y": 70}],
			"routes": [{"originPlayerIndex": 1, "points": [{"x": 1, "y": 1}]}]
		}`
		res, err := validate.Parse(raw)

		Convey("Then the index is checked against the validated list", func() {
			So(err, ShouldBeNil)
			So(res.Players, ShouldHaveLength, 1)
			So(res.Routes, ShouldBeEmpty)
		})
	})
}

func TestParse_LOSAndNotes(t *testing.T) {
	Convey("Given line of scrimmage hints", t, func() {
		res, _ := validate.Parse(`{"lineOfScrimmage": {"y": 65, "confidence": 0.8}}`)
		So(res.LineOfScrimmage, ShouldResemble, &model.LOSHint{Y: 65, Confidence: 0.8})

		res, _ = validate.Parse(`{"lineOfScrimmage": {"y": 140}}`)
		So(res.LineOfScrimmage, ShouldResemble, &model.LOSHint{Y: 100, Confidence: 0.5})

		res, _ = validate.Parse(`{"lineOfScrimmage": {"confidence": 0.9}}`)
		So(res.LineOfScrimmage, ShouldBeNil)

		res, _ = validate.Parse(`{"lineOfScrimmage": null}`)
		So(res.LineOfScrimmage, ShouldBeNil)

		res, _ = validate.Parse(`{"lineOfScrimmage": 60}`)
		So(res.LineOfScrimmage, ShouldBeNil)
	})

	Convey("Given notes", t, func() {
		res, _ := validate.Parse(`{"detectionNotes": "photo is blurry"}`)
		So(res.Notes, ShouldEqual, "photo is blurry")

		res, _ = validate.Parse(`{"notes": 42}`)
		So(res.Notes, ShouldEqual, "")

		Convey("When they exceed the cap", func() {
			long := strings.Repeat("é", 600)
			res, _ := validate.Parse(`{"notes": "` + long + `"}`)
			So([]rune(res.Notes), ShouldHaveLength, validate.DefaultNotesMaxLength)

			res, _ = validate.Parse(`{"notes": "abcdef"}`, validate.WithNotesMaxLength(3))
			So(res.Notes, ShouldEqual, "abc")
		})
	})
}
