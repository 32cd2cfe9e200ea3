package validate_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/playsketch/internal/domain/model"
	"github.com/okian/playsketch/internal/domain/validate"
)

func lineman(conf float64) model.DetectedPlayer {
	return model.DetectedPlayer{X: 50, Y: 60, Label: model.PositionC, Confidence: conf, IsLineman: true}
}

func skill(conf float64) model.DetectedPlayer {
	return model.DetectedPlayer{X: 50, Y: 75, Label: model.PositionQB, Confidence: conf}
}

func TestGate_Check(t *testing.T) {
	gate := validate.NewGate()

	Convey("Given an analysis with zero players", t, func() {
		v := gate.Check(model.AnalysisResult{})

		Convey("Then it is unusable with the no-players reason", func() {
			So(v.Usable, ShouldBeFalse)
			So(v.Reason, ShouldEqual, "no players detected")
		})
	})

	Convey("Given one confident lineman, four doubtful ones and no skill players", t, func() {
		v := gate.Check(model.AnalysisResult{Players: []model.DetectedPlayer{
			lineman(0.9), lineman(0.2), lineman(0.2), lineman(0.2), lineman(0.2),
		}})

		Convey("Then the skill rule rejects it even though players exist", func() {
			So(v.Usable, ShouldBeFalse)
			So(v.Reason, ShouldEqual, "no skill players detected")
		})
	})

	Convey("Given a mean confidence below the floor", t, func() {
		v := gate.Check(model.AnalysisResult{Players: []model.DetectedPlayer{
			skill(0.1), skill(0.2), lineman(0.5),
		}})

		Convey("Then the confidence rule fires before the skill rule", func() {
			So(v.Usable, ShouldBeFalse)
			So(v.Reason, ShouldEqual, "confidence too low, retake photo")
		})
	})

	Convey("Given a plausible analysis", t, func() {
		v := gate.Check(model.AnalysisResult{Players: []model.DetectedPlayer{
			lineman(0.8), skill(0.3),
		}})

		Convey("Then it is usable with no reason", func() {
			So(v.Usable, ShouldBeTrue)
			So(v.Reason, ShouldBeEmpty)
		})
	})

	Convey("Given a stricter gate", t, func() {
		strict := validate.NewGate(validate.WithMinMeanConfidence(0.9))
		v := strict.Check(model.AnalysisResult{Players: []model.DetectedPlayer{skill(0.8)}})
		So(v.Reason, ShouldEqual, validate.ReasonLowConfidence)

		Convey("When the option is out of range it is ignored", func() {
			g := validate.NewGate(validate.WithMinMeanConfidence(7))
			So(g.Check(model.AnalysisResult{Players: []model.DetectedPlayer{skill(0.35)}}).Usable, ShouldBeTrue)
		})
	})
}
