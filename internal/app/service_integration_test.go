package service_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	service "github.com/okian/playsketch/internal/app"
	"github.com/okian/playsketch/internal/adapters/imagefetch"
	"github.com/okian/playsketch/internal/adapters/repository"
	"github.com/okian/playsketch/internal/adapters/vision"
	"github.com/okian/playsketch/internal/domain/quota"
)

// messageReply wraps text in a Messages API response body.
func messageReply(text string) string {
	content, _ := json.Marshal([]map[string]string{{"type": "text", "text": text}})
	return fmt.Sprintf(`{
  "id": "msg_1",
  "type": "message",
  "role": "assistant",
  "model": "test-model",
  "content": %s,
  "stop_reason": "end_turn",
  "stop_sequence": null,
  "usage": {"input_tokens": 1, "output_tokens": 1}
}`, content)
}

func newBoardServer(t *testing.T, reply string) *httptest.Server {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatal(err)
	}
	board := buf.Bytes()

	mux := http.NewServeMux()
	mux.HandleFunc("/board.png", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(board)
	})
	mux.HandleFunc("/v1/messages", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, messageReply(reply))
	})
	return httptest.NewServer(mux)
}

func TestServiceIntegration(t *testing.T) {
	Convey("Given a service wired to real components", t, func() {
		srv := newBoardServer(t, usableReply)
		defer srv.Close()

		day := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
		store := repository.NewMemoryStore(repository.WithClock(func() time.Time { return day }))
		tracker := quota.New(store,
			quota.WithDailyLimit(2),
			quota.WithClock(func() time.Time { return day }),
		)
		svc := service.New(
			tracker,
			imagefetch.New(imagefetch.WithAllowPrivateHosts(true)),
			vision.New(vision.WithAPIKey("test-key"), vision.WithBaseURL(srv.URL+"/")),
			service.WithTimeout(10*time.Second),
		)
		req := service.Request{Caller: "coach", ImageReference: srv.URL + "/board.png", TenantID: "team-7"}
		ctx := context.Background()

		Convey("When analyzing the board until the daily ceiling", func() {
			first, err := svc.Analyze(ctx, req)
			So(err, ShouldBeNil)
			second, err := svc.Analyze(ctx, req)
			So(err, ShouldBeNil)
			_, err = svc.Analyze(ctx, req)

			Convey("Then each success reports the shrinking allowance", func() {
				So(first.Success, ShouldBeTrue)
				So(first.RateLimitRemaining.Daily, ShouldEqual, 1)
				So(second.RateLimitRemaining.Daily, ShouldEqual, 0)
				So(second.RateLimitRemaining.Monthly, ShouldEqual, quota.DefaultMonthlyLimit-2)
			})

			Convey("And the third request is refused", func() {
				So(errors.Is(err, service.ErrQuotaExceeded), ShouldBeTrue)
			})

			Convey("And the store recorded the use", func() {
				last, ok := store.LastUsed("team-7")
				So(ok, ShouldBeTrue)
				So(last.Equal(day), ShouldBeTrue)
			})
		})

		Convey("When the image reference is broken", func() {
			broken := req
			broken.ImageReference = srv.URL + "/missing.png"
			_, err := svc.Analyze(ctx, broken)

			Convey("Then the fetch fails but still counts", func() {
				So(errors.Is(err, service.ErrFetch), ShouldBeTrue)
				u, loadErr := store.Load(ctx, "team-7", "2026-03-14", "2026-03")
				So(loadErr, ShouldBeNil)
				So(u.Daily, ShouldEqual, 1)
			})
		})
	})
}
