package config_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/playsketch/internal/config"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.RequestTimeout, convey.ShouldEqual, 60*time.Second)
			convey.So(cfg.DailyLimit, convey.ShouldEqual, 50)
			convey.So(cfg.MonthlyLimit, convey.ShouldEqual, 500)
			convey.So(cfg.CounterStore, convey.ShouldEqual, config.StoreMemory)
			convey.So(cfg.MinMeanConfidence, convey.ShouldEqual, 0.3)
			convey.So(cfg.DefaultLOSPercent, convey.ShouldEqual, 60.0)
			convey.So(cfg.NotesMaxLength, convey.ShouldEqual, 500)
			convey.So(cfg.ImageAllowPrivateHosts, convey.ShouldBeFalse)
		})

		convey.Convey("And they should validate", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with bad values", t, func() {
		cases := map[string]func(*config.Config){
			"addr must not be empty":          func(c *config.Config) { c.Addr = "" },
			"log_format":                      func(c *config.Config) { c.LogFormat = "xml" },
			"daily_limit must be positive":    func(c *config.Config) { c.DailyLimit = 0 },
			"redis_url is required":           func(c *config.Config) { c.CounterStore = config.StoreRedis },
			"postgres_dsn is required":        func(c *config.Config) { c.CounterStore = config.StorePostgres },
			"counter_store":                   func(c *config.Config) { c.CounterStore = "etcd" },
			"min_mean_confidence must be":     func(c *config.Config) { c.MinMeanConfidence = 1.5 },
			"default_los_percent must be":     func(c *config.Config) { c.DefaultLOSPercent = -1 },
			"image_fetch_timeout must be":     func(c *config.Config) { c.ImageFetchTimeout = 0 },
			"route_confidence_threshold must": func(c *config.Config) { c.RouteConfidenceThreshold = -0.1 },
		}
		for want, mutate := range cases {
			cfg := config.New(context.Background())
			mutate(cfg)
			err := cfg.Validate()
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, want)
		}

		convey.Convey("Then every problem is reported together", func() {
			cfg := config.New(context.Background())
			cfg.Addr = ""
			cfg.MonthlyLimit = -1
			err := cfg.Validate()
			convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
			convey.So(err.Error(), convey.ShouldContainSubstring, "monthly_limit must be positive")
		})
	})
}
