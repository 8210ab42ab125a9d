package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	app "github.com/okian/raidtier/internal/app"
	"github.com/okian/raidtier/internal/config"
)

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When loading configuration from the environment", func() {
			t.Setenv("RAIDTIER_ADDR", ":8080")
			t.Setenv("RAIDTIER_WORKER_COUNT", "4")

			ctx := context.Background()
			cfg, err := config.Load(ctx)
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
		})

		convey.Convey("When the environment holds an invalid value", func() {
			t.Setenv("RAIDTIER_NUM_CLASSES", "0")

			_, err := config.Load(context.Background())
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestNewServer(t *testing.T) {
	convey.Convey("Given a started service without a dataset", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		cfg := config.New()
		cfg.WorkerCount = 1
		svc := app.New(app.WithConfig(cfg))
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop(ctx)

		srv := newServer(ctx, ":0", svc)
		get := func(path string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
			return w
		}

		convey.Convey("Then health and docs are served", func() {
			convey.So(get("/healthz").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/openapi.yaml").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/api-docs").Code, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("Then rankings report the missing dataset", func() {
			convey.So(get("/rankings/overall").Code, convey.ShouldEqual, http.StatusServiceUnavailable)
		})

		convey.Convey("Then the server carries its timeouts", func() {
			convey.So(srv.ReadHeaderTimeout, convey.ShouldEqual, readHeaderTimeout)
			convey.So(srv.WriteTimeout, convey.ShouldEqual, writeTimeout)
		})
	})

	convey.Convey("Given a service that was never started", t, func() {
		srv := newServer(context.Background(), ":0", app.New())

		convey.Convey("Then queries answer service unavailable", func() {
			for _, path := range []string{"/rankings/overall", "/pokemon/charizard", "/types/fire", "/families"} {
				w := httptest.NewRecorder()
				srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
				convey.So(w.Code, convey.ShouldEqual, http.StatusServiceUnavailable)
			}
		})
	})
}
