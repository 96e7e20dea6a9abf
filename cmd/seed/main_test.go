package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func TestRunFlags(t *testing.T) {
	convey.Convey("Given the seed command", t, func() {
		var stderr bytes.Buffer

		convey.Convey("When a flag is unknown", func() {
			convey.So(run(context.Background(), []string{"-nope"}, &stderr), convey.ShouldEqual, exitUsage)
		})

		convey.Convey("When the respondent count is not positive", func() {
			code := run(context.Background(), []string{"-respondents", "0"}, &stderr)
			convey.So(code, convey.ShouldEqual, exitUsage)
			convey.So(stderr.String(), convey.ShouldContainSubstring, "invalid flags")
		})

		convey.Convey("When the server is unhealthy", func() {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			}))
			defer ts.Close()

			code := run(context.Background(), []string{"-url", ts.URL, "-respondents", "3"}, &stderr)
			convey.So(code, convey.ShouldEqual, exitFailure)
			convey.So(stderr.String(), convey.ShouldContainSubstring, "seed run failed")
		})
	})
}
