package swagger

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/smartystreets/goconvey/convey"
)

func TestSwaggerHandler(t *testing.T) {
	convey.Convey("Given the docs routes on a router", t, func() {
		r := chi.NewRouter()
		Register(r)

		serve := func(path string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
			return w
		}

		convey.Convey("Then /openapi.yaml returns the embedded document", func() {
			w := serve("/openapi.yaml")
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, "application/yaml; charset=utf-8")
			convey.So(w.Body.String(), convey.ShouldContainSubstring, "title: Flowfit API")
		})

		convey.Convey("Then /api-docs returns the ReDoc page", func() {
			w := serve("/api-docs")
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, "text/html; charset=utf-8")
			convey.So(w.Body.String(), convey.ShouldContainSubstring, "redoc-container")
		})

		convey.Convey("Then /openapi.json documents every API route", func() {
			w := serve("/openapi.json")
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)

			var doc struct {
				OpenAPI string                    `json:"openapi"`
				Paths   map[string]map[string]any `json:"paths"`
			}
			convey.So(json.Unmarshal(w.Body.Bytes(), &doc), convey.ShouldBeNil)
			convey.So(doc.OpenAPI, convey.ShouldStartWith, "3.")
			for path, method := range map[string]string{
				"/healthz":            "get",
				"/catalog":            "get",
				"/evaluate":           "post",
				"/submissions":        "post",
				"/submissions/export": "get",
				"/submissions/{id}":   "get",
				"/team":               "get",
				"/team/evaluate":      "post",
			} {
				convey.So(doc.Paths[path], convey.ShouldContainKey, method)
			}
		})
	})
}

func TestSwaggerHandlerWithNilRouter(t *testing.T) {
	convey.Convey("Given a nil router", t, func() {
		convey.So(func() { Register(nil) }, convey.ShouldPanic)
	})
}

func TestJSONIsStable(t *testing.T) {
	convey.Convey("Given the converted document", t, func() {
		a, err := JSON()
		convey.So(err, convey.ShouldBeNil)
		b, err := JSON()
		convey.So(err, convey.ShouldBeNil)
		convey.So(string(a), convey.ShouldEqual, string(b))
	})
}
