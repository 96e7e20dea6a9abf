package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/flowfit/internal/adapters/http/api"
	service "github.com/okian/flowfit/internal/app"
	"github.com/okian/flowfit/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

const fullProfile = `{"name":"Ada","ratings":[
 {"domain":"restructuring","skill":6,"challenge":6,"time_perception":2},
 {"domain":"digitalisation","skill":2,"challenge":6,"time_perception":-2},
 {"domain":"leadership","skill":6,"challenge":2,"time_perception":-3},
 {"domain":"process","skill":4,"challenge":4,"time_perception":0},
 {"domain":"culture","skill":5,"challenge":6,"time_perception":1}]}`

func newTestServer(opts ...api.Option) (http.Handler, func()) {
	svc := service.New()
	So(svc.Start(context.Background()), ShouldBeNil)
	return api.NewServer(svc, opts...).Routes(), svc.Stop
}

func do(h http.Handler, method, path, contentType, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(rec *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	So(json.Unmarshal(rec.Body.Bytes(), &out), ShouldBeNil)
	return out
}

func TestEvaluateEndpoint(t *testing.T) {
	Convey("Given the API", t, func() {
		h, stop := newTestServer()
		defer stop()

		Convey("When a complete profile is evaluated", func() {
			rec := do(h, http.MethodPost, "/evaluate", "application/json", fullProfile)

			Convey("Then the JSON result carries the aggregate and plan", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				out := decode(rec)
				result := out["result"].(map[string]any)
				So(result["in_fit"], ShouldResemble, []any{"restructuring", "culture"})
				So(out["plan"], ShouldHaveLength, 3)
				So(out["report"], ShouldContainSubstring, "== Development plan ==")
			})
		})

		Convey("When the text report is requested", func() {
			rec := do(h, http.MethodPost, "/evaluate?format=text", "application/json", fullProfile)
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Header().Get("Content-Type"), ShouldStartWith, "text/plain")
			So(rec.Body.String(), ShouldStartWith, "FLOW-FIT REPORT")
		})

		Convey("When a rating is out of range", func() {
			rec := do(h, http.MethodPost, "/evaluate", "application/json", strings.Replace(fullProfile, `"skill":6`, `"skill":8`, 1))
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
			So(decode(rec)["code"], ShouldEqual, "invalid_input")
		})

		Convey("When the body is not JSON", func() {
			rec := do(h, http.MethodPost, "/evaluate", "application/json", "{")
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the body exceeds the upload cap", func() {
			small, stopSmall := newTestServer(api.WithMaxUploadBytes(16))
			defer stopSmall()
			rec := do(small, http.MethodPost, "/evaluate", "application/json", fullProfile)
			So(rec.Code, ShouldEqual, http.StatusRequestEntityTooLarge)
		})
	})
}

func TestSubmissionEndpoints(t *testing.T) {
	Convey("Given the API", t, func() {
		h, stop := newTestServer()
		defer stop()

		Convey("When a profile is submitted", func() {
			rec := do(h, http.MethodPost, "/submissions", "application/json", fullProfile, "Idempotency-Key", "form-1")
			So(rec.Code, ShouldEqual, http.StatusCreated)
			id := decode(rec)["id"].(string)
			So(rec.Header().Get("Location"), ShouldEqual, "/submissions/"+id)

			Convey("Then it can be fetched", func() {
				got := do(h, http.MethodGet, "/submissions/"+id, "", "")
				So(got.Code, ShouldEqual, http.StatusOK)
				So(decode(got)["name"], ShouldEqual, "Ada")
			})

			Convey("Then resubmitting the same form is a conflict", func() {
				again := do(h, http.MethodPost, "/submissions", "application/json", fullProfile, "Idempotency-Key", "form-1")
				So(again.Code, ShouldEqual, http.StatusConflict)
				out := decode(again)
				So(out["id"], ShouldEqual, id)
				So(out["duplicate"], ShouldEqual, true)
			})

			Convey("Then a new idempotency key stores another copy", func() {
				again := do(h, http.MethodPost, "/submissions", "application/json", fullProfile, "Idempotency-Key", "form-42")
				So(again.Code, ShouldEqual, http.StatusCreated)
			})

			Convey("Then the same answers without a key count as another respondent", func() {
				again := do(h, http.MethodPost, "/submissions", "application/json", fullProfile)
				So(again.Code, ShouldEqual, http.StatusCreated)
				So(decode(again)["id"], ShouldNotEqual, id)
			})

			Convey("Then it shows up in the CSV export", func() {
				exp := do(h, http.MethodGet, "/submissions/export?format=csv", "", "")
				So(exp.Code, ShouldEqual, http.StatusOK)
				So(exp.Header().Get("Content-Type"), ShouldStartWith, "text/csv")
				So(exp.Body.String(), ShouldContainSubstring, "Ada,6,6,2,2,6,-2")
			})

			Convey("Then it shows up in the JSON export", func() {
				exp := do(h, http.MethodGet, "/submissions/export?format=json", "", "")
				So(exp.Code, ShouldEqual, http.StatusOK)
				var subs []map[string]any
				So(json.Unmarshal(exp.Body.Bytes(), &subs), ShouldBeNil)
				So(subs, ShouldHaveLength, 1)
			})
		})

		Convey("When an incomplete profile is submitted", func() {
			rec := do(h, http.MethodPost, "/submissions", "application/json", `{"ratings":[{"domain":"culture","skill":4,"challenge":4,"time_perception":0}]}`)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When a rating omits time_perception", func() {
			rec := do(h, http.MethodPost, "/submissions", "application/json", strings.Replace(fullProfile, `,"time_perception":0}`, `}`, 1))
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
			So(decode(rec)["code"], ShouldEqual, "invalid_input")
		})

		Convey("When an unknown submission is requested", func() {
			rec := do(h, http.MethodGet, "/submissions/nope", "", "")
			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the export format is unsupported", func() {
			rec := do(h, http.MethodGet, "/submissions/export?format=xml", "", "")
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestTeamEndpoints(t *testing.T) {
	Convey("Given the API", t, func() {
		h, stop := newTestServer()
		defer stop()

		Convey("When no submission is stored", func() {
			rec := do(h, http.MethodGet, "/team", "", "")
			So(rec.Code, ShouldEqual, http.StatusUnprocessableEntity)
			So(decode(rec)["code"], ShouldEqual, "empty_snapshot")
		})

		Convey("When a submission is stored", func() {
			So(do(h, http.MethodPost, "/submissions", "application/json", fullProfile).Code, ShouldEqual, http.StatusCreated)
			rec := do(h, http.MethodGet, "/team", "", "")

			Convey("Then the team result is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				result := decode(rec)["result"].(map[string]any)
				So(result["respondents"], ShouldEqual, float64(1))
				So(result["observations"], ShouldEqual, float64(5))
			})
		})

		Convey("When a CSV file is uploaded", func() {
			csv := "name,skill_culture,challenge_culture,time_culture\nA,6,6,2\nB,6,5,1\n"
			rec := do(h, http.MethodPost, "/team/evaluate", "text/csv", csv)

			Convey("Then the CRI is computed over the upload", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				out := decode(rec)
				result := out["result"].(map[string]any)
				So(result["cri"], ShouldEqual, float64(1))
				So(result["band"], ShouldEqual, "favorable")
			})
		})

		Convey("When a YAML file is uploaded as text", func() {
			yml := "- name: A\n  ratings:\n    - {domain: process, skill: 2, challenge: 6, time_perception: 0}\n"
			rec := do(h, http.MethodPost, "/team/evaluate?format=text", "application/yaml", yml)
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, "Change-Readiness Index: -1.00 [stabilize_first]")
		})

		Convey("When a JSON upload names an unknown domain", func() {
			rec := do(h, http.MethodPost, "/team/evaluate", "application/json", `[{"ratings":[{"domain":"weather","skill":3,"challenge":3,"time_perception":0}]}]`)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the upload is empty", func() {
			rec := do(h, http.MethodPost, "/team/evaluate", "application/json", `[]`)
			So(rec.Code, ShouldEqual, http.StatusUnprocessableEntity)
		})

		Convey("When the content type is not supported", func() {
			rec := do(h, http.MethodPost, "/team/evaluate", "image/png", "x")
			So(rec.Code, ShouldEqual, http.StatusUnsupportedMediaType)
		})
	})
}

func TestInfoEndpoints(t *testing.T) {
	Convey("Given the API", t, func() {
		h, stop := newTestServer(api.WithCORSOrigins([]string{"https://survey.example.com"}))
		defer stop()

		Convey("Then healthz reports ok", func() {
			rec := do(h, http.MethodGet, "/healthz", "", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(decode(rec)["status"], ShouldEqual, "ok")
		})

		Convey("Then the catalog lists the domains and the lexicon", func() {
			rec := do(h, http.MethodGet, "/catalog", "", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			out := decode(rec)
			So(out["domains"], ShouldHaveLength, 5)
			So(out["time_perception"], ShouldHaveLength, 7)
		})

		Convey("Then stats report the service state", func() {
			rec := do(h, http.MethodGet, "/stats", "", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(decode(rec)["started"], ShouldEqual, true)
		})

		Convey("Then metrics are exported", func() {
			do(h, http.MethodGet, "/healthz", "", "")
			rec := do(h, http.MethodGet, "/metrics", "", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, "flowfit_survey_http_requests_total")
		})

		Convey("Then allowed origins receive CORS headers", func() {
			rec := do(h, http.MethodGet, "/catalog", "", "", "Origin", "https://survey.example.com")
			So(rec.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "https://survey.example.com")
		})

		Convey("Then the OpenAPI document is served", func() {
			rec := do(h, http.MethodGet, "/openapi.yaml", "", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, "/team/evaluate")
		})

		Convey("Then unknown routes are not found", func() {
			rec := do(h, http.MethodGet, "/rankings", "", "")
			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestNotStarted(t *testing.T) {
	Convey("Given a service that was never started", t, func() {
		h := api.NewServer(service.New()).Routes()
		rec := do(h, http.MethodGet, "/catalog", "", "")
		So(rec.Code, ShouldEqual, http.StatusServiceUnavailable)
	})
}
