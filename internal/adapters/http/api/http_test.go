package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/surgecast/surgecast/internal/adapters/http/api"
	repository "github.com/surgecast/surgecast/internal/adapters/repository"
	"github.com/surgecast/surgecast/internal/app"
	"github.com/surgecast/surgecast/internal/domain/model"
	scenario "github.com/surgecast/surgecast/internal/domain/scenario"
	. "github.com/smartystreets/goconvey/convey"
)

// Mock implementation for testing
type mockService struct {
	snapshot    model.Snapshot
	snapshotErr error
	records     []model.HistoryRecord
	applyResult app.ScenarioResult
	applyErr    error
	kinds       []scenario.Kind
	stats       app.Stats
}

func (m *mockService) Snapshot(context.Context) (model.Snapshot, error) {
	return m.snapshot, m.snapshotErr
}

func (m *mockService) CityState(_ context.Context, cityID string) (model.CityState, error) {
	if m.snapshotErr != nil {
		return model.CityState{}, m.snapshotErr
	}
	state, ok := m.snapshot.Cities[cityID]
	if !ok {
		return model.CityState{}, repository.ErrNotFound
	}
	return state, nil
}

func (m *mockService) History(_ context.Context, cityID string, limit int) []model.HistoryRecord {
	out := make([]model.HistoryRecord, 0, len(m.records))
	for _, r := range m.records {
		if cityID != "" && r.CityID != cityID {
			continue
		}
		out = append(out, r)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func (m *mockService) ApplyScenario(context.Context, string, string) (app.ScenarioResult, error) {
	return m.applyResult, m.applyErr
}

func (m *mockService) ScenarioKinds(context.Context) []scenario.Kind { return m.kinds }

func (m *mockService) GetStats(context.Context) app.Stats { return m.stats }

func newTestServer(svc *mockService) *httptest.Server {
	mux := http.NewServeMux()
	api.NewServer(svc).Register(context.Background(), mux)
	return httptest.NewServer(mux)
}

func testSnapshot() model.Snapshot {
	return model.Snapshot{
		Tick:    4,
		TakenAt: time.Now(),
		Cities: map[string]model.CityState{
			"chicago": {CityID: "chicago", PriceMultiplier: 1.3},
			"miami":   {CityID: "miami", PriceMultiplier: 0.9},
		},
	}
}

func TestSnapshotEndpoint(t *testing.T) {
	Convey("Given the snapshot endpoint", t, func() {
		Convey("When a snapshot exists", func() {
			server := newTestServer(&mockService{snapshot: testSnapshot()})
			defer server.Close()

			resp, err := http.Get(server.URL + "/snapshot")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then it should return the full mapping", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)

				var got model.Snapshot
				So(json.NewDecoder(resp.Body).Decode(&got), ShouldBeNil)
				So(got.Tick, ShouldEqual, 4)
				So(len(got.Cities), ShouldEqual, 2)
			})
		})

		Convey("When one city is requested", func() {
			server := newTestServer(&mockService{snapshot: testSnapshot()})
			defer server.Close()

			resp, err := http.Get(server.URL + "/snapshot?city=miami")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then it should return that city's state", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)

				var got model.CityState
				So(json.NewDecoder(resp.Body).Decode(&got), ShouldBeNil)
				So(got.CityID, ShouldEqual, "miami")
			})
		})

		Convey("When the requested city is unknown", func() {
			server := newTestServer(&mockService{snapshot: testSnapshot()})
			defer server.Close()

			resp, err := http.Get(server.URL + "/snapshot?city=atlantis")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then it should return 404", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When no tick has completed yet", func() {
			server := newTestServer(&mockService{snapshotErr: repository.ErrNoSnapshot})
			defer server.Close()

			resp, err := http.Get(server.URL + "/snapshot")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then it should return 503", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusServiceUnavailable)
			})
		})

		Convey("When the method is not GET", func() {
			server := newTestServer(&mockService{snapshot: testSnapshot()})
			defer server.Close()

			resp, err := http.Post(server.URL+"/snapshot", "application/json", nil)
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then it should return 405", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusMethodNotAllowed)
			})
		})
	})
}

func TestHistoryEndpoint(t *testing.T) {
	Convey("Given the history endpoint", t, func() {
		svc := &mockService{records: []model.HistoryRecord{
			{CityID: "chicago", Explanation: "newest"},
			{CityID: "miami", Explanation: "older"},
			{CityID: "chicago", Explanation: "oldest"},
		}}
		server := newTestServer(svc)
		defer server.Close()

		Convey("When queried without filters", func() {
			resp, err := http.Get(server.URL + "/history")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then it should return every record", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)

				var got struct {
					Count   int                   `json:"count"`
					Records []model.HistoryRecord `json:"records"`
				}
				So(json.NewDecoder(resp.Body).Decode(&got), ShouldBeNil)
				So(got.Count, ShouldEqual, 3)
			})
		})

		Convey("When scoped to one city with a limit", func() {
			resp, err := http.Get(server.URL + "/history?city=chicago&limit=1")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then it should return only that city's newest record", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)

				var got struct {
					Records []model.HistoryRecord `json:"records"`
				}
				So(json.NewDecoder(resp.Body).Decode(&got), ShouldBeNil)
				So(len(got.Records), ShouldEqual, 1)
				So(got.Records[0].Explanation, ShouldEqual, "newest")
			})
		})

		Convey("When the limit is not a positive integer", func() {
			resp, err := http.Get(server.URL + "/history?limit=banana")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then it should return 400", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the limit is above the maximum", func() {
			resp, err := http.Get(server.URL + "/history?limit=100000")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then it should return 400", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestScenarioEndpoints(t *testing.T) {
	Convey("Given the scenario endpoints", t, func() {
		Convey("When applying a valid scenario", func() {
			svc := &mockService{applyResult: app.ScenarioResult{
				Accepted: true,
				Kind:     scenario.KindDemandSurge,
				CityID:   "chicago",
				Effects:  []string{"demand_level"},
			}}
			server := newTestServer(svc)
			defer server.Close()

			body := strings.NewReader(`{"kind":"demand_surge","city_id":"chicago"}`)
			resp, err := http.Post(server.URL+"/scenario", "application/json", body)
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then it should return 202 with the effects", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusAccepted)

				var got app.ScenarioResult
				So(json.NewDecoder(resp.Body).Decode(&got), ShouldBeNil)
				So(got.Accepted, ShouldBeTrue)
				So(got.Effects, ShouldResemble, []string{"demand_level"})
			})
		})

		Convey("When the body is not JSON", func() {
			server := newTestServer(&mockService{})
			defer server.Close()

			resp, err := http.Post(server.URL+"/scenario", "application/json", strings.NewReader("not json"))
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then it should return 400", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the kind is missing", func() {
			server := newTestServer(&mockService{})
			defer server.Close()

			resp, err := http.Post(server.URL+"/scenario", "application/json",
				strings.NewReader(`{"city_id":"chicago"}`))
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then it should return 400", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the city is unknown", func() {
			server := newTestServer(&mockService{applyErr: scenario.ErrUnknownCity})
			defer server.Close()

			resp, err := http.Post(server.URL+"/scenario", "application/json",
				strings.NewReader(`{"kind":"crisis","city_id":"atlantis"}`))
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then it should return 400 with the city error", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)

				var got struct {
					Code string `json:"code"`
				}
				So(json.NewDecoder(resp.Body).Decode(&got), ShouldBeNil)
				So(got.Code, ShouldEqual, "unknown_city")
			})
		})

		Convey("When listing the catalog", func() {
			svc := &mockService{kinds: scenario.NewCatalog(2.50, time.Minute).Kinds()}
			server := newTestServer(svc)
			defer server.Close()

			resp, err := http.Get(server.URL + "/scenarios")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then it should return every kind", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)

				var got []scenario.Kind
				So(json.NewDecoder(resp.Body).Decode(&got), ShouldBeNil)
				So(len(got), ShouldEqual, 4)
			})
		})
	})
}

func TestStatsEndpoint(t *testing.T) {
	Convey("Given the stats endpoint", t, func() {
		svc := &mockService{stats: app.Stats{
			Tick:            42,
			Cities:          []string{"chicago", "miami"},
			HistoryCapacity: 100,
		}}
		server := newTestServer(svc)
		defer server.Close()

		Convey("When queried", func() {
			resp, err := http.Get(server.URL + "/stats")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then it should report the simulation shape", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)

				var got app.Stats
				So(json.NewDecoder(resp.Body).Decode(&got), ShouldBeNil)
				So(got.Tick, ShouldEqual, 42)
				So(got.HistoryCapacity, ShouldEqual, 100)
			})
		})
	})
}

func TestHealthEndpoint(t *testing.T) {
	Convey("Given the health endpoint", t, func() {
		server := newTestServer(&mockService{})
		defer server.Close()

		Convey("When scraped", func() {
			resp, err := http.Get(server.URL + "/healthz")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then it should serve Prometheus metrics", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
			})
		})
	})
}
