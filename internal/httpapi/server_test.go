package httpapi_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/janus-access/server/internal/httpapi"
	"github.com/janus-access/server/internal/janus/model"
	"github.com/janus-access/server/internal/janus/service"
	"github.com/janus-access/server/internal/janus/store/memory"
	"github.com/janus-access/server/internal/janus/types"
)

const testUID = "04:A1:B2:C3"

// newTestServer wires up the full dependency graph using in-memory stores
// and returns an httptest.Server whose URL can be hit with a plain http.Client.
func newTestServer(t *testing.T) (*httptest.Server, *memory.Store) {
	t.Helper()

	st := memory.New()
	registry := service.NewDeviceRegistry(memory.NewDeviceStore([]string{"door-001"}), log.New(io.Discard, "", 0))
	decisions := service.NewDecisionService(st, registry, service.DecisionConfig{})
	audit := service.NewAuditService(st)

	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:    log.New(io.Discard, "", 0),
		Addr:      ":0",
		Decisions: decisions,
		Audit:     audit,
		Directory: st,
	})

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, st
}

// seedGrantedTap seeds a user, active card and zone linked by a grant.
// The zone is added first so it always gets id 1, matching the zone_id
// the request bodies below use.
func seedGrantedTap(t *testing.T, st *memory.Store) (zoneID int64) {
	t.Helper()
	zoneID = st.AddZone(model.Zone{Name: "Lab", Active: true})
	userID := st.AddUser(model.User{FirstName: "Ada", LastName: "Byron", Role: model.RoleEmployee, Active: true})
	st.AddCard(model.Card{
		UIDHash: model.HashUID(model.NormalizeUID(testUID)),
		UserID:  userID,
		Status:  model.CardActive,
	})
	st.Grant(userID, zoneID)
	return zoneID
}

func postTap(t *testing.T, ts *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+"/api/simulate-tap", "application/json", bytes.NewReader([]byte(body)))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// ── simulate-tap ─────────────────────────────────────────────────────────────

func TestSimulateTap_Grant_Returns200(t *testing.T) {
	ts, st := newTestServer(t)
	seedGrantedTap(t, st)

	resp := postTap(t, ts, `{"uid":"04:A1:B2:C3","zone_id":1,"device_id":"door-001"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result types.TapResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !result.Granted {
		t.Errorf("expected granted, got %s (%q)", result.Status, result.Reason)
	}
	if result.User != "Ada Byron" {
		t.Errorf("user = %q", result.User)
	}
	if result.LogID == "" {
		t.Error("expected log id in response")
	}
}

func TestSimulateTap_Deny_Returns403(t *testing.T) {
	ts, st := newTestServer(t)
	st.AddZone(model.Zone{Name: "Lab", Active: true})

	resp := postTap(t, ts, `{"uid":"ff:ee:dd:cc","zone_id":1,"device_id":"door-001"}`)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}

	var result types.TapResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Status != model.StatusInvalidCard {
		t.Errorf("status = %s", result.Status)
	}
}

func TestSimulateTap_MissingUID_Returns400(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postTap(t, ts, `{"zone_id":1}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestSimulateTap_MalformedJSON_Returns400(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postTap(t, ts, `{"uid": `)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

// ── exits ────────────────────────────────────────────────────────────────────

func TestExit_ReleasesOccupancy(t *testing.T) {
	ts, st := newTestServer(t)
	zoneID := seedGrantedTap(t, st)

	resp := postTap(t, ts, `{"uid":"04:A1:B2:C3","zone_id":1,"device_id":"door-001"}`)
	var result types.TapResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}

	exitResp, err := http.Post(ts.URL+"/api/logs/"+result.LogID+"/exit", "application/json", nil)
	if err != nil {
		t.Fatalf("post exit: %v", err)
	}
	defer exitResp.Body.Close()
	if exitResp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", exitResp.StatusCode)
	}

	zone, _ := st.Zone(zoneID)
	if zone.Occupancy != 0 {
		t.Errorf("occupancy = %d, want 0", zone.Occupancy)
	}
}

func TestExit_UnknownLog_Returns404(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/logs/no-such-id/exit", "application/json", nil)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

// ── read endpoints ───────────────────────────────────────────────────────────

func TestStatusEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/status")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "online" {
		t.Errorf("status = %v", body["status"])
	}
}

func TestZonesEndpoint_ListsSeededZones(t *testing.T) {
	ts, st := newTestServer(t)
	st.AddZone(model.Zone{Name: "Lab", Active: true})
	st.AddZone(model.Zone{Name: "Lobby", Active: true})

	resp, err := http.Get(ts.URL + "/api/zones")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	var body struct {
		Count int `json:"count"`
		Data  []struct {
			Name string `json:"name"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Count != 2 {
		t.Errorf("count = %d, want 2", body.Count)
	}
}

func TestUsersEndpoint_ExposesRolePriority(t *testing.T) {
	ts, st := newTestServer(t)
	st.AddUser(model.User{FirstName: "Ada", LastName: "Byron", Role: model.RoleManager, Active: true})

	resp, err := http.Get(ts.URL + "/api/users")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	var body struct {
		Data []struct {
			FullName string `json:"full_name"`
			Role     string `json:"role"`
			RoleRank int    `json:"role_priority"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Data) != 1 {
		t.Fatalf("users = %d, want 1", len(body.Data))
	}
	u := body.Data[0]
	if u.FullName != "Ada Byron" || u.Role != "manager" {
		t.Errorf("user = %+v", u)
	}
	if u.RoleRank != model.RoleManager.Priority() {
		t.Errorf("role_priority = %d, want %d", u.RoleRank, model.RoleManager.Priority())
	}
}

func TestLogsEndpoint_HonorsLimit(t *testing.T) {
	ts, st := newTestServer(t)
	seedGrantedTap(t, st)

	for i := 0; i < 4; i++ {
		postTap(t, ts, `{"uid":"04:A1:B2:C3","zone_id":1,"device_id":"door-001"}`)
	}

	resp, err := http.Get(ts.URL + "/api/logs?limit=2")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	var body struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Count != 2 {
		t.Errorf("count = %d, want 2", body.Count)
	}
}

func TestFailuresEndpoint_OnlyDenials(t *testing.T) {
	ts, st := newTestServer(t)
	seedGrantedTap(t, st)

	postTap(t, ts, `{"uid":"04:A1:B2:C3","zone_id":1,"device_id":"door-001"}`)
	postTap(t, ts, `{"uid":"ff:ee:dd:cc","zone_id":1,"device_id":"door-001"}`)

	resp, err := http.Get(ts.URL + "/api/logs/failures?hours=24")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	var body struct {
		Count int `json:"count"`
		Data  []struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Count != 1 {
		t.Fatalf("count = %d, want 1", body.Count)
	}
	if body.Data[0].Status != string(model.StatusInvalidCard) {
		t.Errorf("status = %q", body.Data[0].Status)
	}
}

func TestSuspiciousEndpoint_FlagsUnknownDevice(t *testing.T) {
	ts, st := newTestServer(t)
	seedGrantedTap(t, st)

	postTap(t, ts, `{"uid":"04:A1:B2:C3","zone_id":1,"device_id":"rogue-999"}`)

	resp, err := http.Get(ts.URL + "/api/logs/suspicious?hours=24")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	var body struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Count != 1 {
		t.Errorf("count = %d, want 1", body.Count)
	}
}
