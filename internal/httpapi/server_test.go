package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jhendrikx/podforge/internal/config"
	"github.com/jhendrikx/podforge/internal/observability"
	"github.com/jhendrikx/podforge/internal/pipeline"
	"github.com/jhendrikx/podforge/internal/store"
)

var testMetrics = observability.NewMetrics("httpapi_test")

type runnerFunc func(ctx context.Context, run store.Run, req pipeline.Request) (store.Run, error)

func (f runnerFunc) Run(ctx context.Context, run store.Run, req pipeline.Request) (store.Run, error) {
	return f(ctx, run, req)
}

func newTestServer(t *testing.T, runner Runner) (*Server, store.Store, *httptest.Server) {
	t.Helper()
	runs := store.NewInMemoryStore()
	cfg := config.Config{TTSProvider: "elevenlabs", AllowAnyOrigin: true}
	srv := New(cfg, runs, runner, testMetrics)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return srv, runs, ts
}

func TestHealthz(t *testing.T) {
	_, _, ts := newTestServer(t, nil)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestCreateRunStartsRunner(t *testing.T) {
	started := make(chan pipeline.Request, 1)
	runner := runnerFunc(func(_ context.Context, run store.Run, req pipeline.Request) (store.Run, error) {
		started <- req
		return run, nil
	})
	_, runs, ts := newTestServer(t, runner)

	body, _ := json.Marshal(map[string]any{"topic": "deep sea mining", "duration_minutes": 10})
	resp, err := http.Post(ts.URL+"/v1/runs", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}

	var view struct {
		ID       string `json:"id"`
		Status   string `json:"status"`
		Provider string `json:"provider"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		t.Fatal(err)
	}
	if view.ID == "" || view.Status != "pending" || view.Provider != "elevenlabs" {
		t.Fatalf("view = %+v", view)
	}

	select {
	case req := <-started:
		if req.Topic != "deep sea mining" || req.DurationMinutes != 10 {
			t.Fatalf("runner req = %+v", req)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("runner not invoked")
	}

	if _, err := runs.GetRun(context.Background(), view.ID); err != nil {
		t.Fatalf("run not persisted: %v", err)
	}
}

func TestCreateRunRequiresTopicOrScript(t *testing.T) {
	_, _, ts := newTestServer(t, nil)
	resp, err := http.Post(ts.URL+"/v1/runs", "application/json", strings.NewReader(`{}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestGetRunNotFound(t *testing.T) {
	_, _, ts := newTestServer(t, nil)
	resp, err := http.Get(ts.URL + "/v1/runs/nope")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestRunAudio(t *testing.T) {
	_, runs, ts := newTestServer(t, nil)
	ctx := context.Background()

	if err := runs.CreateRun(ctx, store.Run{ID: "r1", Status: store.StatusSynthesizing}); err != nil {
		t.Fatal(err)
	}
	resp, err := http.Get(ts.URL + "/v1/runs/r1/audio")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want 409 before audio exists", resp.StatusCode)
	}

	path := filepath.Join(t.TempDir(), "episode_r1.mp3")
	if err := os.WriteFile(path, []byte("audio-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	run, _ := runs.GetRun(ctx, "r1")
	run.Status = store.StatusCompleted
	run.AudioPath = path
	if err := runs.UpdateRun(ctx, run); err != nil {
		t.Fatal(err)
	}

	resp, err = http.Get(ts.URL + "/v1/runs/r1/audio")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestRunEventsStream(t *testing.T) {
	srv, runs, ts := newTestServer(t, nil)
	ctx := context.Background()

	run := store.Run{ID: "ws1", Topic: "x", Status: store.StatusPending}
	if err := runs.CreateRun(ctx, run); err != nil {
		t.Fatal(err)
	}

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/runs/ws1/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	var snapshot runView
	if err := conn.ReadJSON(&snapshot); err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if snapshot.ID != "ws1" || snapshot.Status != "pending" {
		t.Fatalf("snapshot = %+v", snapshot)
	}

	run.Status = store.StatusCompleted
	run.Stage = "done"
	srv.PublishRunEvent(run)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var update runView
	if err := conn.ReadJSON(&update); err != nil {
		t.Fatalf("read update: %v", err)
	}
	if update.Status != "completed" || update.Stage != "done" {
		t.Fatalf("update = %+v", update)
	}
}
