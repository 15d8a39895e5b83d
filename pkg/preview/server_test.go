package preview

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/weave"
	"github.com/vango-dev/weave/pkg/component"
	"github.com/vango-dev/weave/pkg/frame"
	"github.com/vango-dev/weave/pkg/metrics"
)

type fixture struct {
	srv  *Server
	http *httptest.Server
	rt   *weave.Runtime
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	loop := frame.NewLoop(frame.Config{Rate: time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	reg := prometheus.NewRegistry()
	rt := weave.New(weave.Config{
		Scheduler: loop,
		Recorder:  metrics.NewPrometheus(metrics.WithRegistry(reg)),
	})
	if _, err := rt.CompileTemplate("card", `<div class="card"><h2 data-text="title">?</h2><p data-class="cls"></p></div>`); err != nil {
		t.Fatal(err)
	}

	srv, err := New(Config{Runtime: rt, Loop: loop, Title: "test", Gatherer: reg})
	if err != nil {
		t.Fatal(err)
	}

	card, err := rt.NewComponent(weave.Definition{Name: "card"}, map[string]any{"title": "Hello"})
	if err != nil {
		t.Fatal(err)
	}
	if err := srv.Add(ctx, "main", card); err != nil {
		t.Fatal(err)
	}

	hs := httptest.NewServer(srv.Handler())
	t.Cleanup(hs.Close)
	return &fixture{srv: srv, http: hs, rt: rt}
}

func (f *fixture) do(t *testing.T, method, path, body string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(method, f.http.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp, string(data)
}

func TestNewValidatesScheduler(t *testing.T) {
	loop := frame.NewLoop(frame.Config{})
	rt := weave.New(weave.Config{})
	if _, err := New(Config{Runtime: rt, Loop: loop}); !errors.Is(err, ErrSchedulerMismatch) {
		t.Errorf("err = %v, want ErrSchedulerMismatch", err)
	}
	if _, err := New(Config{}); err == nil {
		t.Error("New without runtime should fail")
	}
}

func TestDocument(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodGet, "/", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	want := `<!DOCTYPE html><html><head><title>test</title></head><body><div class="card"><h2 data-text="title">Hello</h2><p data-class="cls"></p></div></body></html>`
	if body != want {
		t.Errorf("body =\n%s\nwant\n%s", body, want)
	}
}

func TestUpdate(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		id     string
		body   string
		status int
	}{
		{"valid", "main", `{"title": "World", "cls": ["a", "b"]}`, http.StatusNoContent},
		{"invalid binding value", "main", `{"cls": 42}`, http.StatusBadRequest},
		{"unknown id", "nope", `{"title": "x"}`, http.StatusNotFound},
		{"malformed body", "main", `{"title":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := f.do(t, http.MethodPost, "/components/"+tt.id+"/update", tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d (%s), want %d", resp.StatusCode, body, tt.status)
			}
		})
	}

	_, body := f.do(t, http.MethodGet, "/", "")
	if !strings.Contains(body, `<h2 data-text="title">World</h2>`) || !strings.Contains(body, `class="a b"`) {
		t.Errorf("update not rendered: %s", body)
	}
}

func TestListAndDelete(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodGet, "/components", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var list []componentInfo
	if err := json.Unmarshal([]byte(body), &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].ID != "main" || list[0].Name != "card" || list[0].State["title"] != "Hello" {
		t.Errorf("list = %+v", list)
	}
	if list[0].Status != component.StatusMounted.String() {
		t.Errorf("status = %q", list[0].Status)
	}

	if resp, _ := f.do(t, http.MethodDelete, "/components/main", ""); resp.StatusCode != http.StatusNoContent {
		t.Errorf("DELETE status = %d", resp.StatusCode)
	}
	if resp, _ := f.do(t, http.MethodDelete, "/components/main", ""); resp.StatusCode != http.StatusNotFound {
		t.Errorf("second DELETE status = %d", resp.StatusCode)
	}

	_, body = f.do(t, http.MethodGet, "/", "")
	if strings.Contains(body, "card") {
		t.Errorf("removed component still rendered: %s", body)
	}
}

func TestWebSocketSnapshots(t *testing.T) {
	f := newFixture(t)

	wsURL := "ws" + strings.TrimPrefix(f.http.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	deadline := time.Now().Add(5 * time.Second)
	for f.srv.Hub().ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(time.Millisecond)
	}

	if resp, _ := f.do(t, http.MethodPost, "/components/main/update", `{"title": "Live"}`); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("update status = %d", resp.StatusCode)
	}

	conn.SetReadDeadline(deadline)
	var last Snapshot
	for !strings.Contains(last.HTML, ">Live<") {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v (last snapshot %+v)", err, last)
		}
		if kind != websocket.BinaryMessage {
			t.Fatalf("message type = %d, want binary", kind)
		}
		snap, err := DecodeSnapshot(data)
		if err != nil {
			t.Fatal(err)
		}
		if snap.Revision <= last.Revision {
			t.Errorf("revision went from %d to %d", last.Revision, snap.Revision)
		}
		last = snap
	}

	if cur, ok := f.srv.Snapshot(); !ok || cur.Revision < last.Revision {
		t.Errorf("Snapshot() = %+v, %v", cur, ok)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodGet, "/metrics", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(body, `weave_components_constructed_total{component="card"} 1`) {
		t.Errorf("metrics missing constructed counter:\n%s", body)
	}
}

func TestSnapshotEncoding(t *testing.T) {
	in := Snapshot{Revision: 7, HTML: "<p>x</p>"}
	data, err := in.Encode()
	if err != nil {
		t.Fatal(err)
	}
	out, err := DecodeSnapshot(data)
	if err != nil {
		t.Fatal(err)
	}
	if out != in {
		t.Errorf("decoded %+v, want %+v", out, in)
	}
}

func TestAddDuplicateID(t *testing.T) {
	f := newFixture(t)

	card, err := f.rt.NewComponent(weave.Definition{Name: "card"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.srv.Add(context.Background(), "main", card); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("err = %v, want ErrDuplicateID", err)
	}
	if card.Status() != component.StatusConstructed {
		t.Errorf("rejected component status = %s", card.Status())
	}
}
