package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// isolate keeps the developer's config file and environment out of the test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, key := range []string{
		"HUBSTORE_BASE_URL", "HUBSTORE_HTTP_TIMEOUT", "HUBSTORE_SPOOL_DIR",
		"HUBSTORE_POLL_INTERVAL", "HUBSTORE_ONCE", "HUBSTORE_LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

type bodyRecorder struct {
	mu     sync.Mutex
	bodies []string
}

func (b *bodyRecorder) handler(status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.bodies = append(b.bodies, r.URL.Path+" "+string(body))
		b.mu.Unlock()
		w.WriteHeader(status)
	}
}

func (b *bodyRecorder) Bodies() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string{}, b.bodies...)
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestSubmit_File(t *testing.T) {
	isolate(t)
	rec := &bodyRecorder{}
	srv := httptest.NewServer(rec.handler(http.StatusOK))
	defer srv.Close()

	file := writeFile(t, t.TempDir(), "batch.json", `[{"a":1},{"b":2}]`)
	if _, err := run(t, "", "submit", file, "--base-url", srv.URL); err != nil {
		t.Fatalf("submit error: %v", err)
	}

	bodies := rec.Bodies()
	if len(bodies) != 1 || bodies[0] != `/processed_agent_data/ [{"a":1},{"b":2}]` {
		t.Errorf("received %v", bodies)
	}
}

func TestSubmit_Stdin(t *testing.T) {
	isolate(t)
	rec := &bodyRecorder{}
	srv := httptest.NewServer(rec.handler(http.StatusOK))
	defer srv.Close()

	t.Setenv("HUBSTORE_BASE_URL", srv.URL)
	if _, err := run(t, `{"x": 1}`, "submit", "-"); err != nil {
		t.Fatalf("submit error: %v", err)
	}
	if bodies := rec.Bodies(); len(bodies) != 1 || bodies[0] != `/processed_agent_data/ {"x":1}` {
		t.Errorf("received %v", bodies)
	}
}

func TestSubmit_NotAccepted(t *testing.T) {
	isolate(t)
	rec := &bodyRecorder{}
	srv := httptest.NewServer(rec.handler(http.StatusCreated))
	defer srv.Close()

	_, err := run(t, `{"x":1}`, "submit", "--base-url", srv.URL)
	if err == nil || !strings.Contains(err.Error(), "not accepted") {
		t.Errorf("submit error = %v, want not accepted", err)
	}
}

func TestSubmit_InvalidInput(t *testing.T) {
	isolate(t)
	rec := &bodyRecorder{}
	srv := httptest.NewServer(rec.handler(http.StatusOK))
	defer srv.Close()

	if _, err := run(t, `42`, "submit", "--base-url", srv.URL); err == nil {
		t.Error("submit of a scalar succeeded, want error")
	}
	if n := len(rec.Bodies()); n != 0 {
		t.Errorf("requests = %d, want 0", n)
	}
}

func TestConfigFile(t *testing.T) {
	isolate(t)
	rec := &bodyRecorder{}
	srv := httptest.NewServer(rec.handler(http.StatusOK))
	defer srv.Close()

	dir := t.TempDir()
	cfgFile := writeFile(t, dir, "hubstore.yaml", "base_url: "+srv.URL+"\nlog_level: warn\n")
	if _, err := run(t, `{"x":1}`, "submit", "--config", cfgFile); err != nil {
		t.Fatalf("submit error: %v", err)
	}
	if n := len(rec.Bodies()); n != 1 {
		t.Errorf("requests = %d, want 1", n)
	}

	if _, err := run(t, `{}`, "submit", "--config", filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("missing config file accepted, want error")
	}
}

func TestInvalidBaseURL(t *testing.T) {
	isolate(t)
	if _, err := run(t, `{}`, "submit", "--base-url", "store:8000"); err == nil {
		t.Error("invalid base url accepted, want error")
	}
}

func TestEnqueueAndWatchOnce(t *testing.T) {
	isolate(t)
	rec := &bodyRecorder{}
	srv := httptest.NewServer(rec.handler(http.StatusOK))
	defer srv.Close()

	spool := filepath.Join(t.TempDir(), "spool")
	batch := writeFile(t, t.TempDir(), "batch.json", `[{"road_state":"normal"}]`)

	out, err := run(t, "", "enqueue", batch, "--spool-dir", spool)
	if err != nil {
		t.Fatalf("enqueue error: %v", err)
	}
	name := strings.TrimSpace(out)
	if !strings.HasSuffix(name, ".json") {
		t.Fatalf("enqueue printed %q, want spooled file name", name)
	}

	if _, err := run(t, "", "watch", "--once", "--spool-dir", spool, "--base-url", srv.URL); err != nil {
		t.Fatalf("watch error: %v", err)
	}

	if bodies := rec.Bodies(); len(bodies) != 1 || bodies[0] != `/processed_agent_data/ [{"road_state":"normal"}]` {
		t.Errorf("received %v", bodies)
	}
	entries, _ := os.ReadDir(spool)
	if len(entries) != 0 {
		t.Errorf("spool not drained: %d entries left", len(entries))
	}
}

func TestEnqueue_RequiresSpoolDir(t *testing.T) {
	isolate(t)
	if _, err := run(t, `{}`, "enqueue", "-"); err == nil {
		t.Error("enqueue without spool dir succeeded, want error")
	}
	if _, err := run(t, "", "watch", "--once"); err == nil {
		t.Error("watch without spool dir succeeded, want error")
	}
}
