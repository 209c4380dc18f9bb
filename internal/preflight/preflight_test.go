package preflight

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"factflow/internal/store"
	"factflow/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckDirectoryAccess_Empty(t *testing.T) {
	if result := CheckDirectoryAccess("test", " "); result.Passed {
		t.Fatal("expected failure for unconfigured path")
	}
}

func TestCheckDatabase_OK(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	testsupport.NewWorkItem(t, st, "claim", "")

	result := CheckDatabase(context.Background(), st)
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	if !strings.Contains(result.Detail, "1 items") {
		t.Fatalf("unexpected detail: %s", result.Detail)
	}
}

type healthStub struct {
	health store.DatabaseHealth
	err    error
}

func (s healthStub) CheckHealth(context.Context) (store.DatabaseHealth, error) {
	return s.health, s.err
}

func TestCheckDatabase_Failures(t *testing.T) {
	cases := map[string]healthStub{
		"error":          {err: errors.New("boom")},
		"missing file":   {health: store.DatabaseHealth{DBPath: "/x.db"}},
		"missing tables": {health: store.DatabaseHealth{DatabaseExists: true, MissingTables: []string{"claims"}}},
		"integrity":      {health: store.DatabaseHealth{DatabaseExists: true}},
	}
	for name, stub := range cases {
		t.Run(name, func(t *testing.T) {
			if result := CheckDatabase(context.Background(), stub); result.Passed {
				t.Fatalf("expected failure, got: %s", result.Detail)
			}
		})
	}
}

func TestCheckLifecycle(t *testing.T) {
	result := CheckLifecycle()
	if !result.Passed {
		t.Fatalf("expected default lifecycle to pass: %s", result.Detail)
	}
	if !strings.HasPrefix(result.Detail, "15 stages") {
		t.Fatalf("unexpected detail: %s", result.Detail)
	}
}

func TestCheckAPIServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := testsupport.NewConfig(t)
	cfg.Paths.APIBind = strings.TrimPrefix(srv.URL, "http://")
	if result := CheckAPIServer(context.Background(), cfg); !result.Passed || !strings.Contains(result.Detail, "running") {
		t.Fatalf("expected running server, got: %+v", result)
	}

	cfg.Paths.APIToken = "wrong"
	if result := CheckAPIServer(context.Background(), cfg); result.Passed {
		t.Fatal("expected auth failure")
	}
}

func TestCheckAPIServer_NotRunning(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := strings.TrimPrefix(srv.URL, "http://")
	srv.Close()

	cfg := testsupport.NewConfig(t)
	cfg.Paths.APIBind = addr
	result := CheckAPIServer(context.Background(), cfg)
	if !result.Passed || !strings.Contains(result.Detail, "not running") {
		t.Fatalf("expected not-running pass, got: %+v", result)
	}
}

func TestRunAll(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	results := RunAll(context.Background(), cfg, st)
	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(results))
	}
	if Failed(results) {
		t.Fatalf("expected all checks to pass: %+v", results)
	}
	if RunAll(context.Background(), nil, nil) != nil {
		t.Fatal("expected nil results for nil config")
	}
}
