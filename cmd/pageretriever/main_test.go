package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunLocalPages(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "Unicorns.html"), []byte("<p>unicorns</p>"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"--source", "local", "--root", root, "--cache", "null", "Unicorns.html"}, &stdout, &stderr)
	if code != exitOK {
		t.Fatalf("expected exit 0, got %d (stderr=%s)", code, stderr.String())
	}
	if stdout.String() != "<p>unicorns</p>\n" {
		t.Fatalf("unexpected output %q", stdout.String())
	}
}

func TestRunReportsEmptyPages(t *testing.T) {
	root := t.TempDir()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"--source", "local", "--root", root, "Missing"}, &stdout, &stderr)
	if code != exitEmpty {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(stderr.String(), "Failed fetching local page") {
		t.Fatalf("expected notice on stderr, got %q", stderr.String())
	}
}

func TestRunAPIPagesFromConfigFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.PostForm.Get("page") != "Web:Test/No_Spaces_Allowed" {
			_, _ = w.Write([]byte(`{"error":{"code":"missingtitle","info":"missing"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"parse":{"text":{"*":"<p>content</p>\n<!-- NewPP limit report -->\n"}}}`))
	}))
	defer srv.Close()

	cfgPath := filepath.Join(t.TempDir(), "pageretriever.yaml")
	cfg := "source: api\nwiki:\n  endpoint: " + srv.URL + "\n  page_title_prefix: \"Web:Test/\"\ncache:\n  driver: null\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"--config", cfgPath, "No Spaces Allowed "}, &stdout, &stderr)
	if code != exitOK {
		t.Fatalf("expected exit 0, got %d (stderr=%s)", code, stderr.String())
	}
	if stdout.String() != "<p>content</p>\n" {
		t.Fatalf("unexpected output %q", stdout.String())
	}
}

func TestRunUsageAndSetupErrors(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run(context.Background(), nil, &stdout, &stderr); code != exitUsage {
		t.Fatalf("expected usage exit without pages, got %d", code)
	}
	if code := run(context.Background(), []string{"--bogus"}, &stdout, &stderr); code != exitUsage {
		t.Fatalf("expected usage exit for unknown flag, got %d", code)
	}
	if code := run(context.Background(), []string{"--help"}, &stdout, &stderr); code != exitOK {
		t.Fatalf("expected clean exit for help, got %d", code)
	}
	if code := run(context.Background(), []string{"--source", "api", "Page"}, &stdout, &stderr); code != exitSetupErr {
		t.Fatalf("expected setup error without endpoint, got %d", code)
	}
	if code := run(context.Background(), []string{"--source", "api", "--endpoint", "https://w/api.php", "--mode", "sideways", "Page"}, &stdout, &stderr); code != exitSetupErr {
		t.Fatalf("expected setup error for bad mode, got %d", code)
	}
}
