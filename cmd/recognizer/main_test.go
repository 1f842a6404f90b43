package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"recognizer/internal/api"
	"recognizer/internal/config"
	"recognizer/internal/testsupport"
)

const stubPdftotext = "#!/bin/sh\nfor a; do out=\"$a\"; done\nprintf 'ON COMPUTABLE NUMBERS\\f' > \"$out\"\n"

func writeTestConfig(t *testing.T, cfg *config.Config) string {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCLILibraryAddAndRecognize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"type":"book-chapter","title":"On Computable Numbers","authors":[{"firstName":"Alan","lastName":"Turing"}],"year":1936,"container":"Collected Works"}`))
	}))
	defer srv.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithServiceURL(srv.URL), testsupport.WithLookupURL(srv.URL))
	base := testsupport.BaseDir(cfg)
	stub := filepath.Join(base, "bin", "pdftotext")
	if err := os.MkdirAll(filepath.Dir(stub), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(stub, []byte(stubPdftotext), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	cfg.Extractor.Pdftotext = stub
	configPath := writeTestConfig(t, cfg)

	source := filepath.Join(base, "incoming", "on_computable-numbers.pdf")
	testsupport.WritePDF(t, source)

	out, stderr, err := runCLI(t, []string{"library", "add", "--collection", "Logic", source}, configPath)
	if err != nil {
		t.Fatalf("library add: %v (stderr %s)", err, stderr)
	}
	if !strings.Contains(out, "Added item 1: On Computable Numbers") {
		t.Fatalf("unexpected add output %q", out)
	}

	out, stderr, err = runCLI(t, []string{"recognize", "--all-unparented", "--format", "json"}, configPath)
	if err != nil {
		t.Fatalf("recognize: %v (stderr %s)", err, stderr)
	}
	var rows api.RowsResponse
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("decode rows %q: %v", out, err)
	}
	if len(rows.Rows) != 1 || rows.Rows[0].Status != "succeeded" || rows.Rows[0].Message != "On Computable Numbers" {
		t.Fatalf("unexpected rows %+v (stderr %s)", rows, stderr)
	}
	if !strings.Contains(stderr, "[1] processing") {
		t.Fatalf("expected progress on stderr, got %q", stderr)
	}

	out, _, err = runCLI(t, []string{"library", "show", "1", "--format", "json"}, configPath)
	if err != nil {
		t.Fatalf("library show: %v", err)
	}
	var view libraryItemView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if view.ParentID == 0 || view.Recognize {
		t.Fatalf("expected attachment filed under new parent, got %+v", view)
	}

	out, _, err = runCLI(t, []string{"library", "show", "2", "--format", "json"}, configPath)
	if err != nil {
		t.Fatalf("library show parent: %v", err)
	}
	var parent libraryItemView
	if err := json.Unmarshal([]byte(out), &parent); err != nil {
		t.Fatalf("decode parent: %v", err)
	}
	if parent.Type != "bookSection" || len(parent.Collections) != 1 || len(parent.Children) != 1 || parent.Children[0] != 1 {
		t.Fatalf("unexpected parent %+v", parent)
	}

	out, _, err = runCLI(t, []string{"recognize", "--all-unparented"}, configPath)
	if err != nil {
		t.Fatalf("second recognize: %v", err)
	}
	if !strings.Contains(out, "Nothing to recognize") {
		t.Fatalf("expected nothing left to recognize, got %q", out)
	}
}

func TestCLIRecognizeRequiresTargets(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	configPath := writeTestConfig(t, cfg)
	if _, _, err := runCLI(t, []string{"recognize"}, configPath); err == nil {
		t.Fatal("expected error without ids or --all-unparented")
	}
	if _, _, err := runCLI(t, []string{"recognize", "--all-unparented", "3"}, configPath); err == nil {
		t.Fatal("expected error with both ids and --all-unparented")
	}
}

func TestCLIRowsFromDaemon(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/status":
			_ = json.NewEncoder(w).Encode(api.StatusResponse{Total: 2, Processed: 1, PID: 99})
		case "/api/rows":
			_ = json.NewEncoder(w).Encode(api.RowsResponse{
				Rows: []api.Row{
					{ID: 8, Status: "queued", DisplayName: "Pending Paper"},
					{ID: 7, Status: "failed", DisplayName: "Scan", Message: "No matches"},
				},
				Total:     2,
				Processed: 1,
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	cfg := testsupport.NewConfig(t)
	cfg.Paths.APIBind = strings.TrimPrefix(srv.URL, "http://")
	configPath := writeTestConfig(t, cfg)

	out, _, err := runCLI(t, []string{"rows"}, configPath)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if !strings.Contains(out, "Pending Paper") || !strings.Contains(out, "No matches") || !strings.Contains(out, "Processed 1 of 2") {
		t.Fatalf("unexpected rows output %q", out)
	}
	if strings.Index(out, "Pending Paper") > strings.Index(out, "Scan") {
		t.Fatalf("expected newest row first, got %q", out)
	}

	out, _, err = runCLI(t, []string{"rows", "--format", "yaml"}, configPath)
	if err != nil {
		t.Fatalf("rows yaml: %v", err)
	}
	if !strings.Contains(out, "displayName: Pending Paper") {
		t.Fatalf("unexpected yaml %q", out)
	}

	target := filepath.Join(testsupport.BaseDir(cfg), "rows")
	out, _, err = runCLI(t, []string{"rows", "export", target}, configPath)
	if err != nil {
		t.Fatalf("rows export: %v", err)
	}
	if _, err := os.Stat(target + ".xlsx"); err != nil {
		t.Fatalf("expected xlsx written: %v (%s)", err, out)
	}

	if _, _, err := runCLI(t, []string{"rows", "--format", "xml"}, configPath); err == nil {
		t.Fatal("expected unsupported format error")
	}
}

func TestCLIRowsWithoutDaemon(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := strings.TrimPrefix(srv.URL, "http://")
	srv.Close()

	cfg := testsupport.NewConfig(t)
	cfg.Paths.APIBind = addr
	configPath := writeTestConfig(t, cfg)

	_, _, err := runCLI(t, []string{"rows"}, configPath)
	if err == nil || !strings.Contains(err.Error(), "recognizer serve") {
		t.Fatalf("expected not-running hint, got %v", err)
	}
}

func TestCLIConfigInitAndShow(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "config.toml")

	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, target) {
		t.Fatalf("unexpected init output %q", out)
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected error when config already exists")
	}

	cfg := testsupport.NewConfig(t)
	cfg.Paths.APIToken = "secret"
	configPath := writeTestConfig(t, cfg)
	out, _, err = runCLI(t, []string{"config", "show"}, configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if strings.Contains(out, "secret") || !strings.Contains(out, "<redacted>") {
		t.Fatalf("expected redacted token, got %q", out)
	}
}

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs([]string{"1,2", " 3 "})
	if err != nil || len(ids) != 3 || ids[2] != 3 {
		t.Fatalf("unexpected ids %v err %v", ids, err)
	}
	for _, bad := range []string{"0", "-4", "abc"} {
		if _, err := parseIDs([]string{bad}); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
