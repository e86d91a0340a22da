package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func readAuditEntries(t *testing.T, path string) []AuditEntry {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open audit log: %v", err)
	}
	defer f.Close()

	var entries []AuditEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e AuditEntry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("invalid audit line %q: %v", scanner.Text(), err)
		}
		entries = append(entries, e)
	}
	return entries
}

func TestAuditLogger_WritesEntries(t *testing.T) {
	dir := t.TempDir()
	a := NewAuditLogger(dir)
	if a == nil {
		t.Fatal("NewAuditLogger returned nil")
	}

	a.Log(AuditEntry{Timestamp: time.Now(), Tool: "vacsim_sample", Status: "success"})
	a.Log(AuditEntry{Timestamp: time.Now(), Tool: "vacsim_forecast", Status: "error", Error: "boom"})
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	path := filepath.Join(dir, "audit.jsonl")
	entries := readAuditEntries(t, path)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[1].Tool != "vacsim_forecast" || entries[1].Error != "boom" {
		t.Errorf("unexpected entry %+v", entries[1])
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file permissions = %o, want 0600", perm)
	}
}

func TestAuditLogger_NilSafety(t *testing.T) {
	var a *AuditLogger
	a.Log(AuditEntry{Tool: "vacsim_sample"})
	if err := a.Close(); err != nil {
		t.Errorf("Close on nil: %v", err)
	}
}

func TestAuditLogger_LogAfterClose(t *testing.T) {
	a := NewAuditLogger(t.TempDir())
	a.Close()
	a.Log(AuditEntry{Tool: "vacsim_sample"})
	if err := a.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestSanitizeToolParams(t *testing.T) {
	got := sanitizeToolParams(map[string]interface{}{
		"bounds":     BoundsInput{PPro: &BoundInput{Lower: 1, Upper: 2}},
		"replicates": 50,
		"seed":       uint64(0),
		"ci":         90.0,
		"start_date": "",
		"daily":      true,
	})

	want := map[string]string{
		"bounds":       "(set)",
		"replicates":   "50",
		"ci":           "90",
		"daily":        "true",
		"_param_count": "4",
	}
	if len(got) != len(want) {
		t.Errorf("got %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %q, want %q", k, got[k], v)
		}
	}
	if sanitizeToolParams(nil) != nil {
		t.Error("nil params should give nil")
	}
}

func TestToolCallsAreAudited(t *testing.T) {
	dir := t.TempDir()
	server, err := NewServer(&Config{Name: "vacsim", Settings: testSettings(), AuditDir: dir})
	if err != nil {
		t.Fatal(err)
	}

	_, _, _ = server.handleVacsimSample(context.Background(), &sdk.CallToolRequest{}, VacsimSampleInput{Replicates: 5})
	_, _, _ = server.handleVacsimSample(context.Background(), &sdk.CallToolRequest{}, VacsimSampleInput{Replicates: -1})
	server.Close()

	entries := readAuditEntries(t, filepath.Join(dir, "audit.jsonl"))
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Status != "success" || entries[0].Params["replicates"] != "5" {
		t.Errorf("first entry = %+v", entries[0])
	}
	if entries[1].Status != "error" {
		t.Errorf("second entry status = %q, want error", entries[1].Status)
	}
}
