package mcp

import (
	"context"
	"strings"
	"testing"

	"github.com/kastellane/COVID19-Vaccination-Model/internal/config"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"gopkg.in/yaml.v3"
)

func testSettings() *config.VacsimConfig {
	cfg := config.Default()
	cfg.Sampling.Replicates = 10
	cfg.Sampling.EndDate = "2021-03-31"
	cfg.Sampling.MaxRunningTime = 0
	cfg.Sampling.Workers = 2
	return cfg
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	server, err := NewServer(&Config{
		Name:     "test-server",
		Version:  "v1.0.0",
		Settings: testSettings(),
		AuditDir: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	t.Cleanup(func() { server.Close() })
	return server
}

func TestNewServer(t *testing.T) {
	server := newTestServer(t)

	if server.server == nil {
		t.Error("Server.server is nil")
	}
	if server.forecaster == nil {
		t.Error("Server.forecaster is nil")
	}
	if server.auditLogger == nil {
		t.Error("Server.auditLogger is nil")
	}
	if len(server.toolLimiters) != 2 {
		t.Errorf("got %d tool limiters, want 2", len(server.toolLimiters))
	}
}

func TestNewServer_Defaults(t *testing.T) {
	server, err := NewServer(&Config{Name: "vacsim", Version: "dev"})
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	defer server.Close()

	if server.settings == nil || server.settings.Sampling.Replicates != 100 {
		t.Error("expected default settings")
	}
	if server.auditLogger != nil {
		t.Error("audit log should be disabled without AuditDir")
	}
}

func TestNewServer_InvalidCacheSize(t *testing.T) {
	settings := testSettings()
	settings.Cache.Size = 0
	if _, err := NewServer(&Config{Name: "vacsim", Settings: settings}); err == nil {
		t.Error("expected error for zero cache size")
	}
}

func TestConfigResource(t *testing.T) {
	server := newTestServer(t)

	res, err := server.handleConfigResource(context.Background(), &sdk.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("handleConfigResource failed: %v", err)
	}
	if len(res.Contents) != 1 {
		t.Fatalf("got %d contents, want 1", len(res.Contents))
	}
	text := res.Contents[0].Text
	if !strings.Contains(text, "replicates: 10") {
		t.Errorf("config resource missing replicates:\n%s", text)
	}

	var decoded config.VacsimConfig
	if err := yaml.Unmarshal([]byte(text), &decoded); err != nil {
		t.Fatalf("config resource is not valid YAML: %v", err)
	}
	if decoded.Sampling.EndDate != "2021-03-31" {
		t.Errorf("EndDate = %q", decoded.Sampling.EndDate)
	}
}
