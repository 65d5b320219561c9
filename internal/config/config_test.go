package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"GEMINI_API_KEY", "API_KEY", "CRAMR_PROVIDER", "CRAMR_MODEL",
		"OLLAMA_URL", "CRAMR_DB_PATH", "CRAMR_IMPORT_MODE", "CRAMR_DEBUG"} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// ============================================================
// Load
// ============================================================

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Provider != ProviderGemini || cfg.ImportMode != ImportAppend || cfg.Debug || cfg.APIKey != "" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "provider: ollama\nmodel: llava\nollama_url: http://gpu:11434\nimport_mode: replace\ndebug: true\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Provider != ProviderOllama || cfg.Model != "llava" || cfg.OllamaURL != "http://gpu:11434" {
		t.Fatalf("file not applied: %+v", cfg)
	}
	if cfg.ImportMode != ImportReplace || !cfg.Debug {
		t.Fatalf("file not applied: %+v", cfg)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "provider: ollama\napi_key: from-file\n")
	t.Setenv("CRAMR_PROVIDER", "Gemini")
	t.Setenv("GEMINI_API_KEY", "from-env")
	t.Setenv("CRAMR_DB_PATH", "/tmp/x.db")
	t.Setenv("CRAMR_IMPORT_MODE", " REPLACE ")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Provider != ProviderGemini || cfg.APIKey != "from-env" || cfg.DBPath != "/tmp/x.db" || cfg.ImportMode != ImportReplace {
		t.Fatalf("env not applied: %+v", cfg)
	}
}

func TestAPIKeyFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_KEY", "legacy")
	if cfg := FromEnv(Default()); cfg.APIKey != "legacy" {
		t.Fatalf("APIKey = %q", cfg.APIKey)
	}
	t.Setenv("GEMINI_API_KEY", "preferred")
	if cfg := FromEnv(Default()); cfg.APIKey != "preferred" {
		t.Fatalf("GEMINI_API_KEY should win, got %q", cfg.APIKey)
	}
}

func TestLoadRejectsUnknownValues(t *testing.T) {
	clearEnv(t)
	missing := filepath.Join(t.TempDir(), "missing.yaml")

	t.Setenv("CRAMR_PROVIDER", "openai")
	if _, err := Load(missing); err == nil || !strings.Contains(err.Error(), "provider") {
		t.Fatalf("expected provider error, got %v", err)
	}

	t.Setenv("CRAMR_PROVIDER", "")
	t.Setenv("CRAMR_IMPORT_MODE", "merge")
	if _, err := Load(missing); err == nil || !strings.Contains(err.Error(), "import mode") {
		t.Fatalf("expected import mode error, got %v", err)
	}
}

func TestLoadBadYAML(t *testing.T) {
	clearEnv(t)
	if _, err := Load(writeFile(t, "provider: [unclosed\n")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestDefaultPath(t *testing.T) {
	path, err := DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "config.yaml" || filepath.Base(filepath.Dir(path)) != "cramr" {
		t.Fatalf("unexpected path %q", path)
	}
}

// ============================================================
// Env helpers
// ============================================================

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		raw    string
		want   bool
		wantOK bool
	}{
		{"", false, false},
		{"1", true, true},
		{"TRUE", true, true},
		{"on", true, true},
		{"no", false, true},
		{"0", false, true},
		{"2", true, true},
		{"maybe", false, false},
	}
	for _, tt := range tests {
		t.Setenv("CRAMR_TEST_BOOL", tt.raw)
		got, ok := getEnvBool("CRAMR_TEST_BOOL")
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("getEnvBool(%q) = %v, %v; want %v, %v", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}
