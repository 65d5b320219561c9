// Package config resolves runtime settings from an optional .env file, an
// optional YAML file and the environment, in that order of precedence from
// lowest to highest.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"

	ImportAppend  = "append"
	ImportReplace = "replace"
)

type Config struct {
	Provider   string `yaml:"provider"`
	APIKey     string `yaml:"api_key"`
	Model      string `yaml:"model"`
	OllamaURL  string `yaml:"ollama_url"`
	DBPath     string `yaml:"db_path"`
	ImportMode string `yaml:"import_mode"`
	Debug      bool   `yaml:"debug"`
}

func Default() Config {
	return Config{
		Provider:   ProviderGemini,
		ImportMode: ImportAppend,
	}
}

// Dir is the per-user directory holding the database, config file and
// debug log.
func Dir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get config dir: %w", err)
	}
	return filepath.Join(dir, "cramr"), nil
}

// DefaultPath is <config dir>/cramr/config.yaml.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads .env from the working directory if present, then the YAML
// file at path if present, then environment overrides. An empty path means
// DefaultPath.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("[config] .env: %v", err)
	}

	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return Config{}, err
		}
		path = p
	}

	cfg, err := LoadFile(path, Default())
	if err != nil {
		return Config{}, err
	}
	return FromEnv(cfg).normalize()
}

// LoadFile overlays the YAML file at path onto base. A missing file is not
// an error.
func LoadFile(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return base, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg := base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// FromEnv applies environment overrides onto base.
func FromEnv(base Config) Config {
	cfg := base
	if v, ok := getEnv("GEMINI_API_KEY"); ok {
		cfg.APIKey = v
	} else if v, ok := getEnv("API_KEY"); ok {
		cfg.APIKey = v
	}
	if v, ok := getEnv("CRAMR_PROVIDER"); ok {
		cfg.Provider = v
	}
	if v, ok := getEnv("CRAMR_MODEL"); ok {
		cfg.Model = v
	}
	if v, ok := getEnv("OLLAMA_URL"); ok {
		cfg.OllamaURL = v
	}
	if v, ok := getEnv("CRAMR_DB_PATH"); ok {
		cfg.DBPath = v
	}
	if v, ok := getEnv("CRAMR_IMPORT_MODE"); ok {
		cfg.ImportMode = v
	}
	if v, ok := getEnvBool("CRAMR_DEBUG"); ok {
		cfg.Debug = v
	}
	return cfg
}

func (c Config) normalize() (Config, error) {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.Provider == "" {
		c.Provider = ProviderGemini
	}
	if c.Provider != ProviderGemini && c.Provider != ProviderOllama {
		return Config{}, fmt.Errorf("unknown provider %q (want %s or %s)", c.Provider, ProviderGemini, ProviderOllama)
	}

	c.ImportMode = strings.ToLower(strings.TrimSpace(c.ImportMode))
	if c.ImportMode == "" {
		c.ImportMode = ImportAppend
	}
	if c.ImportMode != ImportAppend && c.ImportMode != ImportReplace {
		return Config{}, fmt.Errorf("unknown import mode %q (want %s or %s)", c.ImportMode, ImportAppend, ImportReplace)
	}
	c.APIKey = strings.TrimSpace(c.APIKey)
	return c, nil
}

func getEnv(name string) (string, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	return raw, raw != ""
}

func getEnvBool(name string) (bool, bool) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return false, false
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n > 0, true
	}
	return false, false
}
