package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

var ErrConfigNotFound = errors.New("configuration not found")

type Settings struct {
	GitHub   GitHubConfig `toml:"github"`
	Defaults Defaults     `toml:"defaults"`
	Log      LogConfig    `toml:"log"`
}

type GitHubConfig struct {
	Token  string `toml:"token"`
	APIURL string `toml:"api_url,omitempty"`
}

type Defaults struct {
	IssueFile         string `toml:"issue_file,omitempty"`
	IterationFallback string `toml:"iteration_fallback,omitempty"`
}

type LogConfig struct {
	Level string `toml:"level,omitempty"`
}

func Load() (*Settings, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	settings := &Settings{}
	if err := toml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return settings, nil
}

// Resolve layers the settings file, a .env file in the working directory
// and the process environment, later sources winning.
func Resolve() (*Settings, error) {
	settings, err := Load()
	if err != nil {
		if !errors.Is(err, ErrConfigNotFound) {
			return nil, err
		}
		settings = &Settings{}
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	settings.ApplyEnv()
	return settings, nil
}

// ApplyEnv overrides settings from GH_TOKEN and the GH_CPI_* variables.
func (s *Settings) ApplyEnv() {
	if v := firstEnv("GH_TOKEN", "GITHUB_TOKEN"); v != "" {
		s.GitHub.Token = v
	}
	if v := os.Getenv("GH_CPI_API_URL"); v != "" {
		s.GitHub.APIURL = v
	}
	if v := os.Getenv("GH_CPI_ISSUE_FILE"); v != "" {
		s.Defaults.IssueFile = v
	}
	if v := os.Getenv("GH_CPI_ITERATION_FALLBACK"); v != "" {
		s.Defaults.IterationFallback = v
	}
	if v := os.Getenv("GH_CPI_LOG_LEVEL"); v != "" {
		s.Log.Level = v
	}
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return ""
}

func (s *Settings) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(data); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	if err := file.Chmod(0o600); err != nil {
		return fmt.Errorf("chmod config: %w", err)
	}

	return nil
}

// Set assigns a section.field key as used by "config set".
func (s *Settings) Set(key, value string) error {
	parts := strings.Split(key, ".")
	if len(parts) != 2 {
		return errors.New("invalid key format. Use section.field (e.g., github.token)")
	}

	section, field := parts[0], parts[1]
	switch section {
	case "github":
		switch field {
		case "token":
			s.GitHub.Token = value
		case "api_url":
			s.GitHub.APIURL = value
		default:
			return fmt.Errorf("unknown github field: %s", field)
		}
	case "defaults":
		switch field {
		case "issue_file":
			s.Defaults.IssueFile = value
		case "iteration_fallback":
			if value != "strict" && value != "nearest" {
				return fmt.Errorf("iteration_fallback must be strict or nearest")
			}
			s.Defaults.IterationFallback = value
		default:
			return fmt.Errorf("unknown defaults field: %s", field)
		}
	case "log":
		switch field {
		case "level":
			s.Log.Level = value
		default:
			return fmt.Errorf("unknown log field: %s", field)
		}
	default:
		return fmt.Errorf("unknown configuration section: %s", section)
	}
	return nil
}

func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".ghcpi"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func MaskToken(token string) string {
	if len(token) <= 4 {
		return strings.Repeat("*", len(token))
	}
	return fmt.Sprintf("%s***%s", token[:4], token[len(token)-4:])
}
