package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	FilesDir  string `toml:"files_dir"`
	DataDir   string `toml:"data_dir"`
	LogDir    string `toml:"log_dir"`
	ImagesDir string `toml:"images_dir"`
}

// State configures the processing tracker persistence backend.
type State struct {
	Backend string `toml:"backend"`
}

// OpenAI contains configuration for description and image generation.
type OpenAI struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	ImageModel     string `toml:"image_model"`
	ImageSize      string `toml:"image_size"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// MediaFire contains configuration for file hosting.
type MediaFire struct {
	Email          string `toml:"email"`
	Password       string `toml:"password"`
	AppID          string `toml:"app_id"`
	BaseURL        string `toml:"base_url"`
	FolderKey      string `toml:"folder_key"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// WordPress contains configuration for post publishing.
type WordPress struct {
	URL            string `toml:"url"`
	Username       string `toml:"username"`
	AppPassword    string `toml:"app_password"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Pipeline contains processing behavior settings.
type Pipeline struct {
	MaxRetries            int      `toml:"max_retries"`
	RetryBaseDelaySeconds int      `toml:"retry_base_delay_seconds"`
	RetryMaxDelaySeconds  int      `toml:"retry_max_delay_seconds"`
	AssetDelaySeconds     int      `toml:"asset_delay_seconds"`
	BatchSize             int      `toml:"batch_size"`
	BatchDelaySeconds     int      `toml:"batch_delay_seconds"`
	AcceptedExtensions    []string `toml:"accepted_extensions"`
	MinNameLength         int      `toml:"min_name_length"`
	DenyList              []string `toml:"deny_list"`
	DefaultCategoryID     int64    `toml:"default_category_id"`
}

// Category is one entry of the publishing taxonomy.
type Category struct {
	ID       int64    `toml:"id"`
	Name     string   `toml:"name"`
	Keywords []string `toml:"keywords"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for craftpress.
//
// Configuration sections by subsystem:
//   - Paths: backlog, state, log, and image directories
//   - State: tracker persistence backend selection (json or sqlite)
//   - OpenAI: description and image generation settings
//   - MediaFire: file hosting credentials
//   - WordPress: publishing target and credentials
//   - Pipeline: retry, pacing, eligibility, and batching behavior
//   - Categories: publishing taxonomy with keyword lists
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	State      State      `toml:"state"`
	OpenAI     OpenAI     `toml:"openai"`
	MediaFire  MediaFire  `toml:"mediafire"`
	WordPress  WordPress  `toml:"wordpress"`
	Pipeline   Pipeline   `toml:"pipeline"`
	Categories []Category `toml:"categories"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/craftpress/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("craftpress.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for pipeline operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir, c.Paths.ImagesDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// RetryBaseDelay returns the initial backoff delay for stage retries.
func (c *Config) RetryBaseDelay() time.Duration {
	return time.Duration(c.Pipeline.RetryBaseDelaySeconds) * time.Second
}

// RetryMaxDelay returns the backoff delay cap for stage retries.
func (c *Config) RetryMaxDelay() time.Duration {
	return time.Duration(c.Pipeline.RetryMaxDelaySeconds) * time.Second
}

// AssetDelay returns the pacing delay applied after each processed asset.
func (c *Config) AssetDelay() time.Duration {
	return time.Duration(c.Pipeline.AssetDelaySeconds) * time.Second
}

// BatchDelay returns the pacing delay applied between batch windows.
func (c *Config) BatchDelay() time.Duration {
	return time.Duration(c.Pipeline.BatchDelaySeconds) * time.Second
}

// DefaultCategory returns the taxonomy entry used when classification fails.
func (c *Config) DefaultCategory() (Category, bool) {
	for _, category := range c.Categories {
		if category.ID == c.Pipeline.DefaultCategoryID {
			return category, true
		}
	}
	return Category{}, false
}

// CategoryByID returns the taxonomy entry with the given identifier.
func (c *Config) CategoryByID(id int64) (Category, bool) {
	for _, category := range c.Categories {
		if category.ID == id {
			return category, true
		}
	}
	return Category{}, false
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
