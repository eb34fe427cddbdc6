package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is structurally usable. Service credentials
// are checked separately via ValidateCredentials so commands that only read local
// state can run without them.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateState(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	if err := c.validateCategories(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

// ValidateCredentials ensures the settings needed to reach external services are
// present. Called by commands that invoke collaborators (run, batch, doctor).
func (c *Config) ValidateCredentials() error {
	missing := make([]string, 0, 6)
	if c.OpenAI.APIKey == "" {
		missing = append(missing, "openai.api_key")
	}
	if c.MediaFire.Email == "" {
		missing = append(missing, "mediafire.email")
	}
	if c.MediaFire.Password == "" {
		missing = append(missing, "mediafire.password")
	}
	if c.WordPress.URL == "" {
		missing = append(missing, "wordpress.url")
	}
	if c.WordPress.Username == "" {
		missing = append(missing, "wordpress.username")
	}
	if c.WordPress.AppPassword == "" {
		missing = append(missing, "wordpress.app_password")
	}
	if len(missing) > 0 {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/craftpress/config.toml"
		}
		return fmt.Errorf("missing required settings: %s (edit %s, create with 'craftpress config init')",
			strings.Join(missing, ", "), defaultPath)
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.FilesDir == "" {
		return errors.New("paths.files_dir must be set")
	}
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	if c.Paths.ImagesDir == "" {
		return errors.New("paths.images_dir must be set")
	}
	return nil
}

func (c *Config) validateState() error {
	switch c.State.Backend {
	case "json", "sqlite":
		return nil
	default:
		return fmt.Errorf("state.backend: unsupported value %q (expected json or sqlite)", c.State.Backend)
	}
}

func (c *Config) validatePipeline() error {
	if c.Pipeline.MaxRetries < 1 {
		return errors.New("pipeline.max_retries must be at least 1")
	}
	if c.Pipeline.RetryBaseDelaySeconds < 0 {
		return errors.New("pipeline.retry_base_delay_seconds must not be negative")
	}
	if c.Pipeline.RetryMaxDelaySeconds < 0 {
		return errors.New("pipeline.retry_max_delay_seconds must not be negative")
	}
	if c.Pipeline.AssetDelaySeconds < 0 {
		return errors.New("pipeline.asset_delay_seconds must not be negative")
	}
	if c.Pipeline.BatchSize < 1 {
		return errors.New("pipeline.batch_size must be at least 1")
	}
	if c.Pipeline.BatchDelaySeconds < 0 {
		return errors.New("pipeline.batch_delay_seconds must not be negative")
	}
	if len(c.Pipeline.AcceptedExtensions) == 0 {
		return errors.New("pipeline.accepted_extensions must not be empty")
	}
	if c.Pipeline.MinNameLength < 1 {
		return errors.New("pipeline.min_name_length must be at least 1")
	}
	return nil
}

func (c *Config) validateCategories() error {
	if len(c.Categories) == 0 {
		return errors.New("categories must not be empty")
	}
	seen := make(map[int64]struct{}, len(c.Categories))
	for _, category := range c.Categories {
		if category.ID <= 0 {
			return fmt.Errorf("category %q: id must be positive", category.Name)
		}
		if strings.TrimSpace(category.Name) == "" {
			return fmt.Errorf("category %d: name must be set", category.ID)
		}
		if _, ok := seen[category.ID]; ok {
			return fmt.Errorf("category id %d appears more than once", category.ID)
		}
		seen[category.ID] = struct{}{}
	}
	if _, ok := c.DefaultCategory(); !ok {
		return fmt.Errorf("pipeline.default_category_id %d does not match any category", c.Pipeline.DefaultCategoryID)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
