package config

import "strings"

func (c *Config) normalize() error {
	for _, field := range []*string{
		&c.Paths.FilesDir,
		&c.Paths.DataDir,
		&c.Paths.LogDir,
		&c.Paths.ImagesDir,
	} {
		expanded, err := expandPath(strings.TrimSpace(*field))
		if err != nil {
			return err
		}
		*field = expanded
	}

	c.State.Backend = strings.ToLower(strings.TrimSpace(c.State.Backend))
	if c.State.Backend == "" {
		c.State.Backend = defaultStateBackend
	}

	c.OpenAI.APIKey = strings.TrimSpace(c.OpenAI.APIKey)
	c.OpenAI.BaseURL = strings.TrimRight(strings.TrimSpace(c.OpenAI.BaseURL), "/")
	c.OpenAI.Model = strings.TrimSpace(c.OpenAI.Model)
	c.OpenAI.ImageModel = strings.TrimSpace(c.OpenAI.ImageModel)

	c.MediaFire.Email = strings.TrimSpace(c.MediaFire.Email)
	c.MediaFire.BaseURL = strings.TrimRight(strings.TrimSpace(c.MediaFire.BaseURL), "/")
	c.MediaFire.AppID = strings.TrimSpace(c.MediaFire.AppID)

	c.WordPress.URL = strings.TrimRight(strings.TrimSpace(c.WordPress.URL), "/")
	c.WordPress.Username = strings.TrimSpace(c.WordPress.Username)

	c.Pipeline.AcceptedExtensions = normalizeExtensions(c.Pipeline.AcceptedExtensions)
	c.Pipeline.DenyList = normalizeTokens(c.Pipeline.DenyList)

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}

	return nil
}

func normalizeExtensions(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		ext := strings.ToLower(strings.TrimSpace(value))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		out = append(out, ext)
	}
	return out
}

func normalizeTokens(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		token := strings.ToLower(strings.TrimSpace(value))
		if token == "" {
			continue
		}
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		out = append(out, token)
	}
	return out
}
