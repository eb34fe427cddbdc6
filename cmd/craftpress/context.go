package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"craftpress/internal/config"
	"craftpress/internal/logging"
	"craftpress/internal/pipeline"
	"craftpress/internal/services/classify"
	"craftpress/internal/services/mediafire"
	"craftpress/internal/services/openai"
	"craftpress/internal/services/wordpress"
	"craftpress/internal/tracker"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) newLogger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.NewFromConfig(cfg)
}

func (c *commandContext) openStore() (tracker.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return tracker.Open(cfg)
}

// serviceClients bundles the live external-service clients.
type serviceClients struct {
	OpenAI    *openai.Client
	MediaFire *mediafire.Client
	WordPress *wordpress.Client
}

func (c *commandContext) newClients() (*serviceClients, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateCredentials(); err != nil {
		return nil, err
	}
	return &serviceClients{
		OpenAI:    openai.NewClient(cfg.OpenAI, cfg.Paths.ImagesDir),
		MediaFire: mediafire.NewClient(cfg.MediaFire),
		WordPress: wordpress.NewClient(cfg.WordPress),
	}, nil
}

func (c *commandContext) newOrchestrator(store tracker.Store, clients *serviceClients, logger *slog.Logger) (*pipeline.Orchestrator, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return pipeline.New(cfg, store, pipeline.Providers{
		Content:    clients.OpenAI,
		Image:      clients.OpenAI,
		Hosting:    clients.MediaFire,
		Classifier: classify.New(cfg.Categories, clients.OpenAI),
		Publisher:  clients.WordPress,
	}, logger)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
