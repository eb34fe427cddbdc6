// Package pipeline orchestrates the per-asset stage sequence: eligibility,
// content generation, image acquisition, file hosting, classification, and
// publishing. It owns the terminal-outcome rules: exactly one record-set
// mutation per processed asset, and none for skips.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"craftpress/internal/asset"
	"craftpress/internal/config"
	"craftpress/internal/logging"
	"craftpress/internal/services"
	"craftpress/internal/stageexec"
	"craftpress/internal/tracker"
)

// Stage names used for logging and error context.
const (
	StageContent  = "content"
	StageImage    = "image"
	StageUpload   = "upload"
	StageClassify = "classify"
	StagePublish  = "publish"
)

// Providers bundles the external-service collaborators.
type Providers struct {
	Content    services.ContentProvider
	Image      services.ImageProvider
	Hosting    services.HostingProvider
	Classifier services.Classifier
	Publisher  services.Publisher
}

// Orchestrator runs the stage sequence for one asset at a time.
type Orchestrator struct {
	cfg         *config.Config
	store       tracker.Store
	providers   Providers
	eligibility EligibilityCheck
	logger      *slog.Logger
	sleeper     func(ctx context.Context, d time.Duration) error
}

// Option customizes orchestrator construction.
type Option func(*Orchestrator)

// WithSleeper overrides the backoff sleep used between stage retries.
func WithSleeper(sleeper func(ctx context.Context, d time.Duration) error) Option {
	return func(o *Orchestrator) {
		if sleeper != nil {
			o.sleeper = sleeper
		}
	}
}

// New constructs an orchestrator. All providers are required except the
// classifier, whose absence falls back to the default category.
func New(cfg *config.Config, store tracker.Store, providers Providers, logger *slog.Logger, opts ...Option) (*Orchestrator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("pipeline: config is required")
	}
	if store == nil {
		return nil, fmt.Errorf("pipeline: tracker store is required")
	}
	if providers.Content == nil || providers.Image == nil || providers.Hosting == nil || providers.Publisher == nil {
		return nil, fmt.Errorf("pipeline: content, image, hosting, and publisher providers are required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	o := &Orchestrator{
		cfg:       cfg,
		store:     store,
		providers: providers,
		eligibility: EligibilityCheck{
			MinLength: cfg.Pipeline.MinNameLength,
			DenyList:  cfg.Pipeline.DenyList,
		},
		logger: logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Process runs the full stage sequence for one asset. The force flag bypasses
// the already-processed skip. Stage failures are recorded and reported through
// the outcome; the error return is reserved for record-set mutation failures.
func (o *Orchestrator) Process(ctx context.Context, item asset.Asset, force bool) (Outcome, error) {
	ctx = services.WithAsset(ctx, item.Identity)
	logger := logging.WithContext(ctx, o.logger)

	if !force {
		processed, err := o.store.IsProcessed(ctx, item.Identity)
		if err != nil {
			return Outcome{}, fmt.Errorf("check processed state: %w", err)
		}
		if processed {
			logger.Info("asset already processed, skipping",
				logging.String(logging.FieldEventType, "asset_skipped"))
			return Outcome{Status: StatusSkipped}, nil
		}
	}

	if !o.eligibility.Check(item.DisplayName) {
		logger.Warn("asset name fails eligibility heuristic",
			logging.String(logging.FieldEventType, "asset_rejected"),
			logging.String("display_name", item.DisplayName))
		return o.fail(ctx, logger, item, ReasonInsufficientData, nil, map[string]string{
			"display_name": item.DisplayName,
		})
	}

	logger.Info("processing asset",
		logging.String(logging.FieldEventType, "asset_start"),
		logging.String("display_name", item.DisplayName),
		logging.String("source_file", item.Path))

	var description string
	err := o.runStage(ctx, StageContent, func(ctx context.Context) error {
		var stageErr error
		description, stageErr = o.providers.Content.GenerateDescription(ctx, item.DisplayName)
		return stageErr
	})
	if err != nil {
		return o.failStage(ctx, logger, item, ReasonContentFailed, err, nil)
	}

	var imagePath string
	err = o.runStage(ctx, StageImage, func(ctx context.Context) error {
		var stageErr error
		imagePath, stageErr = o.providers.Image.GetOrGenerateImage(ctx, item.DisplayName)
		if stageErr != nil {
			return stageErr
		}
		// An empty reference is a degenerate result, not a softer kind of
		// success: the stage retries and exhaustion fails the asset.
		if imagePath == "" {
			return services.Wrap(services.ErrDegenerate, StageImage, "acquire image", "no image found or generated", nil)
		}
		return nil
	})
	if err != nil {
		return o.failStage(ctx, logger, item, ReasonImageFailed, err, nil)
	}

	var hostingURL string
	err = o.runStage(ctx, StageUpload, func(ctx context.Context) error {
		var stageErr error
		hostingURL, stageErr = o.providers.Hosting.Upload(ctx, item.Path)
		return stageErr
	})
	if err != nil {
		return o.failStage(ctx, logger, item, ReasonUploadFailed, err, nil)
	}

	category := o.classify(ctx, logger, item.DisplayName, description)

	var post services.PostRef
	err = o.runStage(ctx, StagePublish, func(ctx context.Context) error {
		var stageErr error
		post, stageErr = o.providers.Publisher.CreatePost(ctx, services.PostRequest{
			Title:     item.DisplayName,
			Body:      ComposePostBody(description, hostingURL),
			ImagePath: imagePath,
			Category:  category,
		})
		return stageErr
	})
	if err != nil {
		return o.failStage(ctx, logger, item, ReasonPublishFailed, err, map[string]string{
			"hosting_url": hostingURL,
		})
	}

	artifacts := tracker.Artifacts{HostingURL: hostingURL, PostURL: post.Link}
	if err := o.store.MarkProcessed(ctx, item.Identity, artifacts); err != nil {
		return Outcome{}, fmt.Errorf("record success for %s: %w", item.Identity, err)
	}

	logger.Info("asset published",
		logging.String(logging.FieldEventType, "asset_complete"),
		logging.String("post_url", post.Link),
		logging.String("hosting_url", hostingURL),
		logging.String("category", category.Name))

	return Outcome{
		Status:     StatusSucceeded,
		HostingURL: hostingURL,
		PostURL:    post.Link,
	}, nil
}

func (o *Orchestrator) runStage(ctx context.Context, name string, op stageexec.Operation) error {
	return stageexec.Run(ctx, stageexec.Options{
		Logger:      o.logger,
		StageName:   name,
		MaxAttempts: o.cfg.Pipeline.MaxRetries,
		BaseDelay:   o.cfg.RetryBaseDelay(),
		MaxDelay:    o.cfg.RetryMaxDelay(),
		Sleeper:     o.sleeper,
	}, op)
}

// classify never fails the asset: a classification error or a missing
// classifier resolves to the configured default category.
func (o *Orchestrator) classify(ctx context.Context, logger *slog.Logger, name, description string) config.Category {
	fallback, ok := o.cfg.DefaultCategory()
	if !ok {
		fallback = config.Category{ID: o.cfg.Pipeline.DefaultCategoryID}
	}
	if o.providers.Classifier == nil {
		return fallback
	}
	category, err := o.providers.Classifier.Classify(services.WithStage(ctx, StageClassify), name, description)
	if err != nil {
		logger.Warn("classification failed, using default category",
			logging.String(logging.FieldStage, StageClassify),
			logging.Int64("category_id", fallback.ID),
			logging.Error(err))
		return fallback
	}
	return category
}

// failStage records a stage failure unless the error is an interruption: a
// canceled or expired context propagates to the process boundary without
// touching the record sets, so the asset stays pending for the next run.
func (o *Orchestrator) failStage(ctx context.Context, logger *slog.Logger, item asset.Asset, reason string, stageErr error, detail map[string]string) (Outcome, error) {
	if errors.Is(stageErr, context.Canceled) || errors.Is(stageErr, context.DeadlineExceeded) {
		logger.Info("asset interrupted, leaving it pending",
			logging.String(logging.FieldEventType, "asset_interrupted"),
			logging.String(logging.FieldReason, reason))
		return Outcome{}, stageErr
	}
	return o.fail(ctx, logger, item, reason, stageErr, detail)
}

func (o *Orchestrator) fail(ctx context.Context, logger *slog.Logger, item asset.Asset, reason string, stageErr error, detail map[string]string) (Outcome, error) {
	if stageErr != nil {
		if detail == nil {
			detail = make(map[string]string, 1)
		}
		detail["error"] = stageErr.Error()
	}
	if err := o.store.MarkFailed(ctx, item.Identity, reason, detail); err != nil {
		return Outcome{}, fmt.Errorf("record failure for %s: %w", item.Identity, err)
	}
	logger.Error("asset failed",
		logging.String(logging.FieldEventType, "asset_failure"),
		logging.String(logging.FieldReason, reason),
		logging.Error(stageErr))
	return Outcome{Status: StatusFailed, Reason: reason}, nil
}

// ComposePostBody assembles the post body: the generated description followed
// by the download link paragraph.
func ComposePostBody(description, hostingURL string) string {
	var b strings.Builder
	description = strings.TrimSpace(description)
	if description != "" {
		b.WriteString("<p>")
		b.WriteString(description)
		b.WriteString("</p>\n")
	}
	if hostingURL != "" {
		b.WriteString(fmt.Sprintf("<p><strong>Download:</strong> <a href=%q rel=\"nofollow\">%s</a></p>", hostingURL, hostingURL))
	}
	return b.String()
}
