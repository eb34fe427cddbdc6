package services

import (
	"context"

	"craftpress/internal/config"
)

// ContentProvider generates a post description for an asset display name.
// Implementations must reject degenerate output (empty or too-short text)
// with an error rather than returning it.
type ContentProvider interface {
	GenerateDescription(ctx context.Context, name string) (string, error)
}

// ImageProvider produces an image file for an asset. Implementations must
// return an error when no image can be found or generated; a post is never
// published without one.
type ImageProvider interface {
	GetOrGenerateImage(ctx context.Context, name string) (string, error)
}

// HostingProvider uploads a local file to the file-sharing service and returns
// its public download reference.
type HostingProvider interface {
	Upload(ctx context.Context, filePath string) (string, error)
}

// Classifier maps an asset name and its generated description to a taxonomy
// category. Callers substitute a configured default category on error.
type Classifier interface {
	Classify(ctx context.Context, name, description string) (config.Category, error)
}

// PostRequest carries everything needed to publish one post.
type PostRequest struct {
	Title     string
	Body      string
	ImagePath string
	Category  config.Category
}

// PostRef identifies a published post.
type PostRef struct {
	ID   int64
	Link string
}

// Publisher creates posts on the content-management system.
type Publisher interface {
	CreatePost(ctx context.Context, post PostRequest) (PostRef, error)
}

// HealthChecker is implemented by service clients that support a connectivity check.
type HealthChecker interface {
	Name() string
	HealthCheck(ctx context.Context) error
}
