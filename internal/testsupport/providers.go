package testsupport

import (
	"context"
	"sync"

	"craftpress/internal/config"
	"craftpress/internal/services"
)

// StubServices implements every provider interface with canned responses.
// The zero value succeeds with empty artifacts.
type StubServices struct {
	mu    sync.Mutex
	calls []string

	Description    string
	DescriptionErr error
	ImagePath      string
	ImageErr       error
	HostingURL     string
	UploadErr      error
	Category       config.Category
	ClassifyErr    error
	Post           services.PostRef
	PublishErr     error
}

func (s *StubServices) record(call string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
}

// Calls returns the stage invocations observed so far.
func (s *StubServices) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *StubServices) GenerateDescription(context.Context, string) (string, error) {
	s.record("content")
	if s.Description == "" && s.DescriptionErr == nil {
		return "A papercraft template with detailed assembly instructions.", nil
	}
	return s.Description, s.DescriptionErr
}

func (s *StubServices) GetOrGenerateImage(context.Context, string) (string, error) {
	s.record("image")
	if s.ImagePath == "" && s.ImageErr == nil {
		return "/images/stub.png", nil
	}
	return s.ImagePath, s.ImageErr
}

func (s *StubServices) Upload(context.Context, string) (string, error) {
	s.record("upload")
	if s.HostingURL == "" && s.UploadErr == nil {
		return "https://host.example/file/stub", nil
	}
	return s.HostingURL, s.UploadErr
}

func (s *StubServices) Classify(context.Context, string, string) (config.Category, error) {
	s.record("classify")
	return s.Category, s.ClassifyErr
}

func (s *StubServices) CreatePost(context.Context, services.PostRequest) (services.PostRef, error) {
	s.record("publish")
	if s.Post == (services.PostRef{}) && s.PublishErr == nil {
		return services.PostRef{ID: 1, Link: "https://blog.example.com/?p=1"}, nil
	}
	return s.Post, s.PublishErr
}
