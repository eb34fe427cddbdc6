package classify_test

import (
	"context"
	"errors"
	"testing"

	"craftpress/internal/config"
	"craftpress/internal/services/classify"
)

func taxonomy() []config.Category {
	return []config.Category{
		{ID: 5, Name: "Games", Keywords: []string{"game", "pokemon"}},
		{ID: 6, Name: "Gundam", Keywords: []string{"gundam", "robot", "mecha"}},
		{ID: 14, Name: "Vehicles", Keywords: []string{"car", "plane", "train"}},
	}
}

type stubCompleter struct {
	response string
	err      error
	called   bool
}

func (s *stubCompleter) Complete(context.Context, string, string) (string, error) {
	s.called = true
	return s.response, s.err
}

func TestClassifyMatchesKeywords(t *testing.T) {
	llm := &stubCompleter{}
	classifier := classify.New(taxonomy(), llm)

	category, err := classifier.Classify(context.Background(), "Pokemon Pikachu", "A cute pocket monster model.")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if category.ID != 5 {
		t.Fatalf("expected Games (5), got %+v", category)
	}
	if llm.called {
		t.Fatal("keyword hit must not invoke the language model")
	}
}

func TestClassifyPrefersHigherKeywordScore(t *testing.T) {
	classifier := classify.New(taxonomy(), nil)

	category, err := classifier.Classify(context.Background(), "Gundam RX-78", "A robot mecha model, a classic gundam kit.")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if category.ID != 6 {
		t.Fatalf("expected Gundam (6), got %+v", category)
	}
}

func TestClassifyFallsBackToLanguageModel(t *testing.T) {
	llm := &stubCompleter{response: "```json\n{\"category_id\": 14}\n```"}
	classifier := classify.New(taxonomy(), llm)

	category, err := classifier.Classify(context.Background(), "Shinkansen", "A bullet express model.")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if !llm.called {
		t.Fatal("expected fallback to invoke the language model")
	}
	if category.ID != 14 {
		t.Fatalf("expected Vehicles (14), got %+v", category)
	}
}

func TestClassifyFailsWhenNothingMatches(t *testing.T) {
	classifier := classify.New(taxonomy(), nil)
	if _, err := classifier.Classify(context.Background(), "Mystery Box", "Nothing identifiable."); err == nil {
		t.Fatal("expected error when no keyword matches and no model is configured")
	}

	withBadModel := classify.New(taxonomy(), &stubCompleter{err: errors.New("model unavailable")})
	if _, err := withBadModel.Classify(context.Background(), "Mystery Box", "Nothing identifiable."); err == nil {
		t.Fatal("expected model error to surface")
	}

	withUnknownID := classify.New(taxonomy(), &stubCompleter{response: `{"category_id": 99}`})
	if _, err := withUnknownID.Classify(context.Background(), "Mystery Box", "Nothing identifiable."); err == nil {
		t.Fatal("expected unknown category id to be rejected")
	}
}
