package review

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/yourusername/wordguard/internal/config"
	"github.com/yourusername/wordguard/internal/logger"
	"github.com/yourusername/wordguard/internal/match"
	"github.com/yourusername/wordguard/internal/vocab"
	"go.uber.org/zap"
)

func newTestService(t *testing.T, terms string) *Service {
	t.Helper()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "banned.txt"), []byte(terms), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	registry, err := vocab.NewRegistry(vocab.NewLoader(dir, zap.NewNop()), zap.NewNop())
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	defaults := config.GetDefaults()
	return New(registry, defaults.Review, defaults.Vocabulary, &logger.Logger{Logger: zap.NewNop()})
}

func boolPtr(b bool) *bool { return &b }

func TestServiceReview(t *testing.T) {
	svc := newTestService(t, "secret\nforbidden\n")

	t.Run("RedactsByDefault", func(t *testing.T) {
		result, err := svc.Review(context.Background(), Request{Text: "a secret plan"})
		if err != nil {
			t.Fatalf("Review: %v", err)
		}
		if !result.Flagged {
			t.Error("expected flagged result")
		}
		if result.Redacted != "a ****** plan" {
			t.Errorf("Redacted = %q", result.Redacted)
		}
		if len(result.Spans) != 1 || result.Spans[0].Terms[0] != "secret" {
			t.Errorf("Spans = %+v", result.Spans)
		}
	})

	t.Run("ReportOnlyOmitsRedacted", func(t *testing.T) {
		result, err := svc.Review(context.Background(), Request{
			Text:       "a forbidden word",
			ReportOnly: boolPtr(true),
		})
		if err != nil {
			t.Fatalf("Review: %v", err)
		}
		if result.Redacted != "" {
			t.Errorf("Redacted = %q, want empty", result.Redacted)
		}
		if len(result.Spans) != 1 {
			t.Errorf("Spans = %+v", result.Spans)
		}
	})

	t.Run("CleanTextNotFlagged", func(t *testing.T) {
		result, err := svc.Review(context.Background(), Request{Text: "nothing wrong here"})
		if err != nil {
			t.Fatalf("Review: %v", err)
		}
		if result.Flagged || result.Redacted != "nothing wrong here" {
			t.Errorf("result = %+v", result)
		}
	})

	t.Run("CaseInsensitiveDefault", func(t *testing.T) {
		result, err := svc.Review(context.Background(), Request{Text: "a SECRET plan"})
		if err != nil {
			t.Fatalf("Review: %v", err)
		}
		if !result.Flagged {
			t.Error("default case-insensitive scan missed SECRET")
		}
	})

	t.Run("CaseSensitiveOverride", func(t *testing.T) {
		result, err := svc.Review(context.Background(), Request{
			Text:            "a SECRET plan",
			CaseInsensitive: boolPtr(false),
		})
		if err != nil {
			t.Fatalf("Review: %v", err)
		}
		if result.Flagged {
			t.Error("case-sensitive scan should not match SECRET")
		}
	})

	t.Run("TokenOverride", func(t *testing.T) {
		result, err := svc.Review(context.Background(), Request{
			Text:        "a secret plan",
			RedactMode:  "token",
			RedactToken: "[NOPE]",
		})
		if err != nil {
			t.Fatalf("Review: %v", err)
		}
		if result.Redacted != "a [NOPE] plan" {
			t.Errorf("Redacted = %q", result.Redacted)
		}
	})

	t.Run("AnnotateMode", func(t *testing.T) {
		result, err := svc.Review(context.Background(), Request{
			Text:       "a secret plan",
			RedactMode: "annotate",
		})
		if err != nil {
			t.Fatalf("Review: %v", err)
		}
		if result.Redacted != "a {secret} plan" {
			t.Errorf("Redacted = %q", result.Redacted)
		}
	})

	t.Run("InvalidModeRejected", func(t *testing.T) {
		_, err := svc.Review(context.Background(), Request{
			Text:       "whatever",
			RedactMode: "shuffle",
		})
		if !errors.Is(err, match.ErrInvalidPolicy) {
			t.Errorf("expected ErrInvalidPolicy, got %v", err)
		}
	})

	t.Run("MultiRuneMaskRejected", func(t *testing.T) {
		_, err := svc.Review(context.Background(), Request{
			Text:        "whatever",
			RedactMode:  "mask",
			RedactToken: "##",
		})
		if !errors.Is(err, match.ErrInvalidPolicy) {
			t.Errorf("expected ErrInvalidPolicy, got %v", err)
		}
	})
}

func TestServiceOverlapReport(t *testing.T) {
	svc := newTestService(t, "abc\nbcd\n")

	result, err := svc.Review(context.Background(), Request{Text: "xabcdx"})
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if len(result.Spans) != 1 {
		t.Fatalf("Spans = %+v, want one merged span", result.Spans)
	}
	span := result.Spans[0]
	if span.Start != 1 || span.End != 5 {
		t.Errorf("span = [%d,%d), want [1,5)", span.Start, span.End)
	}
	if len(span.Terms) != 2 {
		t.Errorf("Terms = %v, want both contributing terms", span.Terms)
	}
	if result.Redacted != "x****x" {
		t.Errorf("Redacted = %q", result.Redacted)
	}
}

func TestServiceEmptyVocabulary(t *testing.T) {
	svc := newTestService(t, "")

	result, err := svc.Review(context.Background(), Request{Text: "anything at all"})
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if result.Flagged || result.Redacted != "anything at all" {
		t.Errorf("result = %+v", result)
	}
}
