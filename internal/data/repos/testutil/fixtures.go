package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	types "github.com/yungbote/themescore-backend/internal/domain"
)

// Day builds a UTC calendar date.
func Day(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}

func SeedDocument(tb testing.TB, ctx context.Context, tx *gorm.DB, docID, companyID string, date *time.Time) *types.Document {
	tb.Helper()
	d := &types.Document{
		DocID:      docID,
		CompanyID:  companyID,
		Ticker:     companyID,
		SourceType: "10-K",
		Date:       date,
	}
	if err := tx.WithContext(ctx).Create(d).Error; err != nil {
		tb.Fatalf("seed document: %v", err)
	}
	return d
}

func SeedSentence(tb testing.TB, ctx context.Context, tx *gorm.DB, docID string, sentenceID int, text string) *types.Sentence {
	tb.Helper()
	s := &types.Sentence{DocID: docID, SentenceID: sentenceID, Text: text}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed sentence: %v", err)
	}
	return s
}

// SeedSentences adds n sentences numbered 1..n with generated text.
func SeedSentences(tb testing.TB, ctx context.Context, tx *gorm.DB, docID string, n int) {
	tb.Helper()
	for i := 1; i <= n; i++ {
		SeedSentence(tb, ctx, tx, docID, i, fmt.Sprintf("sentence %d of %s", i, docID))
	}
}

func SeedTheme(tb testing.TB, ctx context.Context, tx *gorm.DB, themeID, theme string, keywords *string) *types.Theme {
	tb.Helper()
	th := &types.Theme{ThemeID: themeID, Theme: theme, Keywords: keywords}
	if err := tx.WithContext(ctx).Create(th).Error; err != nil {
		tb.Fatalf("seed theme: %v", err)
	}
	return th
}

func Ptr[T any](v T) *T { return &v }
