package scoring

import (
	"gorm.io/gorm"

	"github.com/yungbote/themescore-backend/internal/platform/logger"
)

// Set bundles every scoring repository over one handle.
type Set struct {
	Documents      DocumentRepo
	Sentences      SentenceRepo
	Themes         ThemeRepo
	SentenceScores SentenceThemeScoreRepo
	CompanyScores  CompanyThemeScoreRepo
	Runs           ScoringRunRepo
}

func NewSet(db *gorm.DB, log *logger.Logger) Set {
	return Set{
		Documents:      NewDocumentRepo(db, log),
		Sentences:      NewSentenceRepo(db, log),
		Themes:         NewThemeRepo(db, log),
		SentenceScores: NewSentenceThemeScoreRepo(db, log),
		CompanyScores:  NewCompanyThemeScoreRepo(db, log),
		Runs:           NewScoringRunRepo(db, log),
	}
}
