package domain

import "github.com/yungbote/themescore-backend/internal/domain/scoring"

type (
	Document           = scoring.Document
	Sentence           = scoring.Sentence
	SentenceRecord     = scoring.SentenceRecord
	Cursor             = scoring.Cursor
	Theme              = scoring.Theme
	ThemeVector        = scoring.ThemeVector
	SentenceThemeScore = scoring.SentenceThemeScore
	CompanyThemeScore  = scoring.CompanyThemeScore
	ScoringRun         = scoring.ScoringRun
	RunParams          = scoring.RunParams
)

const (
	RunStatusRunning   = scoring.RunStatusRunning
	RunStatusSucceeded = scoring.RunStatusSucceeded
	RunStatusFailed    = scoring.RunStatusFailed
)

var ParseCursor = scoring.ParseCursor

// AllModels lists every table the service owns or reads, in migration order.
func AllModels() []any {
	return []any{
		&Document{},
		&Sentence{},
		&Theme{},
		&SentenceThemeScore{},
		&CompanyThemeScore{},
		&ScoringRun{},
	}
}
