package scoring

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/themescore-backend/internal/domain"
	"github.com/yungbote/themescore-backend/internal/platform/dbctx"
	"github.com/yungbote/themescore-backend/internal/platform/logger"
)

// upsertPageSize keeps a single INSERT well under driver bind-parameter limits.
const upsertPageSize = 500

var sentenceScoreUpdateColumns = []string{
	"company_id",
	"semantic_sim",
	"phonetic_sim",
	"polarity",
	"confidence",
	"alpha",
	"beta",
	"raw_base",
	"time_weight",
	"final_score_100",
	"theme_score",
	"scored_at",
}

type SentenceThemeScoreRepo interface {
	// Upsert inserts or replaces rows by (doc_id, sentence_id, theme_id).
	Upsert(dbc dbctx.Context, rows []*types.SentenceThemeScore) error
	ListByDoc(dbc dbctx.Context, docID string, themeID string) ([]*types.SentenceThemeScore, error)
	CountByCompanyTheme(dbc dbctx.Context, companyID, themeID string) (int64, error)
}

type sentenceThemeScoreRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSentenceThemeScoreRepo(db *gorm.DB, baseLog *logger.Logger) SentenceThemeScoreRepo {
	return &sentenceThemeScoreRepo{db: db, log: baseLog.With("repo", "SentenceThemeScoreRepo")}
}

func (r *sentenceThemeScoreRepo) Upsert(dbc dbctx.Context, rows []*types.SentenceThemeScore) error {
	if len(rows) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for _, row := range rows {
		if row.ScoredAt.IsZero() {
			row.ScoredAt = now
		}
	}
	return dbc.Conn(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "doc_id"}, {Name: "sentence_id"}, {Name: "theme_id"}},
			DoUpdates: clause.AssignmentColumns(sentenceScoreUpdateColumns),
		}).
		CreateInBatches(rows, upsertPageSize).Error
}

func (r *sentenceThemeScoreRepo) ListByDoc(dbc dbctx.Context, docID string, themeID string) ([]*types.SentenceThemeScore, error) {
	var out []*types.SentenceThemeScore
	q := dbc.Conn(r.db).Where("doc_id = ?", docID)
	if themeID != "" {
		q = q.Where("theme_id = ?", themeID)
	}
	if err := q.Order("sentence_id ASC, theme_id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *sentenceThemeScoreRepo) CountByCompanyTheme(dbc dbctx.Context, companyID, themeID string) (int64, error) {
	var n int64
	err := dbc.Conn(r.db).
		Model(&types.SentenceThemeScore{}).
		Where("company_id = ? AND theme_id = ?", companyID, themeID).
		Count(&n).Error
	return n, err
}
