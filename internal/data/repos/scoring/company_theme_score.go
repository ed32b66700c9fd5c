package scoring

import (
	"time"

	"gorm.io/gorm"

	types "github.com/yungbote/themescore-backend/internal/domain"
	"github.com/yungbote/themescore-backend/internal/platform/dbctx"
	"github.com/yungbote/themescore-backend/internal/platform/logger"
)

// The WHERE clause is required by SQLite to disambiguate INSERT ... SELECT ... ON CONFLICT.
const refreshCompanyThemeSQL = `
INSERT INTO company_theme_scores_v2
  (company_id, theme_id, avg_score, n_sentences, avg_final_100, updated_at)
SELECT company_id, theme_id,
       AVG(theme_score)     AS avg_score,
       COUNT(*)             AS n_sentences,
       AVG(final_score_100) AS avg_final_100,
       ?
FROM sentence_theme_scores_v2
WHERE 1 = 1
GROUP BY company_id, theme_id
ON CONFLICT (company_id, theme_id)
DO UPDATE SET
   avg_score     = excluded.avg_score,
   n_sentences   = excluded.n_sentences,
   avg_final_100 = excluded.avg_final_100,
   updated_at    = excluded.updated_at`

const pruneCompanyThemeSQL = `
DELETE FROM company_theme_scores_v2
WHERE NOT EXISTS (
  SELECT 1 FROM sentence_theme_scores_v2 s
  WHERE s.company_id = company_theme_scores_v2.company_id
    AND s.theme_id = company_theme_scores_v2.theme_id
)`

type CompanyThemeScoreRepo interface {
	// Refresh recomputes every (company, theme) group from the sentence scores
	// and removes groups that no longer have rows. Callers run it inside one
	// transaction so readers never observe a partial rollup.
	Refresh(dbc dbctx.Context) (upserted int64, pruned int64, err error)
	ListByCompany(dbc dbctx.Context, companyID string) ([]*types.CompanyThemeScore, error)
	TopByTheme(dbc dbctx.Context, themeID string, limit int) ([]*types.CompanyThemeScore, error)
	Get(dbc dbctx.Context, companyID, themeID string) (*types.CompanyThemeScore, error)
}

type companyThemeScoreRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCompanyThemeScoreRepo(db *gorm.DB, baseLog *logger.Logger) CompanyThemeScoreRepo {
	return &companyThemeScoreRepo{db: db, log: baseLog.With("repo", "CompanyThemeScoreRepo")}
}

func (r *companyThemeScoreRepo) Refresh(dbc dbctx.Context) (int64, int64, error) {
	conn := dbc.Conn(r.db)
	res := conn.Exec(refreshCompanyThemeSQL, time.Now().UTC())
	if res.Error != nil {
		return 0, 0, res.Error
	}
	upserted := res.RowsAffected
	res = conn.Exec(pruneCompanyThemeSQL)
	if res.Error != nil {
		return upserted, 0, res.Error
	}
	return upserted, res.RowsAffected, nil
}

func (r *companyThemeScoreRepo) ListByCompany(dbc dbctx.Context, companyID string) ([]*types.CompanyThemeScore, error) {
	var out []*types.CompanyThemeScore
	if err := dbc.Conn(r.db).
		Where("company_id = ?", companyID).
		Order("theme_id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *companyThemeScoreRepo) TopByTheme(dbc dbctx.Context, themeID string, limit int) ([]*types.CompanyThemeScore, error) {
	var out []*types.CompanyThemeScore
	q := dbc.Conn(r.db).
		Where("theme_id = ?", themeID).
		Order("avg_final_100 DESC, company_id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *companyThemeScoreRepo) Get(dbc dbctx.Context, companyID, themeID string) (*types.CompanyThemeScore, error) {
	var out []*types.CompanyThemeScore
	if err := dbc.Conn(r.db).
		Where("company_id = ? AND theme_id = ?", companyID, themeID).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}
