package scoring

import (
	"gorm.io/gorm"

	"github.com/google/uuid"

	types "github.com/yungbote/themescore-backend/internal/domain"
	"github.com/yungbote/themescore-backend/internal/platform/dbctx"
	"github.com/yungbote/themescore-backend/internal/platform/logger"
)

type ScoringRunRepo interface {
	Create(dbc dbctx.Context, run *types.ScoringRun) error
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	Latest(dbc dbctx.Context) (*types.ScoringRun, error)
}

type scoringRunRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewScoringRunRepo(db *gorm.DB, baseLog *logger.Logger) ScoringRunRepo {
	return &scoringRunRepo{db: db, log: baseLog.With("repo", "ScoringRunRepo")}
}

func (r *scoringRunRepo) Create(dbc dbctx.Context, run *types.ScoringRun) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	return dbc.Conn(r.db).Create(run).Error
}

func (r *scoringRunRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return dbc.Conn(r.db).
		Model(&types.ScoringRun{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *scoringRunRepo) Latest(dbc dbctx.Context) (*types.ScoringRun, error) {
	var out []*types.ScoringRun
	if err := dbc.Conn(r.db).Order("started_at DESC").Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}
