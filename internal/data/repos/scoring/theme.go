package scoring

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/themescore-backend/internal/domain"
	"github.com/yungbote/themescore-backend/internal/platform/dbctx"
	"github.com/yungbote/themescore-backend/internal/platform/logger"
)

type ThemeRepo interface {
	List(dbc dbctx.Context) ([]*types.Theme, error)
	Upsert(dbc dbctx.Context, themes []*types.Theme) error
}

type themeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewThemeRepo(db *gorm.DB, baseLog *logger.Logger) ThemeRepo {
	return &themeRepo{db: db, log: baseLog.With("repo", "ThemeRepo")}
}

func (r *themeRepo) List(dbc dbctx.Context) ([]*types.Theme, error) {
	var out []*types.Theme
	if err := dbc.Conn(r.db).Order("theme_id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *themeRepo) Upsert(dbc dbctx.Context, themes []*types.Theme) error {
	if len(themes) == 0 {
		return nil
	}
	return dbc.Conn(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "theme_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"theme", "keywords"}),
		}).
		Create(themes).Error
}
