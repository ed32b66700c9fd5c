package scoring

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/themescore-backend/internal/domain"
	"github.com/yungbote/themescore-backend/internal/platform/dbctx"
	"github.com/yungbote/themescore-backend/internal/platform/logger"
)

type DocumentRepo interface {
	// NewestDate returns the most recent document date, or nil when no
	// document carries a date.
	NewestDate(dbc dbctx.Context) (*time.Time, error)
	Upsert(dbc dbctx.Context, docs []*types.Document) error
}

type documentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDocumentRepo(db *gorm.DB, baseLog *logger.Logger) DocumentRepo {
	return &documentRepo{db: db, log: baseLog.With("repo", "DocumentRepo")}
}

func (r *documentRepo) NewestDate(dbc dbctx.Context) (*time.Time, error) {
	var docs []*types.Document
	if err := dbc.Conn(r.db).
		Where("date IS NOT NULL").
		Order("date DESC").
		Limit(1).
		Find(&docs).Error; err != nil {
		return nil, err
	}
	if len(docs) == 0 || docs[0].Date == nil {
		return nil, nil
	}
	d := truncateDay(*docs[0].Date)
	return &d, nil
}

func (r *documentRepo) Upsert(dbc dbctx.Context, docs []*types.Document) error {
	if len(docs) == 0 {
		return nil
	}
	return dbc.Conn(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "doc_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"company_id", "ticker", "cik", "source_type", "date", "file_path"}),
		}).
		CreateInBatches(docs, 500).Error
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
