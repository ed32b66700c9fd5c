package scoring

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/themescore-backend/internal/domain"
	"github.com/yungbote/themescore-backend/internal/platform/dbctx"
	"github.com/yungbote/themescore-backend/internal/platform/logger"
)

type SentenceRepo interface {
	Count(dbc dbctx.Context) (int64, error)
	// FetchAfter returns up to limit sentences strictly after cursor in
	// (doc_id, sentence_id) order, joined with their document.
	FetchAfter(dbc dbctx.Context, after types.Cursor, limit int) ([]types.SentenceRecord, error)
	Upsert(dbc dbctx.Context, sentences []*types.Sentence) error
}

type sentenceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSentenceRepo(db *gorm.DB, baseLog *logger.Logger) SentenceRepo {
	return &sentenceRepo{db: db, log: baseLog.With("repo", "SentenceRepo")}
}

func (r *sentenceRepo) Count(dbc dbctx.Context) (int64, error) {
	var n int64
	err := dbc.Conn(r.db).
		Table("sentences AS s").
		Joins("JOIN documents AS d ON d.doc_id = s.doc_id").
		Count(&n).Error
	return n, err
}

func (r *sentenceRepo) FetchAfter(dbc dbctx.Context, after types.Cursor, limit int) ([]types.SentenceRecord, error) {
	out := make([]types.SentenceRecord, 0, limit)
	if limit <= 0 {
		return out, nil
	}
	q := dbc.Conn(r.db).
		Table("sentences AS s").
		Select("s.doc_id, s.sentence_id, s.text, d.company_id, d.date AS doc_date").
		Joins("JOIN documents AS d ON d.doc_id = s.doc_id")
	if !after.IsZero() {
		q = q.Where("(s.doc_id > ?) OR (s.doc_id = ? AND s.sentence_id > ?)", after.DocID, after.DocID, after.SentenceID)
	}
	if err := q.Order("s.doc_id ASC, s.sentence_id ASC").Limit(limit).Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *sentenceRepo) Upsert(dbc dbctx.Context, sentences []*types.Sentence) error {
	if len(sentences) == 0 {
		return nil
	}
	return dbc.Conn(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "doc_id"}, {Name: "sentence_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"text"}),
		}).
		CreateInBatches(sentences, 1000).Error
}
