package scoring

import (
	"context"
	"fmt"

	types "github.com/yungbote/themescore-backend/internal/domain"
	"github.com/yungbote/themescore-backend/internal/platform/dbctx"
)

// BatchReader yields sentence batches in (doc_id, sentence_id) order using
// keyset pagination. Only the current batch is held in memory.
type BatchReader struct {
	repo      SentenceRepo
	batchSize int
	cursor    types.Cursor
	done      bool
	index     int
}

// NewBatchReader starts after start; pass the zero Cursor to read from the beginning.
func NewBatchReader(repo SentenceRepo, batchSize int, start types.Cursor) (*BatchReader, error) {
	if repo == nil {
		return nil, fmt.Errorf("batch reader: nil sentence repo")
	}
	if batchSize <= 0 {
		return nil, fmt.Errorf("batch reader: batch size must be positive, got %d", batchSize)
	}
	return &BatchReader{repo: repo, batchSize: batchSize, cursor: start}, nil
}

// Next returns the next batch. ok is false once the source is exhausted.
func (b *BatchReader) Next(ctx context.Context) (batch []types.SentenceRecord, ok bool, err error) {
	if b.done {
		return nil, false, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	rows, err := b.repo.FetchAfter(dbctx.Context{Ctx: ctx}, b.cursor, b.batchSize)
	if err != nil {
		return nil, false, fmt.Errorf("fetch sentences after %+v: %w", b.cursor, err)
	}
	if len(rows) == 0 {
		b.done = true
		return nil, false, nil
	}
	if len(rows) < b.batchSize {
		b.done = true
	}
	last := rows[len(rows)-1]
	b.cursor = types.Cursor{DocID: last.DocID, SentenceID: last.SentenceID}
	b.index++
	return rows, true, nil
}

// Cursor is the key of the last sentence handed out; a new reader started
// from it resumes right after the last returned batch.
func (b *BatchReader) Cursor() types.Cursor { return b.cursor }

// Index is the 1-based number of the last batch returned.
func (b *BatchReader) Index() int { return b.index }
