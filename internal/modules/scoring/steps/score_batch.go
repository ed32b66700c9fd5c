package steps

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	types "github.com/yungbote/themescore-backend/internal/domain"
	"github.com/yungbote/themescore-backend/internal/modules/scoring/oracle"
	"github.com/yungbote/themescore-backend/internal/modules/scoring/signals"
	"github.com/yungbote/themescore-backend/internal/observability"
	apperr "github.com/yungbote/themescore-backend/internal/pkg/errors"
)

type ScoreBatchDeps struct {
	Embedder   oracle.Embedder
	Classifier oracle.SentimentClassifier
	Metrics    *observability.Metrics
	// Now stamps scored_at; defaults to time.Now.
	Now func() time.Time
}

type ScoreBatchInput struct {
	Run   *RunContext
	Batch []types.SentenceRecord
	Index int
}

type ScoreBatchOutput struct {
	Rows      []*types.SentenceThemeScore
	Sentences int
}

// ScoreBatch scores every sentence of one batch against every catalog theme.
// Sentences are embedded and classified once for the batch; oracle errors
// abort the batch and come back as OracleFailure.
func ScoreBatch(ctx context.Context, deps ScoreBatchDeps, in ScoreBatchInput) (ScoreBatchOutput, error) {
	out := ScoreBatchOutput{}
	if deps.Embedder == nil || deps.Classifier == nil || in.Run == nil {
		return out, fmt.Errorf("score_batch: missing deps")
	}
	if len(in.Batch) == 0 {
		return out, nil
	}

	ctx, span := observability.Tracer().Start(ctx, "scoring.score_batch")
	defer span.End()
	span.SetAttributes(
		attribute.Int("batch.index", in.Index),
		attribute.Int("batch.sentences", len(in.Batch)),
		attribute.Int("batch.themes", len(in.Run.Themes)),
	)

	texts := make([]string, len(in.Batch))
	for i, s := range in.Batch {
		texts[i] = s.Text
	}

	start := time.Now()
	vecs, err := deps.Embedder.Embed(ctx, texts)
	deps.Metrics.ObserveOracle("embed", err, time.Since(start))
	if err == nil && len(vecs) != len(texts) {
		err = fmt.Errorf("got %d vectors for %d sentences", len(vecs), len(texts))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "embed failed")
		return out, apperr.Oracle(fmt.Sprintf("embed batch %d", in.Index), err)
	}
	for i := range vecs {
		oracle.Normalize(vecs[i])
	}

	start = time.Now()
	pols, err := signals.PolarityAndConfidence(ctx, deps.Classifier, texts, in.Run.SubBatch)
	deps.Metrics.ObserveOracle("sentiment", err, time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "sentiment failed")
		return out, apperr.Oracle(fmt.Sprintf("sentiment batch %d", in.Index), err)
	}

	weights := make([]float64, len(in.Batch))
	for i, s := range in.Batch {
		weights[i] = in.Run.Weights.TimeWeight(s.DocDate, in.Run.NewestDate)
	}

	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}
	scoredAt := now().UTC()

	w := in.Run.Weights
	rows := make([]*types.SentenceThemeScore, 0, len(in.Batch)*len(in.Run.Themes))
	for _, th := range in.Run.Themes {
		sem := signals.SemanticSimilarity(vecs, th.Vector)
		pho := signals.PhoneticSimilarities(texts, th.KwText)
		for i, s := range in.Batch {
			c := signals.Compose(w, sem[i], pho[i], pols[i].Value, weights[i])
			rows = append(rows, &types.SentenceThemeScore{
				DocID:         s.DocID,
				SentenceID:    s.SentenceID,
				ThemeID:       th.ThemeID,
				CompanyID:     s.CompanyID,
				SemanticSim:   sem[i],
				PhoneticSim:   pho[i],
				Polarity:      signals.Direction(pols[i].Value),
				Confidence:    pols[i].Confidence,
				Alpha:         w.Alpha,
				Beta:          w.Beta,
				RawBase:       c.RawBase,
				TimeWeight:    weights[i],
				FinalScore100: c.FinalScore100,
				ThemeScore:    c.ThemeScore,
				ScoredAt:      scoredAt,
			})
		}
	}
	out.Rows = rows
	out.Sentences = len(in.Batch)
	span.SetAttributes(attribute.Int("batch.rows", len(rows)))
	return out, nil
}
