package scoring

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	RunStatusRunning   = "running"
	RunStatusSucceeded = "succeeded"
	RunStatusFailed    = "failed"
)

// ScoringRun records one non-dry execution of the scoring pipeline.
type ScoringRun struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Status        string         `gorm:"column:status;type:text;not null;index" json:"status"`
	StartedAt     time.Time      `gorm:"column:started_at;not null" json:"started_at"`
	FinishedAt    *time.Time     `gorm:"column:finished_at" json:"finished_at,omitempty"`
	Batches       int            `gorm:"column:batches;not null;default:0" json:"batches"`
	Sentences     int            `gorm:"column:sentences;not null;default:0" json:"sentences"`
	Rows          int            `gorm:"column:rows_written;not null;default:0" json:"rows"`
	Themes        int            `gorm:"column:themes;not null;default:0" json:"themes"`
	NewestDocDate *time.Time     `gorm:"column:newest_doc_date;type:date" json:"newest_doc_date,omitempty"`
	Params        datatypes.JSON `gorm:"column:params" json:"params"`
	Error         string         `gorm:"column:error;type:text" json:"error,omitempty"`
}

func (ScoringRun) TableName() string { return "scoring_runs" }

// RunParams is the snapshot stored in ScoringRun.Params.
type RunParams struct {
	EmbedModel     string  `json:"embed_model"`
	SentimentModel string  `json:"sentiment_model"`
	Alpha          float64 `json:"alpha"`
	Beta           float64 `json:"beta"`
	WRecent        float64 `json:"w_recent"`
	WOld           float64 `json:"w_old"`
	FetchBatch     int     `json:"fetch_batch"`
	PipeBatch      int     `json:"pipe_batch"`
	Pipelined      bool    `json:"pipelined"`
}
