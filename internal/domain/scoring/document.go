package scoring

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Document is one filing. Owned by the upstream loader; read-only here.
type Document struct {
	DocID      string     `gorm:"column:doc_id;type:text;primaryKey" json:"doc_id"`
	CompanyID  string     `gorm:"column:company_id;type:text;index" json:"company_id"`
	Ticker     string     `gorm:"column:ticker;type:text" json:"ticker,omitempty"`
	CIK        string     `gorm:"column:cik;type:text" json:"cik,omitempty"`
	SourceType string     `gorm:"column:source_type;type:text" json:"source_type,omitempty"`
	Date       *time.Time `gorm:"column:date;type:date;index" json:"date,omitempty"`
	FilePath   string     `gorm:"column:file_path;type:text" json:"file_path,omitempty"`
}

func (Document) TableName() string { return "documents" }

// Sentence is a cleaned sentence keyed by (doc_id, sentence_id).
type Sentence struct {
	DocID      string `gorm:"column:doc_id;type:text;primaryKey" json:"doc_id"`
	SentenceID int    `gorm:"column:sentence_id;primaryKey;autoIncrement:false" json:"sentence_id"`
	Text       string `gorm:"column:text;type:text;not null" json:"text"`
}

func (Sentence) TableName() string { return "sentences" }

// SentenceRecord is a sentence joined with its owning document.
type SentenceRecord struct {
	DocID      string     `gorm:"column:doc_id" json:"doc_id"`
	SentenceID int        `gorm:"column:sentence_id" json:"sentence_id"`
	Text       string     `gorm:"column:text" json:"text"`
	CompanyID  string     `gorm:"column:company_id" json:"company_id"`
	DocDate    *time.Time `gorm:"column:doc_date" json:"doc_date,omitempty"`
}

// Cursor is a position in the (doc_id, sentence_id) ordering. The zero value
// means "before the first sentence".
type Cursor struct {
	DocID      string
	SentenceID int
}

func (c Cursor) IsZero() bool { return c.DocID == "" && c.SentenceID == 0 }

// String renders the cursor as "doc_id:sentence_id".
func (c Cursor) String() string { return fmt.Sprintf("%s:%d", c.DocID, c.SentenceID) }

// ParseCursor reads the String form. Document ids may contain colons; the
// sentence id is whatever follows the last one.
func ParseCursor(s string) (Cursor, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Cursor{}, nil
	}
	i := strings.LastIndex(s, ":")
	if i <= 0 || i == len(s)-1 {
		return Cursor{}, fmt.Errorf("cursor %q: want doc_id:sentence_id", s)
	}
	sid, err := strconv.Atoi(s[i+1:])
	if err != nil || sid < 0 {
		return Cursor{}, fmt.Errorf("cursor %q: sentence id must be a non-negative integer", s)
	}
	return Cursor{DocID: s[:i], SentenceID: sid}, nil
}
