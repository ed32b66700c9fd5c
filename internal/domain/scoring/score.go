package scoring

import "time"

// SentenceThemeScore is one (sentence, theme) score row.
//
// ThemeScore always equals RawBase; both columns are kept because downstream
// readers use either name.
type SentenceThemeScore struct {
	DocID         string    `gorm:"column:doc_id;type:text;primaryKey" json:"doc_id"`
	SentenceID    int       `gorm:"column:sentence_id;primaryKey;autoIncrement:false" json:"sentence_id"`
	ThemeID       string    `gorm:"column:theme_id;type:text;primaryKey" json:"theme_id"`
	CompanyID     string    `gorm:"column:company_id;type:text;not null;index:idx_sts_company_theme" json:"company_id"`
	SemanticSim   float64   `gorm:"column:semantic_sim;not null" json:"semantic_sim"`
	PhoneticSim   float64   `gorm:"column:phonetic_sim;not null" json:"phonetic_sim"`
	Polarity      int       `gorm:"column:polarity;not null" json:"polarity"`
	Confidence    float64   `gorm:"column:confidence;not null" json:"confidence"`
	Alpha         float64   `gorm:"column:alpha;not null;default:0.8" json:"alpha"`
	Beta          float64   `gorm:"column:beta;not null;default:0.2" json:"beta"`
	RawBase       float64   `gorm:"column:raw_base" json:"raw_base"`
	TimeWeight    float64   `gorm:"column:time_weight" json:"time_weight"`
	FinalScore100 float64   `gorm:"column:final_score_100" json:"final_score_100"`
	ThemeScore    float64   `gorm:"column:theme_score" json:"theme_score"`
	ScoredAt      time.Time `gorm:"column:scored_at" json:"scored_at"`
}

func (SentenceThemeScore) TableName() string { return "sentence_theme_scores_v2" }

// CompanyThemeScore is the per (company, theme) rollup of SentenceThemeScore.
type CompanyThemeScore struct {
	CompanyID   string    `gorm:"column:company_id;type:text;primaryKey" json:"company_id"`
	ThemeID     string    `gorm:"column:theme_id;type:text;primaryKey" json:"theme_id"`
	AvgScore    float64   `gorm:"column:avg_score;not null" json:"avg_score"`
	NSentences  int       `gorm:"column:n_sentences;not null" json:"n_sentences"`
	AvgFinal100 float64   `gorm:"column:avg_final_100" json:"avg_final_100"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime:false" json:"updated_at"`
}

func (CompanyThemeScore) TableName() string { return "company_theme_scores_v2" }
