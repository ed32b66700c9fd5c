package scoring

import "strings"

// Theme is a row of the themes table. Keywords may be NULL.
type Theme struct {
	ThemeID  string  `gorm:"column:theme_id;type:text;primaryKey" json:"theme_id" yaml:"id"`
	Theme    string  `gorm:"column:theme;type:text;not null" json:"theme" yaml:"theme"`
	Keywords *string `gorm:"column:keywords;type:text" json:"keywords,omitempty" yaml:"-"`
}

func (Theme) TableName() string { return "themes" }

// ThemeText is the prose used for semantic embedding.
func (t Theme) ThemeText() string { return t.Theme }

// KwText is the keyword string used for phonetic matching ("" when unset).
func (t Theme) KwText() string {
	if t.Keywords == nil {
		return ""
	}
	return strings.TrimSpace(*t.Keywords)
}

// ThemeVector is a catalog theme with its precomputed unit embedding.
type ThemeVector struct {
	ThemeID   string
	ThemeText string
	KwText    string
	Vector    []float32
}
