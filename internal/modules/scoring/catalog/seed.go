package catalog

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	repos "github.com/yungbote/themescore-backend/internal/data/repos/scoring"
	types "github.com/yungbote/themescore-backend/internal/domain"
	apperr "github.com/yungbote/themescore-backend/internal/pkg/errors"
	"github.com/yungbote/themescore-backend/internal/platform/dbctx"
)

// Keywords decodes either a YAML string or a list of strings.
type Keywords []string

func (k *Keywords) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		*k = Keywords{s}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*k = Keywords(list)
		return nil
	default:
		return fmt.Errorf("line %d: keywords must be a string or a list", node.Line)
	}
}

type seedTheme struct {
	ID       string   `yaml:"id"`
	Theme    string   `yaml:"theme"`
	Keywords Keywords `yaml:"keywords"`
}

type seedFile struct {
	Themes []seedTheme `yaml:"themes"`
}

// ParseSeed decodes a theme seed document.
func ParseSeed(raw []byte) ([]*types.Theme, error) {
	var f seedFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse theme seed: %w", err)
	}
	seen := map[string]bool{}
	out := make([]*types.Theme, 0, len(f.Themes))
	for i, st := range f.Themes {
		id := strings.TrimSpace(st.ID)
		text := strings.TrimSpace(st.Theme)
		if id == "" || text == "" {
			return nil, fmt.Errorf("theme seed entry %d: id and theme are required", i)
		}
		if seen[id] {
			return nil, fmt.Errorf("theme seed: duplicate id %q", id)
		}
		seen[id] = true

		th := &types.Theme{ThemeID: id, Theme: text}
		var kws []string
		for _, k := range st.Keywords {
			if k = strings.TrimSpace(k); k != "" {
				kws = append(kws, k)
			}
		}
		if len(kws) > 0 {
			joined := strings.Join(kws, " ")
			th.Keywords = &joined
		}
		out = append(out, th)
	}
	return out, nil
}

// SeedFile upserts the themes in a YAML file and returns how many were written.
func SeedFile(ctx context.Context, themes repos.ThemeRepo, path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, apperr.Config("seed themes", err)
	}
	rows, err := ParseSeed(raw)
	if err != nil {
		return 0, apperr.Config("seed themes", err)
	}
	if err := themes.Upsert(dbctx.Context{Ctx: ctx}, rows); err != nil {
		return 0, apperr.Persistence("seed themes", err)
	}
	return len(rows), nil
}
