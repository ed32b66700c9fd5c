package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	repos "github.com/yungbote/themescore-backend/internal/data/repos/scoring"
	types "github.com/yungbote/themescore-backend/internal/domain"
	"github.com/yungbote/themescore-backend/internal/http/response"
	apperr "github.com/yungbote/themescore-backend/internal/pkg/errors"
	"github.com/yungbote/themescore-backend/internal/platform/dbctx"
	"github.com/yungbote/themescore-backend/internal/platform/logger"
)

const (
	defaultRankLimit = 50
	maxRankLimit     = 500
)

// ScoreHandler serves the theme catalog and both score tables read-only.
type ScoreHandler struct {
	log            *logger.Logger
	themes         repos.ThemeRepo
	sentenceScores repos.SentenceThemeScoreRepo
	companyScores  repos.CompanyThemeScoreRepo
	runs           repos.ScoringRunRepo
}

func NewScoreHandler(log *logger.Logger, set repos.Set) *ScoreHandler {
	return &ScoreHandler{
		log:            log.With("handler", "ScoreHandler"),
		themes:         set.Themes,
		sentenceScores: set.SentenceScores,
		companyScores:  set.CompanyScores,
		runs:           set.Runs,
	}
}

// GET /v1/themes
func (h *ScoreHandler) ListThemes(c *gin.Context) {
	themes, err := h.themes.List(dbctx.Context{Ctx: c.Request.Context()})
	if err != nil {
		h.fail(c, "list themes", err)
		return
	}
	if themes == nil {
		themes = []*types.Theme{}
	}
	response.RespondOK(c, gin.H{"themes": themes})
}

// GET /v1/companies/:company_id/themes
func (h *ScoreHandler) ListCompanyThemes(c *gin.Context) {
	companyID := strings.TrimSpace(c.Param("company_id"))
	rows, err := h.companyScores.ListByCompany(dbctx.Context{Ctx: c.Request.Context()}, companyID)
	if err != nil {
		h.fail(c, "list company themes", err)
		return
	}
	if len(rows) == 0 {
		response.RespondAppError(c, fmt.Errorf("company %q has no scores: %w", companyID, apperr.ErrNotFound))
		return
	}
	response.RespondOK(c, gin.H{"company_id": companyID, "themes": rows})
}

// GET /v1/themes/:theme_id/companies?limit=
func (h *ScoreHandler) RankThemeCompanies(c *gin.Context) {
	themeID := strings.TrimSpace(c.Param("theme_id"))
	limit := defaultRankLimit
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			response.RespondAppError(c, fmt.Errorf("limit must be a positive integer: %w", apperr.ErrInvalidArgument))
			return
		}
		if n > maxRankLimit {
			n = maxRankLimit
		}
		limit = n
	}
	rows, err := h.companyScores.TopByTheme(dbctx.Context{Ctx: c.Request.Context()}, themeID, limit)
	if err != nil {
		h.fail(c, "rank theme companies", err)
		return
	}
	if rows == nil {
		rows = []*types.CompanyThemeScore{}
	}
	response.RespondOK(c, gin.H{"theme_id": themeID, "limit": limit, "companies": rows})
}

// GET /v1/documents/:doc_id/scores?theme_id=
func (h *ScoreHandler) ListDocumentScores(c *gin.Context) {
	docID := strings.TrimSpace(c.Param("doc_id"))
	themeID := strings.TrimSpace(c.Query("theme_id"))
	rows, err := h.sentenceScores.ListByDoc(dbctx.Context{Ctx: c.Request.Context()}, docID, themeID)
	if err != nil {
		h.fail(c, "list document scores", err)
		return
	}
	if rows == nil {
		rows = []*types.SentenceThemeScore{}
	}
	response.RespondOK(c, gin.H{"doc_id": docID, "scores": rows})
}

// GET /v1/runs/latest
func (h *ScoreHandler) LatestRun(c *gin.Context) {
	run, err := h.runs.Latest(dbctx.Context{Ctx: c.Request.Context()})
	if err != nil {
		h.fail(c, "latest run", err)
		return
	}
	if run == nil {
		response.RespondAppError(c, fmt.Errorf("no scoring runs recorded: %w", apperr.ErrNotFound))
		return
	}
	response.RespondOK(c, run)
}

func (h *ScoreHandler) fail(c *gin.Context, op string, err error) {
	h.log.Error("score query failed", "op", op, "path", c.FullPath(), "error", err)
	response.RespondAppError(c, apperr.Persistence(op, err))
}
