package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/natewolfe/dreamcensus-sub001/internal/answer"
	"github.com/natewolfe/dreamcensus-sub001/internal/catalog"
	"github.com/natewolfe/dreamcensus-sub001/internal/census"
	"github.com/natewolfe/dreamcensus-sub001/internal/selection"
)

type questionView struct {
	ID           string         `json:"id"`
	AnalyticsKey string         `json:"analyticsKey,omitempty"`
	Text         string         `json:"text"`
	Help         string         `json:"help,omitempty"`
	Kind         catalog.Kind   `json:"kind"`
	Tier         catalog.Tier   `json:"tier"`
	ThemeID      string         `json:"themeId,omitempty"`
	GroupingID   string         `json:"groupingId,omitempty"`
	ParentID     string         `json:"parentId,omitempty"`
	Required     bool           `json:"required"`
	SkipPolicy   string         `json:"skipPolicy"`
	OrderHint    int            `json:"orderHint"`
	Props        catalog.Props  `json:"props,omitempty"`
	ShowWhen     *conditionView `json:"showWhen,omitempty"`
}

type conditionView struct {
	QuestionID string           `json:"question"`
	Op         catalog.Operator `json:"op"`
	Value      answer.Value     `json:"value"`
}

func viewQuestion(q catalog.Question) questionView {
	v := questionView{
		ID:           q.ID,
		AnalyticsKey: q.AnalyticsKey,
		Text:         q.Text,
		Help:         q.Help,
		Kind:         q.Kind,
		Tier:         q.Tier,
		ThemeID:      q.ThemeID,
		GroupingID:   q.GroupingID,
		ParentID:     q.ParentID,
		Required:     q.Required,
		SkipPolicy:   string(q.EffectiveSkipPolicy()),
		OrderHint:    q.OrderHint,
		Props:        q.Props,
	}
	if q.ShowWhen != nil {
		v.ShowWhen = &conditionView{
			QuestionID: q.ShowWhen.TargetQuestionID,
			Op:         q.ShowWhen.Operator,
			Value:      q.ShowWhen.Value,
		}
	}
	return v
}

func viewQuestions(qs []catalog.Question) []questionView {
	out := make([]questionView, 0, len(qs))
	for _, q := range qs {
		out = append(out, viewQuestion(q))
	}
	return out
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "catalogVersion": s.svc.Catalog().Version()})
}

func (s *Server) listGroupings(c *gin.Context) {
	ov, err := s.svc.Overview(c.Request.Context())
	if err != nil {
		s.handleServiceError(c, err)
		return
	}
	respondOK(c, ov)
}

func (s *Server) getGrouping(c *gin.Context) {
	g, err := s.svc.Grouping(c.Request.Context(), c.Param("slug"))
	if err != nil {
		s.handleServiceError(c, err)
		return
	}
	respondOK(c, g)
}

func (s *Server) groupingQuestions(c *gin.Context) {
	ctx := c.Request.Context()
	g, err := s.svc.Grouping(ctx, c.Param("slug"))
	if err != nil {
		s.handleServiceError(c, err)
		return
	}
	qs, err := s.svc.GroupingQuestions(ctx, g.Slug)
	if err != nil {
		s.handleServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"grouping": g, "questions": viewQuestions(qs)})
}

type selectRequest struct {
	Mode            selection.Mode `json:"mode" binding:"omitempty,oneof=mixed theme-focus"`
	Theme           string         `json:"theme"`
	Limit           int            `json:"limit" binding:"omitempty,min=1,max=100"`
	IncludeAnswered bool           `json:"includeAnswered"`
}

type selectResponse struct {
	*selection.Result
	Questions []questionView `json:"questions"`
}

func (s *Server) selectQuestions(c *gin.Context) {
	var req selectRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request: "+err.Error())
			return
		}
	}
	if req.Mode == selection.ModeThemeFocus && req.Theme == "" {
		respondError(c, http.StatusBadRequest, "theme-focus requires a theme")
		return
	}

	res, err := s.svc.SelectQuestions(c.Request.Context(), census.SelectOptions{
		Mode:            req.Mode,
		ThemeSlug:       req.Theme,
		Limit:           req.Limit,
		IncludeAnswered: req.IncludeAnswered,
	})
	if err != nil {
		s.handleServiceError(c, err)
		return
	}
	respondOK(c, selectResponse{Result: res, Questions: viewQuestions(res.Questions)})
}

type saveRequest struct {
	Value json.RawMessage `json:"value"`
}

func (s *Server) saveAnswer(c *gin.Context) {
	var req saveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	res, err := s.svc.SaveAnswer(c.Request.Context(), c.Param("questionID"), req.Value)
	if err != nil {
		s.handleServiceError(c, err)
		return
	}
	if !res.Valid {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, Response{
			Status:  "error",
			Code:    http.StatusUnprocessableEntity,
			Message: res.Error,
			TraceID: traceID(c),
			Data:    res,
		})
		return
	}
	respondOK(c, res)
}

type submitRequest struct {
	Answers map[string]json.RawMessage `json:"answers" binding:"required"`
}

type sessionView struct {
	ID          string                  `json:"sessionId"`
	Status      string                  `json:"status"`
	StartedAt   time.Time               `json:"startedAt"`
	CompletedAt *time.Time              `json:"completedAt,omitempty"`
	Answers     map[string]answer.Value `json:"answers,omitempty"`
}

func (s *Server) submit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	out, err := s.svc.Submit(c.Request.Context(), req.Answers)
	if err != nil {
		s.handleServiceError(c, err)
		return
	}
	respondOK(c, gin.H{
		"session": sessionView{
			ID:          out.Session.ID.String(),
			Status:      string(out.Session.Status),
			StartedAt:   out.Session.StartedAt,
			CompletedAt: out.Session.CompletedAt,
		},
		"stored":  out.Stored,
		"dropped": out.Dropped,
	})
}

func (s *Server) resume(c *gin.Context) {
	sa, err := s.svc.Resume(c.Request.Context())
	if err != nil {
		s.handleServiceError(c, err)
		return
	}
	if sa == nil {
		respondOK(c, nil)
		return
	}
	respondOK(c, sessionView{
		ID:          sa.ID.String(),
		Status:      string(sa.Status),
		StartedAt:   sa.StartedAt,
		CompletedAt: sa.CompletedAt,
		Answers:     sa.Answers,
	})
}

func (s *Server) progress(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := s.svc.CensusProgress(ctx)
	if err != nil {
		s.handleServiceError(c, err)
		return
	}
	all, err := s.svc.AreAllGroupingsComplete(ctx)
	if err != nil {
		s.handleServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"progress": p, "percent": p.Percent(), "allGroupingsComplete": all})
}

func (s *Server) export(c *gin.Context) {
	out, err := s.svc.ExportAnswers(c.Request.Context())
	if err != nil {
		s.handleServiceError(c, err)
		return
	}
	respondOK(c, out)
}

func (s *Server) complete(c *gin.Context) {
	done, err := s.svc.CheckAndComplete(c.Request.Context())
	if err != nil {
		s.handleServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"allComplete": done})
}

func (s *Server) reset(c *gin.Context) {
	n, err := s.svc.Reset(c.Request.Context())
	if err != nil {
		s.handleServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"deletedSessions": n})
}
