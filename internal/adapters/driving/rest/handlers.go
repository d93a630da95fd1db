package rest

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
)

type healthResponse struct {
	Status  string `json:"status"`
	Index   bool   `json:"index"`
	Sources int    `json:"sources"`
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{
		Status:  "ok",
		Index:   s.ports.Session.HasIndex(),
		Sources: len(s.ports.Session.Sources()),
	})
}

func (s *Server) examples(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string][]string{"questions": domain.ExampleQuestions()})
}

// buildResponse is the body of a successful or partially failed build.
type buildResponse struct {
	Documents   int                 `json:"documents"`
	Chunks      int                 `json:"chunks"`
	Characters  int                 `json:"characters"`
	DurationMS  int64               `json:"duration_ms"`
	Sources     []domain.SourceStat `json:"sources"`
	Diagnostics []domain.Diagnostic `json:"diagnostics"`
	Error       string              `json:"error,omitempty"`
	Reason      string              `json:"reason,omitempty"`
}

func newBuildResponse(report *domain.BuildReport) buildResponse {
	return buildResponse{
		Documents:   report.Documents,
		Chunks:      report.Chunks,
		Characters:  report.TotalChars(),
		DurationMS:  report.Duration.Milliseconds(),
		Sources:     report.Stats,
		Diagnostics: report.Diagnostics,
	}
}

// build accepts multipart/form-data with fields:
//
//	files          uploaded documents (repeatable)
//	urls           web pages, repeatable or newline separated
//	use_defaults   "true" to add the configured default sources
//	chunk_size     optional
//	chunk_overlap  optional
func (s *Server) build(c echo.Context) error {
	req, err := parseBuildForm(c)
	if err != nil {
		return err
	}

	report, err := s.ports.Knowledge.Build(c.Request().Context(), s.ports.Session, req)
	if report == nil {
		return err
	}
	resp := newBuildResponse(report)
	if err != nil {
		resp.Error = err.Error()
		resp.Reason = domain.ReasonCode(err)
		return c.JSON(statusFor(err), resp)
	}
	return c.JSON(http.StatusOK, resp)
}

func parseBuildForm(c echo.Context) (domain.BuildRequest, error) {
	req := domain.BuildRequest{ChunkOverlap: -1}

	form, err := c.MultipartForm()
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return req, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid form: %v", err))
	}
	if form != nil {
		for _, fh := range form.File["files"] {
			upload, err := readUpload(fh)
			if err != nil {
				return req, echo.NewHTTPError(http.StatusBadRequest, err.Error())
			}
			req.Uploads = append(req.Uploads, upload)
		}
	}

	for _, raw := range c.Request().Form["urls"] {
		for _, line := range strings.Split(raw, "\n") {
			if u := strings.TrimSpace(line); u != "" {
				req.URLs = append(req.URLs, u)
			}
		}
	}

	if v := c.FormValue("use_defaults"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return req, echo.NewHTTPError(http.StatusBadRequest, "use_defaults must be a boolean")
		}
		req.UseDefaults = b
	}
	if req.ChunkSize, err = formInt(c, "chunk_size", 0); err != nil {
		return req, err
	}
	if req.ChunkOverlap, err = formInt(c, "chunk_overlap", -1); err != nil {
		return req, err
	}
	return req, nil
}

func readUpload(fh *multipart.FileHeader) (domain.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return domain.Upload{}, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return domain.Upload{}, fmt.Errorf("read %s: %w", fh.Filename, err)
	}
	return domain.Upload{Name: fh.Filename, Content: data}, nil
}

func formInt(c echo.Context, name string, def int) (int, error) {
	v := strings.TrimSpace(c.FormValue(name))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be an integer")
	}
	return n, nil
}

func (s *Server) sources(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string][]domain.SourceStat{
		"sources": s.ports.Knowledge.Sources(s.ports.Session),
	})
}

type askRequest struct {
	Question string `json:"question"`
}

type answerResponse struct {
	Answer        string   `json:"answer"`
	UsedRetrieval bool     `json:"used_retrieval"`
	Sources       []string `json:"sources"`
	Warnings      []string `json:"warnings,omitempty"`
}

func newAnswerResponse(a *domain.Answer) answerResponse {
	sources := a.Sources
	if sources == nil {
		sources = []string{}
	}
	return answerResponse{
		Answer:        a.Text,
		UsedRetrieval: a.UsedRetrieval,
		Sources:       sources,
		Warnings:      a.Warnings,
	}
}

func (s *Server) ask(c echo.Context) error {
	var req askRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	answer, err := s.ports.Answers.Answer(c.Request().Context(), s.ports.Session, req.Question)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newAnswerResponse(answer))
}

type housingRequest struct {
	Budget   string `json:"budget"`
	Privacy  string `json:"privacy"`
	StayTerm string `json:"stay_term"`
}

func (s *Server) housing(c echo.Context) error {
	var req housingRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	plan, err := s.ports.Housing.Plan(c.Request().Context(), s.ports.Session, domain.HousingPreferences{
		Budget:   req.Budget,
		Privacy:  req.Privacy,
		StayTerm: req.StayTerm,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newAnswerResponse(plan))
}

type feedbackRequest struct {
	Label string `json:"label"`
}

func (s *Server) recordFeedback(c echo.Context) error {
	var req feedbackRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	rec, err := s.ports.Feedback.Record(c.Request().Context(), s.ports.Session, domain.FeedbackLabel(req.Label))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, rec)
}

func (s *Server) feedbackStats(c echo.Context) error {
	stats, err := s.ports.Feedback.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}
