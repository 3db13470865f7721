package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"scholarag/internal/domain"
	"scholarag/internal/usecase"
	"scholarag/internal/worker"
)

const healthCheckTimeout = 5 * time.Second

// HealthCheck probes the reachability of one backend dependency.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Handler exposes the REST API over the usecases.
type Handler struct {
	corpusUsecase     usecase.CorpusUsecase
	ingestUsecase     usecase.IngestUsecase
	retrieveUsecase   usecase.RetrieveUsecase
	answerUsecase     usecase.AnswerUsecase
	compareUsecase    usecase.CompareUsecase
	summarizeUsecase  usecase.SummarizeUsecase
	preprocessUsecase usecase.PreprocessUsecase
	healthChecks      []HealthCheck
}

func NewHandler(
	corpusUsecase usecase.CorpusUsecase,
	ingestUsecase usecase.IngestUsecase,
	retrieveUsecase usecase.RetrieveUsecase,
	answerUsecase usecase.AnswerUsecase,
	compareUsecase usecase.CompareUsecase,
	summarizeUsecase usecase.SummarizeUsecase,
	preprocessUsecase usecase.PreprocessUsecase,
	healthChecks []HealthCheck,
) *Handler {
	return &Handler{
		corpusUsecase:     corpusUsecase,
		ingestUsecase:     ingestUsecase,
		retrieveUsecase:   retrieveUsecase,
		answerUsecase:     answerUsecase,
		compareUsecase:    compareUsecase,
		summarizeUsecase:  summarizeUsecase,
		preprocessUsecase: preprocessUsecase,
		healthChecks:      healthChecks,
	}
}

// RegisterRoutes mounts every endpoint on the echo instance.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)

	v1 := e.Group("/v1")
	v1.POST("/corpora", h.CreateCorpus)
	v1.GET("/corpora", h.ListCorpora)
	v1.GET("/corpora/:corpusID", h.GetCorpus)
	v1.DELETE("/corpora/:corpusID", h.DeleteCorpus)

	v1.POST("/corpora/:corpusID/documents", h.IngestDocument)
	v1.DELETE("/corpora/:corpusID/documents/:documentID", h.DeleteDocument)

	v1.POST("/corpora/:corpusID/retrieve", h.Retrieve)
	v1.POST("/corpora/:corpusID/query", h.Query)
	v1.POST("/corpora/:corpusID/compare", h.Compare)
	v1.POST("/corpora/:corpusID/summarize", h.Summarize)

	v1.POST("/preprocess", h.Preprocess)
}

// writeError maps domain sentinel errors onto HTTP statuses.
func writeError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyExists):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrUnavailable):
		status = http.StatusBadGateway
	}
	return c.JSON(status, map[string]string{"error": err.Error()})
}

// Health probes every configured backend (database, embedding server) and
// reports per-backend status. 503 when any backend is unreachable.
func (h *Handler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthCheckTimeout)
	defer cancel()

	backends := make(map[string]string, len(h.healthChecks))
	healthy := true
	for _, check := range h.healthChecks {
		if err := check.Check(ctx); err != nil {
			backends[check.Name] = err.Error()
			healthy = false
			continue
		}
		backends[check.Name] = "ok"
	}

	status, state := http.StatusOK, "ok"
	if !healthy {
		status, state = http.StatusServiceUnavailable, "degraded"
	}
	return c.JSON(status, map[string]any{"status": state, "backends": backends})
}

type createCorpusRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Mode string `json:"mode"`
}

type corpusResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Mode          string    `json:"mode"`
	VectorDim     int       `json:"vector_dim"`
	DocumentCount int       `json:"document_count"`
	CreatedAt     time.Time `json:"created_at"`
}

func toCorpusResponse(corpus domain.Corpus) corpusResponse {
	return corpusResponse{
		ID:            corpus.ID,
		Name:          corpus.Name,
		Mode:          string(corpus.Mode),
		VectorDim:     corpus.VectorDim,
		DocumentCount: corpus.DocumentCount,
		CreatedAt:     corpus.CreatedAt,
	}
}

func (h *Handler) CreateCorpus(c echo.Context) error {
	var req createCorpusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	corpus, err := h.corpusUsecase.Create(c.Request().Context(), req.ID, req.Name, domain.SearchMode(req.Mode))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toCorpusResponse(*corpus))
}

func (h *Handler) ListCorpora(c echo.Context) error {
	corpora, err := h.corpusUsecase.List(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}

	out := make([]corpusResponse, 0, len(corpora))
	for _, corpus := range corpora {
		out = append(out, toCorpusResponse(corpus))
	}
	return c.JSON(http.StatusOK, map[string]any{"corpora": out})
}

func (h *Handler) GetCorpus(c echo.Context) error {
	corpus, err := h.corpusUsecase.Get(c.Request().Context(), c.Param("corpusID"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toCorpusResponse(*corpus))
}

func (h *Handler) DeleteCorpus(c echo.Context) error {
	if err := h.corpusUsecase.Delete(c.Request().Context(), c.Param("corpusID")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type ingestRequest struct {
	DocumentID      string            `json:"document_id"`
	Text            string            `json:"text"`
	Title           string            `json:"title"`
	Authors         []string          `json:"authors"`
	Abstract        string            `json:"abstract"`
	PublicationDate string            `json:"publication_date"`
	Extra           map[string]string `json:"extra"`
}

func (h *Handler) IngestDocument(c echo.Context) error {
	var req ingestRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	output, err := h.ingestUsecase.Execute(c.Request().Context(), usecase.IngestInput{
		CorpusID:        c.Param("corpusID"),
		DocumentID:      req.DocumentID,
		Text:            req.Text,
		Title:           req.Title,
		Authors:         req.Authors,
		Abstract:        req.Abstract,
		PublicationDate: req.PublicationDate,
		Extra:           req.Extra,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"document_id":    output.DocumentID,
		"citation_key":   output.CitationKey,
		"chunks_created": output.ChunksCreated,
	})
}

func (h *Handler) DeleteDocument(c echo.Context) error {
	err := h.ingestUsecase.DeleteDocument(c.Request().Context(), c.Param("corpusID"), c.Param("documentID"))
	if err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type retrieveRequest struct {
	Query       string   `json:"query"`
	Limit       int      `json:"limit"`
	DocumentIDs []string `json:"document_ids"`
	UseHybrid   bool     `json:"use_hybrid"`
}

type retrievedChunkResponse struct {
	PointID     string  `json:"point_id"`
	DocumentID  string  `json:"document_id"`
	CitationKey string  `json:"citation_key"`
	Text        string  `json:"text"`
	Score       float32 `json:"score"`
	PageNumber  int     `json:"page_number"`
}

func toRetrievedResponses(results []domain.RetrievedResult) []retrievedChunkResponse {
	out := make([]retrievedChunkResponse, 0, len(results))
	for _, r := range results {
		out = append(out, retrievedChunkResponse{
			PointID:     r.PointID,
			DocumentID:  r.Chunk.DocumentID,
			CitationKey: r.CitationKeyOf(),
			Text:        r.Chunk.Text,
			Score:       r.Score,
			PageNumber:  r.Chunk.PageNumber,
		})
	}
	return out
}

func (h *Handler) Retrieve(c echo.Context) error {
	var req retrieveRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	results, err := h.retrieveUsecase.Execute(c.Request().Context(), usecase.RetrieveInput{
		CorpusID:    c.Param("corpusID"),
		Query:       req.Query,
		Limit:       req.Limit,
		DocumentIDs: req.DocumentIDs,
		UseHybrid:   req.UseHybrid,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"results": toRetrievedResponses(results)})
}

type queryRequest struct {
	Query       string   `json:"query"`
	Limit       int      `json:"limit"`
	DocumentIDs []string `json:"document_ids"`
	UseHybrid   bool     `json:"use_hybrid"`
	WordTarget  int      `json:"word_target"`
}

type citationResponse struct {
	Record domain.BibliographicRecord `json:"record"`
	APA    string                     `json:"apa"`
	BibTeX string                     `json:"bibtex"`
}

func (h *Handler) Query(c echo.Context) error {
	var req queryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	corpusID := c.Param("corpusID")
	results, err := h.retrieveUsecase.Execute(c.Request().Context(), usecase.RetrieveInput{
		CorpusID:    corpusID,
		Query:       req.Query,
		Limit:       req.Limit,
		DocumentIDs: req.DocumentIDs,
		UseHybrid:   req.UseHybrid,
	})
	if err != nil {
		return writeError(c, err)
	}

	output, err := h.answerUsecase.Execute(c.Request().Context(), usecase.AnswerInput{
		CorpusID:   corpusID,
		Query:      req.Query,
		Results:    results,
		WordTarget: req.WordTarget,
	})
	if err != nil {
		return writeError(c, err)
	}

	citations := make(map[string]citationResponse, len(output.Citations))
	for key, record := range output.Citations {
		citations[key] = citationResponse{
			Record: record,
			APA:    domain.FormatAPA(record),
			BibTeX: domain.FormatBibTeX(record),
		}
	}
	return c.JSON(http.StatusOK, map[string]any{
		"answer":    output.Answer,
		"citations": citations,
		"results":   toRetrievedResponses(results),
	})
}

type compareRequest struct {
	DocumentIDs []string `json:"document_ids"`
	Aspect      string   `json:"aspect"`
	WordTarget  int      `json:"word_target"`
}

func (h *Handler) Compare(c echo.Context) error {
	var req compareRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	output, err := h.compareUsecase.Execute(c.Request().Context(), usecase.CompareInput{
		CorpusID:    c.Param("corpusID"),
		DocumentIDs: req.DocumentIDs,
		Aspect:      req.Aspect,
		WordTarget:  req.WordTarget,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"comparison": output.Comparison,
		"papers":     output.Papers,
	})
}

type summarizeRequest struct {
	DocumentIDs []string `json:"document_ids"`
	WordTarget  int      `json:"word_target"`
}

func (h *Handler) Summarize(c echo.Context) error {
	var req summarizeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	output, err := h.summarizeUsecase.Execute(c.Request().Context(), usecase.SummarizeInput{
		CorpusID:    c.Param("corpusID"),
		DocumentIDs: req.DocumentIDs,
		WordTarget:  req.WordTarget,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"summary": output.Summary,
		"papers":  output.Papers,
	})
}

type preprocessRequest struct {
	SourcePaths []string `json:"source_paths"`
	Converter   string   `json:"converter"`
	MaxWorkers  int      `json:"max_workers"`
	OutputDir   string   `json:"output_dir"`
}

type preprocessItemResponse struct {
	SourcePath string `json:"source_path"`
	DocumentID string `json:"document_id,omitempty"`
	Title      string `json:"title,omitempty"`
	OutputPath string `json:"output_path,omitempty"`
	ElapsedMS  int64  `json:"elapsed_ms"`
	Error      string `json:"error,omitempty"`
}

// Preprocess streams one NDJSON line per source file as each conversion
// finishes, then a final summary line.
func (h *Handler) Preprocess(c echo.Context) error {
	var req preprocessRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	// The pool outlives an aborted response (client disconnect, encode
	// failure) unless its context is cancelled on every return path.
	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	results, err := h.preprocessUsecase.Execute(ctx, usecase.PreprocessInput{
		SourcePaths: req.SourcePaths,
		Converter:   req.Converter,
		MaxWorkers:  req.MaxWorkers,
		OutputDir:   req.OutputDir,
	})
	if err != nil {
		return writeError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentType, "application/x-ndjson")
	c.Response().WriteHeader(http.StatusOK)
	enc := json.NewEncoder(c.Response())

	var consumed []worker.Result
	for result := range results {
		consumed = append(consumed, result)
		item := preprocessItemResponse{
			SourcePath: result.SourcePath,
			DocumentID: result.DocumentID,
			Title:      result.Title,
			OutputPath: result.OutputPath,
			ElapsedMS:  result.Elapsed.Milliseconds(),
		}
		if result.Err != nil {
			item.Error = result.Err.Error()
		}
		if err := enc.Encode(item); err != nil {
			return err
		}
		c.Response().Flush()
	}

	summary := map[string]any{"total": len(consumed), "status": "completed"}
	if batchErr := worker.BatchError(consumed); batchErr != nil {
		var partial *domain.PartialBatchError
		if errors.As(batchErr, &partial) {
			summary["status"] = "partial"
			summary["failed"] = partial.Failed
			summary["succeeded"] = partial.Succeeded
		}
	}
	if err := enc.Encode(summary); err != nil {
		return err
	}
	c.Response().Flush()
	return nil
}
