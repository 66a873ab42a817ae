package server

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"docrag/internal/domain"
)

// Handler serves the document and query endpoints.
type Handler struct {
	engine    Engine
	maxUpload int64
}

// NewHandler creates a handler. maxUpload is the per-file byte limit; zero disables it.
func NewHandler(engine Engine, maxUpload int64) *Handler {
	return &Handler{engine: engine, maxUpload: maxUpload}
}

type ingestResult struct {
	Filename string `json:"filename"`
	DocID    string `json:"doc_id,omitempty"`
	Error    string `json:"error,omitempty"`
	Status   string `json:"status"`
}

// Ingest accepts a multipart form with one or more "files".
func (h *Handler) Ingest(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No files provided"})
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No files selected"})
		return
	}

	results := make([]ingestResult, 0, len(files))
	for _, fh := range files {
		if fh.Filename == "" {
			continue
		}
		if h.maxUpload > 0 && fh.Size > h.maxUpload {
			results = append(results, ingestResult{
				Filename: fh.Filename,
				Error:    fmt.Sprintf("file exceeds %d bytes", h.maxUpload),
				Status:   "failed",
			})
			continue
		}
		id, err := h.ingestFile(c, fh.Filename, fh)
		if err != nil {
			results = append(results, ingestResult{Filename: fh.Filename, Error: err.Error(), Status: "failed"})
			continue
		}
		results = append(results, ingestResult{Filename: fh.Filename, DocID: id, Status: "success"})
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         "Document ingestion completed",
		"results":         results,
		"total_documents": h.engine.DocumentCount(),
	})
}

func (h *Handler) ingestFile(c *gin.Context, filename string, fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}
	return h.engine.IngestBytes(c.Request.Context(), filename, data)
}

type queryRequest struct {
	Query *string `json:"query"`
}

// Query answers a natural-language question.
func (h *Handler) Query(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Query == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No query provided"})
		return
	}
	q := strings.TrimSpace(*req.Query)
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query cannot be empty"})
		return
	}

	ans, err := h.engine.Query(c.Request.Context(), q)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"query":      q,
		"answer":     ans.Text,
		"sources":    ans.Sources,
		"confidence": ans.Confidence,
		"timestamp":  time.Now().Format(time.RFC3339),
	})
}

// ListDocuments returns the metadata of every stored document.
func (h *Handler) ListDocuments(c *gin.Context) {
	docs := h.engine.ListMetadata()
	c.JSON(http.StatusOK, gin.H{
		"total":     len(docs),
		"documents": docs,
	})
}

// DeleteDocument removes one document.
func (h *Handler) DeleteDocument(c *gin.Context) {
	id := c.Param("id")
	if err := h.engine.DeleteDocument(c.Request.Context(), id); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Document %s deleted successfully", id)})
}

// Search runs lexical retrieval without calling the model.
func (h *Handler) Search(c *gin.Context) {
	term := strings.TrimSpace(c.Query("q"))
	if term == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Search term required"})
		return
	}
	topK := h.engine.DefaultTopK()
	if raw := c.Query("top_k"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			topK = v
		}
	}

	results, err := h.engine.Search(term, topK)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	if results == nil {
		results = []domain.SearchResult{}
	}
	c.JSON(http.StatusOK, gin.H{
		"query":   term,
		"results": results,
		"count":   len(results),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
