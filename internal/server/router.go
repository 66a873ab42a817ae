// Package server exposes the engine over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"docrag/internal/config"
	"docrag/internal/domain"
)

// Engine is the subset of the RAG service used by the HTTP API.
type Engine interface {
	IngestBytes(ctx context.Context, filename string, data []byte) (string, error)
	Query(ctx context.Context, text string) (domain.Answer, error)
	Search(term string, topK int) ([]domain.SearchResult, error)
	DeleteDocument(ctx context.Context, id string) error
	ListMetadata() []domain.DocumentSummary
	DocumentCount() int
	DefaultTopK() int
}

// SetupRouter builds the gin engine with all API routes.
func SetupRouter(cfg config.ServerConfig, engine Engine) *gin.Engine {
	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	h := NewHandler(engine, int64(cfg.MaxUploadMB)<<20)

	api := r.Group("/api")
	{
		api.GET("/health", healthCheck)
		api.POST("/ingest", h.Ingest)
		api.POST("/query", h.Query)
		api.GET("/search", h.Search)

		documents := api.Group("/documents")
		{
			documents.GET("", h.ListDocuments)
			documents.DELETE("/:id", h.DeleteDocument)
		}
	}
	return r
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
