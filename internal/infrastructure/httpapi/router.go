// Package httpapi serves the catalog over HTTP with gin.
package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ersonp/datacatalog/internal/application/handlers"
	"github.com/ersonp/datacatalog/internal/domain/entities"
)

// RequestIDHeader carries the request id in requests and responses.
const RequestIDHeader = "X-Request-ID"

// NQuadsContentType is the media type of the catalog export.
const NQuadsContentType = "application/n-quads"

// API holds the handlers behind the HTTP routes.
type API struct {
	catalog *handlers.CatalogHandler
	search  *handlers.SearchHandler
	logger  *zap.Logger
}

// New creates the API.
func New(catalog *handlers.CatalogHandler, search *handlers.SearchHandler, logger *zap.Logger) *API {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &API{
		catalog: catalog,
		search:  search,
		logger:  logger.Named("http"),
	}
}

// Router builds the gin engine with all routes registered.
func (a *API) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(a.requestLogger())

	r.GET("/health", a.handleHealth)
	r.GET("/status", a.handleStatus)
	r.GET("/catalog", a.handleExport)

	dp := r.Group("/dataProducts")
	{
		dp.POST("", a.handleRegister)
		dp.GET("", a.handleList)
		dp.GET("/search", a.handleSearch)
		dp.GET("/:id", a.handleGet)
		dp.DELETE("/:id", a.handleDelete)
	}

	return r
}

// requestLogger tags each request with an id and logs it on completion.
func (a *API) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)

		c.Next()

		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("error", c.Errors.String()))
		}

		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			a.logger.Error("request failed", fields...)
		case c.Writer.Status() >= http.StatusBadRequest:
			a.logger.Info("request rejected", fields...)
		default:
			a.logger.Debug("request served", fields...)
		}
	}
}

func (a *API) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (a *API) handleStatus(c *gin.Context) {
	status, err := a.catalog.Status(c.Request.Context())
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (a *API) handleRegister(c *gin.Context) {
	var req entities.Registration
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	result, err := a.catalog.Register(c.Request.Context(), &req)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (a *API) handleList(c *gin.Context) {
	products, err := a.catalog.List(c.Request.Context())
	if err != nil {
		a.fail(c, err)
		return
	}
	if products == nil {
		products = []entities.DataProduct{}
	}
	c.JSON(http.StatusOK, products)
}

func (a *API) handleGet(c *gin.Context) {
	product, err := a.catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (a *API) handleDelete(c *gin.Context) {
	if err := a.catalog.Delete(c.Request.Context(), c.Param("id")); err != nil {
		a.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *API) handleSearch(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	result, err := a.search.Handle(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (a *API) handleExport(c *gin.Context) {
	c.Header("Content-Type", NQuadsContentType)
	c.Status(http.StatusOK)
	if err := a.catalog.Export(c.Request.Context(), c.Writer); err != nil {
		// Headers are gone; the log is all that is left.
		_ = c.Error(err)
	}
}

// fail writes the error response for err.
func (a *API) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(StatusFor(err), gin.H{"error": err.Error()})
}

// StatusFor maps catalog errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, entities.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, entities.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, entities.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, entities.ErrRegistryUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, entities.ErrPersistenceUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, handlers.ErrDiscoveryDisabled):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
