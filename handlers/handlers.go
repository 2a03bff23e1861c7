package handlers

import (
	"net/http"
	"strconv"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"defect-classify-pipeline/classifier"
	"defect-classify-pipeline/database"
	"defect-classify-pipeline/models"
	"defect-classify-pipeline/service"
)

// Handlers represents the HTTP handlers.
type Handlers struct {
	db  *database.Database
	svc *service.Service
}

// NewHandlers creates new HTTP handlers.
func NewHandlers(db *database.Database, svc *service.Service) *Handlers {
	return &Handlers{db: db, svc: svc}
}

// SetupRouter wires all routes.
func (h *Handlers) SetupRouter() *gin.Engine {
	router := gin.Default()

	router.GET("/health", h.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v3")
	{
		api.POST("/classify", h.Classify)
		api.POST("/uploads/:uploadID/sections", h.IngestSection)
		api.POST("/runs/:uploadID", h.StartRun)
		api.GET("/runs/:uploadID", h.GetLatestRun)
		api.GET("/dashboard/:uploadID", h.GetDashboard)
	}
	return router
}

// HealthCheck handles health check requests.
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "defect-classify-pipeline",
	})
}

// ClassifyRequest is the stateless classification request body.
type ClassifyRequest struct {
	Text          string                `json:"text" binding:"required"`
	Sector        string                `json:"sector"`
	SecstatGrades *models.SecstatGrades `json:"secstat_grades,omitempty"`
	CostBands     map[string]string     `json:"cost_bands,omitempty"`
	UserID        string                `json:"user_id,omitempty"`
}

// Classify runs a single stateless classification.
func (h *Handlers) Classify(c *gin.Context) {
	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	bands, err := h.resolveCostBands(req.UserID, req.CostBands)
	if err != nil {
		log.WithError(err).WithField("user_id", req.UserID).Warn("could not load user cost bands, using defaults")
	}

	result := h.svc.Classifier().ClassifyWithOptions(req.Text, req.Sector, classifier.Options{
		SecstatGrades: req.SecstatGrades,
		CostBands:     bands,
	})
	c.JSON(http.StatusOK, result)
}

// resolveCostBands merges persisted per-user bands with any bands
// supplied inline on the request; inline entries win.
func (h *Handlers) resolveCostBands(userID string, inline map[string]string) (map[int]string, error) {
	bands := make(map[int]string)
	var loadErr error
	if userID != "" {
		stored, err := h.db.GetUserCostBands(userID)
		if err != nil {
			loadErr = err
		} else {
			for grade, band := range stored {
				bands[grade] = band
			}
		}
	}
	for key, band := range inline {
		grade, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		bands[grade] = band
	}
	if len(bands) == 0 {
		return nil, loadErr
	}
	return bands, loadErr
}

// IngestSectionRequest is the section ingestion body.
type IngestSectionRequest struct {
	ItemNo       int                   `json:"item_no" binding:"required"`
	Text         string                `json:"text" binding:"required"`
	Sector       string                `json:"sector"`
	StartMH      string                `json:"start_mh"`
	FinishMH     string                `json:"finish_mh"`
	PipeSize     string                `json:"pipe_size"`
	PipeMaterial string                `json:"pipe_material"`
	TotalLength  string                `json:"total_length"`
	Secstat      *models.SecstatGrades `json:"secstat_grades,omitempty"`
}

// IngestSection stores a new section, splitting dual-type defect text
// into lettered sub-sections.
func (h *Handlers) IngestSection(c *gin.Context) {
	uploadID := c.Param("uploadID")

	var req IngestSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "item_no and text are required"})
		return
	}

	template := models.SectionRecord{
		Sector:        req.Sector,
		StartMH:       req.StartMH,
		FinishMH:      req.FinishMH,
		PipeSize:      req.PipeSize,
		PipeMaterial:  req.PipeMaterial,
		TotalLength:   req.TotalLength,
		SecstatGrades: req.Secstat,
	}
	records, err := h.svc.IngestSection(uploadID, req.ItemNo, req.Text, template)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store section"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"upload_id": uploadID,
		"sections":  records,
	})
}

// StartRun triggers a new rules run for an upload.
func (h *Handlers) StartRun(c *gin.Context) {
	uploadID := c.Param("uploadID")

	run, err := h.svc.StartRun(c.Request.Context(), uploadID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start rules run"})
		return
	}
	status := http.StatusOK
	if run.Status == models.RunStatusFailed {
		// The run record is the caller's signal: partial rows exist
		// but must not be treated as authoritative.
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, run)
}

// GetLatestRun returns the most recent run provenance for an upload.
func (h *Handlers) GetLatestRun(c *gin.Context) {
	uploadID := c.Param("uploadID")

	run, err := h.svc.LatestRun(uploadID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load rules run"})
		return
	}
	if run == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no rules run for upload"})
		return
	}
	c.JSON(http.StatusOK, run)
}

// GetDashboard returns the composed dashboard for an upload from its
// latest successful run.
func (h *Handlers) GetDashboard(c *gin.Context) {
	uploadID := c.Param("uploadID")

	view, err := h.svc.Dashboard(c.Request.Context(), uploadID)
	if err != nil {
		log.WithError(err).WithField("upload_id", uploadID).Error("dashboard composition failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compose dashboard"})
		return
	}
	c.JSON(http.StatusOK, view)
}
