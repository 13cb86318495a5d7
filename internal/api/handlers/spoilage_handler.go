package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/budprat/stock-sense/backend-go/internal/domain"
	"github.com/budprat/stock-sense/backend-go/internal/spoilage"
	"github.com/budprat/stock-sense/backend-go/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// SpoilageService is implemented by *service.SpoilageService.
type SpoilageService interface {
	GetRisks(ctx context.Context, ownerID int64) (*domain.RiskReport, error)
	GetPredictions(ctx context.Context, ownerID int64) (*domain.PredictionReport, error)
	GetProductRisk(ctx context.Context, ownerID, productID int64) (*domain.SpoilageRisk, error)
	GetCriticalAlerts(ctx context.Context, ownerID int64, horizonDays int) (*domain.AlertReport, error)
	RunPredictionJob(ctx context.Context, ownerID int64) (*domain.PredictionJob, error)
	GetLatestPredictionJob(ctx context.Context, ownerID int64) (*domain.PredictionJob, bool, error)
	GetPredictionJob(ctx context.Context, ownerID int64, jobID string) (*domain.PredictionJob, bool, error)
	ListPredictionExports(ctx context.Context, ownerID int64) ([]storage.ObjectInfo, error)
}

type SpoilageHandler struct {
	service SpoilageService
}

func NewSpoilageHandler(service SpoilageService) *SpoilageHandler {
	return &SpoilageHandler{service: service}
}

func (h *SpoilageHandler) GetRisks(c *gin.Context) {
	ownerID, ok := parseIDParam(c, "owner_id")
	if !ok {
		return
	}

	minLevel := domain.RiskLow
	if raw := strings.TrimSpace(c.Query("min_level")); raw != "" {
		level, valid := domain.ParseRiskLevel(raw)
		if !valid {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid min_level", "details": raw})
			return
		}
		minLevel = level
	}

	report, err := h.service.GetRisks(c.Request.Context(), ownerID)
	if err != nil {
		writeError(c, "failed to compute spoilage risks", err)
		return
	}

	if minLevel != domain.RiskLow {
		filtered := make([]domain.SpoilageRisk, 0, len(report.Risks))
		for _, r := range report.Risks {
			if r.SpoilageRisk.AtLeast(minLevel) {
				filtered = append(filtered, r)
			}
		}
		report.Risks = filtered
	}

	c.JSON(http.StatusOK, report)
}

func (h *SpoilageHandler) GetPredictions(c *gin.Context) {
	ownerID, ok := parseIDParam(c, "owner_id")
	if !ok {
		return
	}

	report, err := h.service.GetPredictions(c.Request.Context(), ownerID)
	if err != nil {
		writeError(c, "failed to compute spoilage predictions", err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *SpoilageHandler) GetCriticalAlerts(c *gin.Context) {
	ownerID, ok := parseIDParam(c, "owner_id")
	if !ok {
		return
	}

	// 0 leaves the service default in place; an explicit horizon must be positive.
	horizon := 0
	if raw := strings.TrimSpace(c.Query("horizon_days")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid horizon_days", "details": raw})
			return
		}
		horizon = v
	}

	report, err := h.service.GetCriticalAlerts(c.Request.Context(), ownerID, horizon)
	if err != nil {
		writeError(c, "failed to compute critical alerts", err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *SpoilageHandler) GetProductRisk(c *gin.Context) {
	ownerID, ok := parseIDParam(c, "owner_id")
	if !ok {
		return
	}
	productID, ok := parseIDParam(c, "product_id")
	if !ok {
		return
	}

	risk, err := h.service.GetProductRisk(c.Request.Context(), ownerID, productID)
	if err != nil {
		writeError(c, "failed to assess product", err)
		return
	}

	c.JSON(http.StatusOK, risk)
}

func (h *SpoilageHandler) RunPredictionJob(c *gin.Context) {
	ownerID, ok := parseIDParam(c, "owner_id")
	if !ok {
		return
	}

	job, err := h.service.RunPredictionJob(c.Request.Context(), ownerID)
	if err != nil {
		writeError(c, "failed to run prediction job", err)
		return
	}

	c.JSON(http.StatusCreated, job)
}

func (h *SpoilageHandler) GetLatestPredictionJob(c *gin.Context) {
	ownerID, ok := parseIDParam(c, "owner_id")
	if !ok {
		return
	}

	job, found, err := h.service.GetLatestPredictionJob(c.Request.Context(), ownerID)
	if err != nil {
		writeError(c, "failed to load prediction job", err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "no prediction job found"})
		return
	}

	c.JSON(http.StatusOK, job)
}

func (h *SpoilageHandler) GetPredictionJob(c *gin.Context) {
	ownerID, ok := parseIDParam(c, "owner_id")
	if !ok {
		return
	}

	jobID := strings.TrimSpace(c.Param("job_id"))
	job, found, err := h.service.GetPredictionJob(c.Request.Context(), ownerID, jobID)
	if err != nil {
		writeError(c, "failed to load prediction job", err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "prediction job not found", "details": jobID})
		return
	}

	c.JSON(http.StatusOK, job)
}

func (h *SpoilageHandler) ListPredictionExports(c *gin.Context) {
	ownerID, ok := parseIDParam(c, "owner_id")
	if !ok {
		return
	}

	objects, err := h.service.ListPredictionExports(c.Request.Context(), ownerID)
	if err != nil {
		writeError(c, "failed to list prediction exports", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"exports": objects})
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name, "details": raw})
		return 0, false
	}
	return id, true
}

func writeError(c *gin.Context, message string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg(message)
	}
	c.JSON(status, gin.H{"error": message, "details": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, spoilage.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, spoilage.ErrInsufficientData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, spoilage.ErrInventoryUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
