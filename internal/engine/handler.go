package engine

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"enforcer/internal/alert"
	"enforcer/internal/logger"
	"enforcer/internal/runtime"
	"enforcer/pkg/errors"
	"enforcer/pkg/health"
	"enforcer/pkg/logging"
	"enforcer/pkg/metrics"
)

type Handler struct {
	engine      *Engine
	registry    *health.CheckerRegistry
	runtimeKind runtime.Kind
	logger      logger.Logger
}

func NewHandler(engine *Engine, registry *health.CheckerRegistry, kind runtime.Kind, log logger.Logger) *Handler {
	return &Handler{
		engine:      engine,
		registry:    registry,
		runtimeKind: kind,
		logger:      log,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.POST("/falco", h.HandleAlert)
	router.GET("/health", h.HandleHealth)
}

// HandleAlert ingests one monitor alert. The response only reports
// acceptance; the action itself runs on the dispatch pool after the
// response is written.
func (h *Handler) HandleAlert(c *gin.Context) {
	var raw alert.RawAlert
	if err := c.ShouldBindJSON(&raw); err != nil {
		metrics.IncAlertReceived("malformed")
		appErr := errors.ErrValidation.WithMessage("malformed alert payload").WithCause(err)
		c.JSON(errors.ToHTTPStatus(appErr), errors.ToErrorResponse(appErr))
		return
	}

	a, err := h.engine.Normalize(raw)
	if err != nil {
		metrics.IncAlertReceived("rejected")
		c.JSON(errors.ToHTTPStatus(err), errors.ToErrorResponse(err))
		return
	}

	metrics.IncAlertReceived("accepted")

	ctx := logging.WithAlertID(c.Request.Context(), a.UUID)
	h.logger.InfowCtx(ctx, "Alert received",
		"rule", a.Rule,
		"priority", a.Priority.String(),
		"container_id", a.ShortContainerID(),
		"container_name", a.ContainerName,
	)

	result := h.engine.Process(ctx, a)

	c.JSON(http.StatusAccepted, gin.H{
		"status":   "accepted",
		"result":   string(result),
		"alert_id": a.UUID,
	})
}

func (h *Handler) HandleHealth(c *gin.Context) {
	report := h.registry.Check(c.Request.Context())

	statusCode := http.StatusOK
	if report.Status == health.StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, gin.H{
		"status":   report.Status,
		"runtime":  string(h.runtimeKind),
		"policies": h.engine.PolicyCount(),
		"checks":   report.Checks,
	})
}
