package health

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ramachandran-annadurai/patient-p1-sub001/internal/imaging"
	"github.com/ramachandran-annadurai/patient-p1-sub001/internal/personalization"
)

type Handler struct {
	engine  *personalization.Engine
	cascade *imaging.Cascade
}

func NewHandler(engine *personalization.Engine, cascade *imaging.Cascade) *Handler {
	return &Handler{
		engine:  engine,
		cascade: cascade,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	health := r.Group("/health")
	{
		health.GET("/live", h.LivenessCheck)
		health.GET("/ready", h.ReadinessCheck)
	}
}

func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}

// ReadinessCheck reports DOWN only when the vector store is unreachable.
// The patient backend and image strategies degrade gracefully, so their
// state is informational.
func (h *Handler) ReadinessCheck(c *gin.Context) {
	health := h.engine.HealthCheck(c.Request.Context())

	status := http.StatusOK
	overall := "UP"
	if !health.Store.Reachable {
		status = http.StatusServiceUnavailable
		overall = "DOWN"
	}
	c.JSON(status, gin.H{
		"status": overall,
		"components": gin.H{
			"vector_store": gin.H{
				"reachable": health.Store.Reachable,
				"records":   health.Store.RecordCount,
			},
			"patient_backend": health.PatientBackend,
			"image_strategies": h.cascade.HealthCheck(),
		},
	})
}
