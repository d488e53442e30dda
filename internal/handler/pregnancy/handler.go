// Package pregnancy exposes the personalization and illustration
// endpoints of the API.
package pregnancy

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ramachandran-annadurai/patient-p1-sub001/internal/apperror"
	"github.com/ramachandran-annadurai/patient-p1-sub001/internal/handler"
	"github.com/ramachandran-annadurai/patient-p1-sub001/internal/imaging"
	"github.com/ramachandran-annadurai/patient-p1-sub001/internal/knowledge"
	"github.com/ramachandran-annadurai/patient-p1-sub001/internal/model"
	"github.com/ramachandran-annadurai/patient-p1-sub001/internal/personalization"
)

type Handler struct {
	engine  *personalization.Engine
	cascade *imaging.Cascade
	store   *knowledge.Store
}

func NewHandler(engine *personalization.Engine, cascade *imaging.Cascade, store *knowledge.Store) *Handler {
	return &Handler{
		engine:  engine,
		cascade: cascade,
		store:   store,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	weeks := r.Group("/weeks")
	{
		weeks.POST("", h.UpsertWeek)
		weeks.GET("/:week/personalized", h.GetPersonalizedWeek)
		weeks.GET("/:week/image", h.GetWeekImage)
		weeks.GET("/:week/images", h.GenerateAllImages)
	}
	r.GET("/trimesters/:trimester/recommendations", h.GetTrimesterRecommendations)
}

// GetPersonalizedWeek returns the week's developments personalized for a
// patient. Without a patient_id, or with use_synthetic=true, a
// deterministic synthetic profile stands in for the backend record.
func (h *Handler) GetPersonalizedWeek(c *gin.Context) {
	week, err := pathInt(c, "week")
	if err != nil {
		c.Error(err)
		return
	}
	patientID := c.Query("patient_id")
	useSynthetic := patientID == "" || c.Query("use_synthetic") == "true"

	result, err := h.engine.GetPersonalizedDevelopments(c.Request.Context(), week, patientID, useSynthetic)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(result))
}

func (h *Handler) GetTrimesterRecommendations(c *gin.Context) {
	trimester, err := pathInt(c, "trimester")
	if err != nil {
		c.Error(err)
		return
	}

	recs, err := h.engine.GetTrimesterRecommendations(c.Request.Context(), trimester, c.Query("patient_id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"trimester":       trimester,
		"recommendations": recs,
	}))
}

// GetWeekImage serves the best obtainable illustration for the week. The
// strategy query parameter requests a preferred strategy, regenerate=true
// bypasses cached artifacts.
func (h *Handler) GetWeekImage(c *gin.Context) {
	week, err := pathInt(c, "week")
	if err != nil {
		c.Error(err)
		return
	}

	artifact, err := h.cascade.GetBest(c.Request.Context(), week, c.Query("strategy"), boolQuery(c, "regenerate"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(artifact))
}

// GenerateAllImages runs every strategy for the week and reports each
// outcome, successes and failures alike.
func (h *Handler) GenerateAllImages(c *gin.Context) {
	week, err := pathInt(c, "week")
	if err != nil {
		c.Error(err)
		return
	}

	results, err := h.cascade.GenerateAll(c.Request.Context(), week, boolQuery(c, "regenerate"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"week":    week,
		"results": results,
	}))
}

// UpsertWeek indexes or replaces one week's reference content.
func (h *Handler) UpsertWeek(c *gin.Context) {
	var record model.WeekRecord
	if err := c.ShouldBindJSON(&record); err != nil {
		c.Error(apperror.InvalidInput("invalid week record: %v", err))
		return
	}

	if err := h.store.Upsert(c.Request.Context(), record); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(gin.H{
		"week": record.Week,
	}))
}

func pathInt(c *gin.Context, name string) (int, error) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		return 0, apperror.InvalidInput("%s must be an integer", name)
	}
	return v, nil
}

func boolQuery(c *gin.Context, name string) bool {
	return c.Query(name) == "true"
}
