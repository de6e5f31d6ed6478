package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/KaramelBytes/agriassist-cli/internal/advisory"
	"github.com/KaramelBytes/agriassist-cli/internal/store"
	"github.com/gin-gonic/gin"
)

// CreateFarmRequest is the body of POST /api/farm-profiles.
type CreateFarmRequest struct {
	FarmerName   string  `json:"farmer_name" binding:"required,max=128"`
	CropType     string  `json:"crop_type" binding:"required,max=64"`
	Acreage      float64 `json:"acreage" binding:"gte=0"`
	PlantingDate string  `json:"planting_date" binding:"required,max=32"`
	SoilType     string  `json:"soil_type" binding:"max=64"`
	Region       string  `json:"region" binding:"max=128"`
}

// OptimizeRequest is the body of POST /api/farm-profiles/:id/optimize.
type OptimizeRequest struct {
	Weather *advisory.Weather `json:"weather_data"`
	Soil    *advisory.Soil    `json:"soil_data"`
}

func (s *Server) health(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		RespondWithError(c, http.StatusServiceUnavailable, ErrorCodeServiceUnavailable, "Database unavailable.", gin.H{"reason": err.Error()})
		return
	}
	RespondWithSuccess(c, http.StatusOK, gin.H{"status": "ok", "message": "AgriAssist backend running"})
}

func (s *Server) listFarms(c *gin.Context) {
	farms, err := s.store.ListFarms(c.Request.Context())
	if err != nil {
		s.internalError(c, "Failed to list farm profiles.", err)
		return
	}
	if farms == nil {
		farms = []store.FarmProfile{}
	}
	RespondWithSuccess(c, http.StatusOK, farms)
}

func (s *Server) createFarm(c *gin.Context) {
	var req CreateFarmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, http.StatusBadRequest, ErrorCodeValidation, "Invalid request payload", gin.H{"reason": err.Error()})
		return
	}
	farm := store.FarmProfile{
		FarmerName:   req.FarmerName,
		CropType:     req.CropType,
		Acreage:      req.Acreage,
		PlantingDate: req.PlantingDate,
		SoilType:     req.SoilType,
		Region:       req.Region,
	}
	if err := s.store.CreateFarm(c.Request.Context(), &farm); err != nil {
		s.internalError(c, "Failed to create farm profile.", err)
		return
	}
	RespondWithSuccess(c, http.StatusCreated, gin.H{"status": "success", "profile": farm})
}

func (s *Server) getFarm(c *gin.Context) {
	id, ok := farmID(c)
	if !ok {
		return
	}
	farm, err := s.store.GetFarm(c.Request.Context(), id)
	if err != nil {
		s.farmError(c, id, err)
		return
	}
	RespondWithSuccess(c, http.StatusOK, farm)
}

func (s *Server) listAdvisories(c *gin.Context) {
	id, ok := farmID(c)
	if !ok {
		return
	}
	category := c.Query("type")
	if category != "" && !store.ValidCategory(category) {
		RespondWithError(c, http.StatusBadRequest, ErrorCodeValidation, "Invalid advisory type.", gin.H{"type": category, "allowed": store.Categories})
		return
	}
	logs, err := s.store.ListAdvisories(c.Request.Context(), id, category)
	if err != nil {
		s.farmError(c, id, err)
		return
	}
	if logs == nil {
		logs = []store.AdvisoryLog{}
	}
	RespondWithSuccess(c, http.StatusOK, logs)
}

func (s *Server) generateAdvisories(c *gin.Context) {
	id, ok := farmID(c)
	if !ok {
		return
	}
	var in advisory.Inputs
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondWithError(c, http.StatusBadRequest, ErrorCodeValidation, "Invalid request payload", gin.H{"reason": err.Error()})
		return
	}
	res, err := s.engine.GenerateAll(c.Request.Context(), id, in)
	if err != nil {
		s.farmError(c, id, err)
		return
	}
	RespondWithSuccess(c, http.StatusOK, gin.H{"farm_id": id, "advisories": res})
}

func (s *Server) optimize(c *gin.Context) {
	id, ok := farmID(c)
	if !ok {
		return
	}
	var req OptimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, http.StatusBadRequest, ErrorCodeValidation, "Invalid request payload", gin.H{"reason": err.Error()})
		return
	}
	res, err := s.engine.OptimizeResources(c.Request.Context(), id, req.Weather, req.Soil)
	if err != nil {
		s.farmError(c, id, err)
		return
	}
	RespondWithSuccess(c, http.StatusOK, gin.H{"farm_id": id, "plans": res})
}

func farmID(c *gin.Context) (uint, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		RespondWithError(c, http.StatusBadRequest, ErrorCodeInvalidIDFormat, "Invalid farm profile ID format.", gin.H{"id": raw})
		return 0, false
	}
	return uint(id), true
}

func (s *Server) farmError(c *gin.Context, id uint, err error) {
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, advisory.ErrFarmNotFound) {
		RespondWithError(c, http.StatusNotFound, ErrorCodeNotFound, "Farm profile not found.", gin.H{"id": id})
		return
	}
	s.internalError(c, "Failed to process farm profile request.", err)
}

func (s *Server) internalError(c *gin.Context, msg string, err error) {
	s.logger.ErrorContext(c.Request.Context(), msg, "error", err)
	RespondWithError(c, http.StatusInternalServerError, ErrorCodeInternalServerError, msg, nil)
}
