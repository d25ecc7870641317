package v1

import (
	"net/http"

	"go-placement-backend/internal/delivery/http/middleware"
	"go-placement-backend/internal/delivery/http/response"
	"go-placement-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type SavedJobHandler struct {
	savedJobUC domain.SavedJobUsecase
}

func NewSavedJobHandler(candidates *gin.RouterGroup, savedJobUC domain.SavedJobUsecase) {
	handler := &SavedJobHandler{savedJobUC: savedJobUC}

	candidates.GET("/saved-jobs", handler.List)
	candidates.POST("/saved-jobs/:id", handler.Save)
	candidates.DELETE("/saved-jobs/:id", handler.Unsave)

	candidates.GET("/job-alerts", handler.ListAlerts)
	candidates.POST("/job-alerts", handler.CreateAlert)
	candidates.PATCH("/job-alerts/:id", handler.ToggleAlert)
	candidates.DELETE("/job-alerts/:id", handler.DeleteAlert)
}

type CreateAlertRequest struct {
	Name           string   `json:"name" binding:"required,not_blank,no_emoji,max=100"`
	Keywords       []string `json:"keywords" binding:"max=20,dive,max=50"`
	Location       string   `json:"location" binding:"max=200"`
	EmploymentType string   `json:"employment_type" binding:"omitempty,oneof=full-time part-time contract internship"`
	SalaryMin      float64  `json:"salary_min" binding:"gte=0"`
}

type ToggleAlertRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// Save godoc
// @Summary      Save a job
// @Tags         saved-jobs
// @Produce      json
// @Param        id   path      int  true  "Job ID"
// @Success      201  {object}  response.Response{data=domain.SavedJob}
// @Failure      409  {object}  response.Response
// @Router       /candidates/saved-jobs/{id} [post]
// @Security     BearerAuth
func (h *SavedJobHandler) Save(c *gin.Context) {
	jobID, ok := pathID(c, "id", "job ID")
	if !ok {
		return
	}
	saved, err := h.savedJobUC.SaveJob(c.Request.Context(), middleware.CurrentPrincipal(c).ID, jobID)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Job saved", saved)
}

// Unsave godoc
// @Summary      Remove a saved job
// @Tags         saved-jobs
// @Produce      json
// @Param        id   path      int  true  "Job ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /candidates/saved-jobs/{id} [delete]
// @Security     BearerAuth
func (h *SavedJobHandler) Unsave(c *gin.Context) {
	jobID, ok := pathID(c, "id", "job ID")
	if !ok {
		return
	}
	if err := h.savedJobUC.UnsaveJob(c.Request.Context(), middleware.CurrentPrincipal(c).ID, jobID); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job removed from saved jobs", nil)
}

// List godoc
// @Summary      List saved jobs
// @Tags         saved-jobs
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.SavedJob}
// @Router       /candidates/saved-jobs [get]
// @Security     BearerAuth
func (h *SavedJobHandler) List(c *gin.Context) {
	saved, err := h.savedJobUC.ListSavedJobs(c.Request.Context(), middleware.CurrentPrincipal(c).ID)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Saved jobs retrieved", saved)
}

// CreateAlert godoc
// @Summary      Create a job alert
// @Tags         job-alerts
// @Accept       json
// @Produce      json
// @Param        body  body      CreateAlertRequest  true  "Alert criteria"
// @Success      201   {object}  response.Response{data=domain.JobAlert}
// @Router       /candidates/job-alerts [post]
// @Security     BearerAuth
func (h *SavedJobHandler) CreateAlert(c *gin.Context) {
	var req CreateAlertRequest
	if !bindJSON(c, &req) {
		return
	}
	alert, err := h.savedJobUC.CreateAlert(c.Request.Context(), middleware.CurrentPrincipal(c).ID, req.Name, domain.JobAlertCriteria{
		Keywords:       req.Keywords,
		Location:       req.Location,
		EmploymentType: req.EmploymentType,
		SalaryMin:      req.SalaryMin,
	})
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Job alert created", alert)
}

// ListAlerts godoc
// @Summary      List job alerts
// @Tags         job-alerts
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.JobAlert}
// @Router       /candidates/job-alerts [get]
// @Security     BearerAuth
func (h *SavedJobHandler) ListAlerts(c *gin.Context) {
	alerts, err := h.savedJobUC.ListAlerts(c.Request.Context(), middleware.CurrentPrincipal(c).ID)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job alerts retrieved", alerts)
}

// ToggleAlert godoc
// @Summary      Enable or disable a job alert
// @Tags         job-alerts
// @Accept       json
// @Produce      json
// @Param        id    path      int                 true  "Alert ID"
// @Param        body  body      ToggleAlertRequest  true  "Active flag"
// @Success      200   {object}  response.Response{data=domain.JobAlert}
// @Failure      404   {object}  response.Response
// @Router       /candidates/job-alerts/{id} [patch]
// @Security     BearerAuth
func (h *SavedJobHandler) ToggleAlert(c *gin.Context) {
	id, ok := pathID(c, "id", "alert ID")
	if !ok {
		return
	}
	var req ToggleAlertRequest
	if !bindJSON(c, &req) {
		return
	}
	alert, err := h.savedJobUC.ToggleAlert(c.Request.Context(), middleware.CurrentPrincipal(c).ID, id, *req.Active)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job alert updated", alert)
}

// DeleteAlert godoc
// @Summary      Delete a job alert
// @Tags         job-alerts
// @Produce      json
// @Param        id   path      int  true  "Alert ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /candidates/job-alerts/{id} [delete]
// @Security     BearerAuth
func (h *SavedJobHandler) DeleteAlert(c *gin.Context) {
	id, ok := pathID(c, "id", "alert ID")
	if !ok {
		return
	}
	if err := h.savedJobUC.DeleteAlert(c.Request.Context(), middleware.CurrentPrincipal(c).ID, id); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job alert deleted", nil)
}
