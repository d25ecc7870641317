package v1

import (
	"net/http"

	"go-placement-backend/internal/delivery/http/middleware"
	"go-placement-backend/internal/delivery/http/response"
	"go-placement-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type ApplicationHandler struct {
	applicationUC domain.ApplicationUsecase
}

// NewApplicationHandler registers application routes
func NewApplicationHandler(candidates, recruiters *gin.RouterGroup, applicationUC domain.ApplicationUsecase) {
	handler := &ApplicationHandler{applicationUC: applicationUC}

	candidates.POST("/jobs/:id/apply", handler.ApplyToJob)
	candidates.GET("/applications", handler.GetMyApplications)
	candidates.DELETE("/applications/:id", handler.WithdrawApplication)

	recruiters.GET("/jobs/:id/applications", handler.ListJobApplications)
	recruiters.GET("/jobs/:id/pipeline", handler.GetPipeline)
	recruiters.GET("/applications/:id", handler.GetApplicationDetail)
	recruiters.PATCH("/applications/:id/status", handler.UpdateApplicationStatus)
	recruiters.PATCH("/applications/status", handler.BulkUpdateStatus)
}

// ApplyToJobRequest is the request payload for applying to a job
type ApplyToJobRequest struct {
	ResumeURL   string `json:"resume_url" binding:"required,url"`
	ResumeKey   string `json:"resume_key" binding:"max=512"`
	CoverLetter string `json:"cover_letter" binding:"max=10000"`
}

// UpdateStatusRequest moves one application to a new status.
type UpdateStatusRequest struct {
	Status string  `json:"status" binding:"required"`
	Note   *string `json:"note" binding:"omitempty,max=2000"`
}

// BulkUpdateStatusRequest moves several applications atomically.
type BulkUpdateStatusRequest struct {
	ApplicationIDs []int64 `json:"application_ids" binding:"required,min=1,max=200,dive,gt=0"`
	Status         string  `json:"status" binding:"required"`
	Note           *string `json:"note" binding:"omitempty,max=2000"`
}

// ApplyToJob godoc
// @Summary      Apply to a job
// @Description  Submit an application for an open job. Applying twice answers 409.
// @Tags         applications
// @Accept       json
// @Produce      json
// @Param        id    path      int                true  "Job ID"
// @Param        body  body      ApplyToJobRequest  true  "Application data"
// @Success      201   {object}  response.Response{data=domain.Application}
// @Failure      400   {object}  response.Response
// @Failure      409   {object}  response.Response
// @Router       /candidates/jobs/{id}/apply [post]
// @Security     BearerAuth
func (h *ApplicationHandler) ApplyToJob(c *gin.Context) {
	jobID, ok := pathID(c, "id", "job ID")
	if !ok {
		return
	}
	var req ApplyToJobRequest
	if !bindJSON(c, &req) {
		return
	}

	app, err := h.applicationUC.Submit(c.Request.Context(), middleware.CurrentPrincipal(c), domain.SubmitApplicationInput{
		JobID:       jobID,
		ResumeURL:   req.ResumeURL,
		ResumeKey:   req.ResumeKey,
		CoverLetter: req.CoverLetter,
	})
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Application submitted successfully", app)
}

// GetMyApplications godoc
// @Summary      Get my applications
// @Tags         applications
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.Application}
// @Router       /candidates/applications [get]
// @Security     BearerAuth
func (h *ApplicationHandler) GetMyApplications(c *gin.Context) {
	applications, err := h.applicationUC.ListMine(c.Request.Context(), middleware.CurrentPrincipal(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Applications retrieved", applications)
}

// WithdrawApplication godoc
// @Summary      Withdraw an application
// @Tags         applications
// @Produce      json
// @Param        id   path      int  true  "Application ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /candidates/applications/{id} [delete]
// @Security     BearerAuth
func (h *ApplicationHandler) WithdrawApplication(c *gin.Context) {
	id, ok := pathID(c, "id", "application ID")
	if !ok {
		return
	}
	if err := h.applicationUC.Withdraw(c.Request.Context(), middleware.CurrentPrincipal(c), id); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Application withdrawn", nil)
}

// ListJobApplications godoc
// @Summary      List applications for a job
// @Tags         applications
// @Produce      json
// @Param        id   path      int  true  "Job ID"
// @Success      200  {object}  response.Response{data=[]domain.Application}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /recruiters/jobs/{id}/applications [get]
// @Security     BearerAuth
func (h *ApplicationHandler) ListJobApplications(c *gin.Context) {
	jobID, ok := pathID(c, "id", "job ID")
	if !ok {
		return
	}
	applications, err := h.applicationUC.ListByJob(c.Request.Context(), middleware.CurrentPrincipal(c), jobID)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Applications retrieved", applications)
}

// GetPipeline godoc
// @Summary      ATS pipeline of a job
// @Description  Applications grouped by status, one column per status
// @Tags         applications
// @Produce      json
// @Param        id   path      int  true  "Job ID"
// @Success      200  {object}  response.Response{data=[]domain.PipelineColumn}
// @Router       /recruiters/jobs/{id}/pipeline [get]
// @Security     BearerAuth
func (h *ApplicationHandler) GetPipeline(c *gin.Context) {
	jobID, ok := pathID(c, "id", "job ID")
	if !ok {
		return
	}
	columns, err := h.applicationUC.Pipeline(c.Request.Context(), middleware.CurrentPrincipal(c), jobID)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Pipeline retrieved", columns)
}

// GetApplicationDetail godoc
// @Summary      Get application detail
// @Description  The owning recruiter's first view marks the application viewed
// @Tags         applications
// @Produce      json
// @Param        id   path      int  true  "Application ID"
// @Success      200  {object}  response.Response{data=domain.Application}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /recruiters/applications/{id} [get]
// @Security     BearerAuth
func (h *ApplicationHandler) GetApplicationDetail(c *gin.Context) {
	id, ok := pathID(c, "id", "application ID")
	if !ok {
		return
	}
	app, err := h.applicationUC.GetDetail(c.Request.Context(), middleware.CurrentPrincipal(c), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Application retrieved", app)
}

// UpdateApplicationStatus godoc
// @Summary      Transition an application
// @Description  Status must be one of Applied, Reviewed, Shortlisted, Interview-Scheduled, Rejected, Selected
// @Tags         applications
// @Accept       json
// @Produce      json
// @Param        id    path      int                  true  "Application ID"
// @Param        body  body      UpdateStatusRequest  true  "New status"
// @Success      200   {object}  response.Response{data=domain.Application}
// @Failure      403   {object}  response.Response
// @Failure      409   {object}  response.Response
// @Failure      422   {object}  response.Response
// @Router       /recruiters/applications/{id}/status [patch]
// @Security     BearerAuth
func (h *ApplicationHandler) UpdateApplicationStatus(c *gin.Context) {
	id, ok := pathID(c, "id", "application ID")
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	app, err := h.applicationUC.Transition(c.Request.Context(), middleware.CurrentPrincipal(c), id, req.Status, req.Note)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Application status updated", app)
}

// BulkUpdateStatus godoc
// @Summary      Transition several applications
// @Description  All-or-nothing: one unauthorized or illegal item rejects the batch
// @Tags         applications
// @Accept       json
// @Produce      json
// @Param        body  body      BulkUpdateStatusRequest  true  "Applications and status"
// @Success      200   {object}  response.Response{data=domain.BulkTransitionResult}
// @Failure      403   {object}  response.Response
// @Failure      422   {object}  response.Response
// @Router       /recruiters/applications/status [patch]
// @Security     BearerAuth
func (h *ApplicationHandler) BulkUpdateStatus(c *gin.Context) {
	var req BulkUpdateStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.applicationUC.BulkTransition(c.Request.Context(), middleware.CurrentPrincipal(c), req.ApplicationIDs, req.Status, req.Note)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Application statuses updated", result)
}
