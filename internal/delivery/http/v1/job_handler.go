package v1

import (
	"net/http"

	"go-placement-backend/internal/delivery/http/middleware"
	"go-placement-backend/internal/delivery/http/response"
	"go-placement-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type JobHandler struct {
	jobUC domain.JobUsecase
}

func NewJobHandler(public, recruiters *gin.RouterGroup, jobUC domain.JobUsecase) {
	handler := &JobHandler{jobUC: jobUC}

	publicJobs := public.Group("/jobs")
	{
		publicJobs.GET("", handler.PublicList)
		publicJobs.GET("/:id", handler.PublicGetDetails)
	}

	recruiters.POST("/jobs", handler.Create)
	recruiters.GET("/jobs", handler.ListMine)
	recruiters.PUT("/jobs/:id", handler.Update)
	recruiters.POST("/jobs/:id/close", handler.Close)
}

// JobRequest is the create/update payload for a job posting
type JobRequest struct {
	Title          string  `json:"title" binding:"required,not_blank,no_emoji,max=200"`
	Description    string  `json:"description" binding:"required,max=20000"`
	Location       string  `json:"location" binding:"required,max=200"`
	EmploymentType *string `json:"employment_type" binding:"omitempty,oneof=full-time part-time contract internship"`
	SalaryMin      float64 `json:"salary_min" binding:"gte=0"`
	SalaryMax      float64 `json:"salary_max" binding:"gte=0"`
}

func (r JobRequest) toInput() domain.JobInput {
	return domain.JobInput{
		Title:          r.Title,
		Description:    r.Description,
		Location:       r.Location,
		EmploymentType: r.EmploymentType,
		SalaryMin:      r.SalaryMin,
		SalaryMax:      r.SalaryMax,
	}
}

// Create godoc
// @Summary      Create a job
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        body  body      JobRequest  true  "Job data"
// @Success      201   {object}  response.Response{data=domain.Job}
// @Failure      400   {object}  response.Response
// @Router       /recruiters/jobs [post]
// @Security     BearerAuth
func (h *JobHandler) Create(c *gin.Context) {
	var req JobRequest
	if !bindJSON(c, &req) {
		return
	}

	job, err := h.jobUC.CreateJob(c.Request.Context(), middleware.CurrentPrincipal(c), req.toInput())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Job created successfully", job)
}

// PublicList godoc
// @Summary      List open jobs
// @Tags         jobs
// @Produce      json
// @Param        q          query     string  false  "Search in title and description"
// @Param        location   query     string  false  "Location filter"
// @Param        page       query     int     false  "Page number"
// @Param        page_size  query     int     false  "Page size"
// @Success      200  {object}  response.Response{data=domain.PaginatedResult[domain.JobWithCompany]}
// @Router       /jobs [get]
func (h *JobHandler) PublicList(c *gin.Context) {
	result, err := h.jobUC.ListOpenJobs(c.Request.Context(),
		c.Query("q"),
		c.Query("location"),
		queryInt(c, "page", 1),
		queryInt(c, "page_size", 20),
	)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Jobs retrieved", result)
}

// PublicGetDetails godoc
// @Summary      Get job details
// @Tags         jobs
// @Produce      json
// @Param        id   path      int  true  "Job ID"
// @Success      200  {object}  response.Response{data=domain.JobWithCompany}
// @Failure      404  {object}  response.Response
// @Router       /jobs/{id} [get]
func (h *JobHandler) PublicGetDetails(c *gin.Context) {
	id, ok := pathID(c, "id", "job ID")
	if !ok {
		return
	}
	job, err := h.jobUC.GetJobDetails(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job retrieved", job)
}

// ListMine godoc
// @Summary      List my jobs
// @Tags         jobs
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.Job}
// @Router       /recruiters/jobs [get]
// @Security     BearerAuth
func (h *JobHandler) ListMine(c *gin.Context) {
	jobs, err := h.jobUC.ListMyJobs(c.Request.Context(), middleware.CurrentPrincipal(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Jobs retrieved", jobs)
}

// Update godoc
// @Summary      Update a job
// @Description  Users who saved the job are notified
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        id    path      int         true  "Job ID"
// @Param        body  body      JobRequest  true  "Job data"
// @Success      200   {object}  response.Response{data=domain.Job}
// @Failure      403   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Router       /recruiters/jobs/{id} [put]
// @Security     BearerAuth
func (h *JobHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id", "job ID")
	if !ok {
		return
	}
	var req JobRequest
	if !bindJSON(c, &req) {
		return
	}

	job, err := h.jobUC.UpdateJob(c.Request.Context(), middleware.CurrentPrincipal(c), id, req.toInput())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job updated successfully", job)
}

// Close godoc
// @Summary      Close a job
// @Description  Candidates with active applications are notified
// @Tags         jobs
// @Produce      json
// @Param        id   path      int  true  "Job ID"
// @Success      200  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /recruiters/jobs/{id}/close [post]
// @Security     BearerAuth
func (h *JobHandler) Close(c *gin.Context) {
	id, ok := pathID(c, "id", "job ID")
	if !ok {
		return
	}
	if err := h.jobUC.CloseJob(c.Request.Context(), middleware.CurrentPrincipal(c), id); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job closed", nil)
}
