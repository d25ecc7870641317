package v1

import (
	"net/http"
	"time"

	"go-placement-backend/internal/delivery/http/middleware"
	"go-placement-backend/internal/delivery/http/response"
	"go-placement-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type InterviewHandler struct {
	interviewUC domain.InterviewUsecase
}

func NewInterviewHandler(recruiters *gin.RouterGroup, interviewUC domain.InterviewUsecase) {
	handler := &InterviewHandler{interviewUC: interviewUC}

	recruiters.POST("/applications/:id/interviews", handler.Schedule)
	recruiters.GET("/applications/:id/interviews", handler.ListByApplication)
	recruiters.GET("/interviews/upcoming", handler.ListUpcoming)
	recruiters.PATCH("/interviews/:id", handler.UpdateStatus)
	recruiters.POST("/interviews/:id/feedback", handler.SubmitFeedback)
}

type ScheduleInterviewRequest struct {
	Type            string    `json:"type" binding:"required,oneof=phone video in-person technical hr"`
	ScheduledAt     time.Time `json:"scheduled_at" binding:"required,future_time"`
	DurationMinutes int       `json:"duration_minutes" binding:"omitempty,min=5,max=480"`
	Location        *string   `json:"location" binding:"omitempty,max=300"`
	MeetingLink     *string   `json:"meeting_link" binding:"omitempty,url"`
	Notes           string    `json:"notes" binding:"max=2000"`
}

type UpdateInterviewRequest struct {
	Status      string     `json:"status" binding:"required"`
	ScheduledAt *time.Time `json:"scheduled_at"`
}

// Schedule godoc
// @Summary      Schedule an interview
// @Description  Moves the application to Interview-Scheduled when the workflow allows it
// @Tags         interviews
// @Accept       json
// @Produce      json
// @Param        id    path      int                       true  "Application ID"
// @Param        body  body      ScheduleInterviewRequest  true  "Interview data"
// @Success      201   {object}  response.Response{data=domain.Interview}
// @Failure      403   {object}  response.Response
// @Failure      422   {object}  response.Response
// @Router       /recruiters/applications/{id}/interviews [post]
// @Security     BearerAuth
func (h *InterviewHandler) Schedule(c *gin.Context) {
	applicationID, ok := pathID(c, "id", "application ID")
	if !ok {
		return
	}
	var req ScheduleInterviewRequest
	if !bindJSON(c, &req) {
		return
	}

	iv, err := h.interviewUC.Schedule(c.Request.Context(), middleware.CurrentPrincipal(c), applicationID, domain.ScheduleInterviewInput{
		Type:            domain.InterviewType(req.Type),
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: req.DurationMinutes,
		Location:        req.Location,
		MeetingLink:     req.MeetingLink,
		Notes:           req.Notes,
	})
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Interview scheduled", iv)
}

// ListByApplication godoc
// @Summary      List interviews of an application
// @Tags         interviews
// @Produce      json
// @Param        id   path      int  true  "Application ID"
// @Success      200  {object}  response.Response{data=[]domain.Interview}
// @Router       /recruiters/applications/{id}/interviews [get]
// @Security     BearerAuth
func (h *InterviewHandler) ListByApplication(c *gin.Context) {
	applicationID, ok := pathID(c, "id", "application ID")
	if !ok {
		return
	}
	interviews, err := h.interviewUC.ListByApplication(c.Request.Context(), middleware.CurrentPrincipal(c), applicationID)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Interviews retrieved", interviews)
}

// ListUpcoming godoc
// @Summary      Upcoming interviews
// @Tags         interviews
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.Interview}
// @Router       /recruiters/interviews/upcoming [get]
// @Security     BearerAuth
func (h *InterviewHandler) ListUpcoming(c *gin.Context) {
	interviews, err := h.interviewUC.ListUpcoming(c.Request.Context(), middleware.CurrentPrincipal(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Interviews retrieved", interviews)
}

// UpdateStatus godoc
// @Summary      Update interview status
// @Description  Rescheduling requires scheduled_at
// @Tags         interviews
// @Accept       json
// @Produce      json
// @Param        id    path      int                     true  "Interview ID"
// @Param        body  body      UpdateInterviewRequest  true  "Status"
// @Success      200   {object}  response.Response{data=domain.Interview}
// @Failure      409   {object}  response.Response
// @Router       /recruiters/interviews/{id} [patch]
// @Security     BearerAuth
func (h *InterviewHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "id", "interview ID")
	if !ok {
		return
	}
	var req UpdateInterviewRequest
	if !bindJSON(c, &req) {
		return
	}

	iv, err := h.interviewUC.UpdateStatus(c.Request.Context(), middleware.CurrentPrincipal(c), id, req.Status, req.ScheduledAt)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Interview updated", iv)
}

// SubmitFeedback godoc
// @Summary      Submit interview feedback
// @Tags         interviews
// @Accept       json
// @Produce      json
// @Param        id    path      int                       true  "Interview ID"
// @Param        body  body      domain.InterviewFeedback  true  "Feedback"
// @Success      200   {object}  response.Response{data=domain.Interview}
// @Router       /recruiters/interviews/{id}/feedback [post]
// @Security     BearerAuth
func (h *InterviewHandler) SubmitFeedback(c *gin.Context) {
	id, ok := pathID(c, "id", "interview ID")
	if !ok {
		return
	}
	var fb domain.InterviewFeedback
	if !bindJSON(c, &fb) {
		return
	}

	iv, err := h.interviewUC.SubmitFeedback(c.Request.Context(), middleware.CurrentPrincipal(c), id, fb)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Feedback saved", iv)
}
