package v1

import (
	"strings"

	"go-placement-backend/internal/delivery/http/middleware"
	"go-placement-backend/internal/delivery/http/response"
	"go-placement-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type ATSHandler struct {
	atsUC domain.ATSUsecase
}

// NewATSHandler registers the applicant export route
func NewATSHandler(recruiters *gin.RouterGroup, atsUC domain.ATSUsecase) {
	handler := &ATSHandler{atsUC: atsUC}

	recruiters.GET("/jobs/:id/applications/export", handler.ExportApplicants)
}

// ExportApplicants godoc
// @Summary      Export applicants of a job
// @Description  Downloads the applicant list as an Excel workbook or CSV file
// @Tags         applications
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce      text/csv
// @Security     BearerAuth
// @Param        id       path      int     true   "Job ID"
// @Param        format   query     string  false  "xlsx (default) or csv"
// @Param        columns  query     string  false  "Comma-separated columns (application_id,candidate_name,candidate_email,status,resume_url,applied_at,last_change_at,interviews)"
// @Success      200  {file}    file
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /recruiters/jobs/{id}/applications/export [get]
func (h *ATSHandler) ExportApplicants(c *gin.Context) {
	jobID, ok := pathID(c, "id", "job ID")
	if !ok {
		return
	}

	req := domain.ATSExportRequest{
		JobID:  jobID,
		Format: strings.ToLower(c.Query("format")),
	}
	if cols := c.Query("columns"); cols != "" {
		for _, col := range strings.Split(cols, ",") {
			if col = strings.TrimSpace(col); col != "" {
				req.Columns = append(req.Columns, col)
			}
		}
	}

	file, err := h.atsUC.Export(c.Request.Context(), middleware.CurrentPrincipal(c), req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}
