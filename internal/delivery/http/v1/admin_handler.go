package v1

import (
	"net/http"

	"go-placement-backend/internal/delivery/http/middleware"
	"go-placement-backend/internal/delivery/http/response"
	"go-placement-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboardUC domain.DashboardUsecase
}

func NewDashboardHandler(admins, recruiters *gin.RouterGroup, dashboardUC domain.DashboardUsecase) {
	handler := &DashboardHandler{dashboardUC: dashboardUC}

	admins.GET("/dashboard", handler.GetAdminStats)
	recruiters.GET("/dashboard", handler.GetRecruiterStats)
}

// GetAdminStats godoc
// @Summary      Get admin dashboard statistics
// @Description  Platform counts, status distribution, dependency health and live session count
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=domain.AdminStats}
// @Failure      403  {object}  response.Response
// @Router       /admin/dashboard [get]
func (h *DashboardHandler) GetAdminStats(c *gin.Context) {
	stats, err := h.dashboardUC.AdminStats(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Dashboard statistics", stats)
}

// GetRecruiterStats godoc
// @Summary      Get recruiter dashboard statistics
// @Tags         recruiters
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=domain.RecruiterStats}
// @Router       /recruiters/dashboard [get]
func (h *DashboardHandler) GetRecruiterStats(c *gin.Context) {
	stats, err := h.dashboardUC.RecruiterStats(c.Request.Context(), middleware.CurrentPrincipal(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Dashboard statistics", stats)
}
