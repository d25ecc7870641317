package v1

import (
	"net/http"

	"go-placement-backend/internal/delivery/http/middleware"
	"go-placement-backend/internal/delivery/http/response"
	"go-placement-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

// AuthHandler exposes the local view of the identity provider's user.
// Credentials are never handled here; tokens are issued upstream.
type AuthHandler struct {
	authUC domain.AuthUsecase
}

func NewAuthHandler(protected *gin.RouterGroup, authUC domain.AuthUsecase) {
	handler := &AuthHandler{authUC: authUC}

	protectedAuth := protected.Group("/auth")
	{
		protectedAuth.GET("/me", handler.Me)
		protectedAuth.POST("/sync", handler.SyncProfile)
	}
}

type SyncProfileRequest struct {
	Name string `json:"name" binding:"max=200"`
}

// Me godoc
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.User}
// @Failure      401  {object}  response.Response
// @Router       /auth/me [get]
// @Security     BearerAuth
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.authUC.GetCurrentUser(c.Request.Context(), middleware.CurrentPrincipal(c).ID)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "User details", user)
}

// SyncProfile godoc
// @Summary      Sync profile from token claims
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      SyncProfileRequest  false  "Display name"
// @Success      200   {object}  response.Response{data=domain.User}
// @Router       /auth/sync [post]
// @Security     BearerAuth
func (h *AuthHandler) SyncProfile(c *gin.Context) {
	var req SyncProfileRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	principal := middleware.CurrentPrincipal(c)
	user := &domain.User{
		ID:    principal.ID,
		Email: c.GetString(string(domain.KeyUserEmail)),
		Name:  req.Name,
		Role:  principal.Role,
	}
	if err := h.authUC.EnsureUserExists(c.Request.Context(), user); err != nil {
		c.Error(err)
		return
	}

	synced, err := h.authUC.GetCurrentUser(c.Request.Context(), principal.ID)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profile synced", synced)
}
