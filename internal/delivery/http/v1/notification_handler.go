package v1

import (
	"net/http"
	"strconv"

	"go-placement-backend/internal/delivery/http/middleware"
	"go-placement-backend/internal/delivery/http/response"
	"go-placement-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notificationUC domain.NotificationUsecase
}

func NewNotificationHandler(protected *gin.RouterGroup, notificationUC domain.NotificationUsecase) {
	handler := &NotificationHandler{notificationUC: notificationUC}

	notifications := protected.Group("/notifications")
	{
		notifications.GET("", handler.List)
		notifications.GET("/unread-count", handler.UnreadCount)
		notifications.PATCH("/read-all", handler.MarkAllRead)
		notifications.PATCH("/:id/read", handler.MarkRead)
		notifications.DELETE("/read", handler.DeleteRead)
		notifications.DELETE("/:id", handler.Delete)
	}
}

// List godoc
// @Summary      List my notifications
// @Description  Newest first. The page always carries the current unread count.
// @Tags         notifications
// @Produce      json
// @Param        unread_only  query     bool  false  "Only unread notifications"
// @Param        limit        query     int   false  "Page size (default 20, max 100)"
// @Param        skip         query     int   false  "Items to skip"
// @Success      200  {object}  response.Response{data=domain.NotificationPage}
// @Router       /notifications [get]
// @Security     BearerAuth
func (h *NotificationHandler) List(c *gin.Context) {
	unreadOnly, _ := strconv.ParseBool(c.Query("unread_only"))
	page, err := h.notificationUC.List(c.Request.Context(), middleware.CurrentPrincipal(c).ID, domain.NotificationFilter{
		UnreadOnly: unreadOnly,
		Limit:      queryInt(c, "limit", domain.DefaultNotificationLimit),
		Skip:       queryInt(c, "skip", 0),
	})
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Notifications retrieved", page)
}

// UnreadCount godoc
// @Summary      Unread notification count
// @Tags         notifications
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /notifications/unread-count [get]
// @Security     BearerAuth
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	count, err := h.notificationUC.UnreadCount(c.Request.Context(), middleware.CurrentPrincipal(c).ID)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Unread count", gin.H{"unread_count": count})
}

// MarkRead godoc
// @Summary      Mark a notification read
// @Tags         notifications
// @Produce      json
// @Param        id   path      int  true  "Notification ID"
// @Success      200  {object}  response.Response{data=domain.Notification}
// @Failure      404  {object}  response.Response
// @Router       /notifications/{id}/read [patch]
// @Security     BearerAuth
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := pathID(c, "id", "notification ID")
	if !ok {
		return
	}
	n, err := h.notificationUC.MarkRead(c.Request.Context(), id, middleware.CurrentPrincipal(c).ID)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Notification marked as read", n)
}

// MarkAllRead godoc
// @Summary      Mark all notifications read
// @Tags         notifications
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /notifications/read-all [patch]
// @Security     BearerAuth
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	updated, err := h.notificationUC.MarkAllRead(c.Request.Context(), middleware.CurrentPrincipal(c).ID)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Notifications marked as read", gin.H{"updated": updated})
}

// Delete godoc
// @Summary      Delete a notification
// @Tags         notifications
// @Produce      json
// @Param        id   path      int  true  "Notification ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /notifications/{id} [delete]
// @Security     BearerAuth
func (h *NotificationHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id", "notification ID")
	if !ok {
		return
	}
	if err := h.notificationUC.Delete(c.Request.Context(), id, middleware.CurrentPrincipal(c).ID); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Notification deleted", nil)
}

// DeleteRead godoc
// @Summary      Delete all read notifications
// @Tags         notifications
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /notifications/read [delete]
// @Security     BearerAuth
func (h *NotificationHandler) DeleteRead(c *gin.Context) {
	deleted, err := h.notificationUC.DeleteRead(c.Request.Context(), middleware.CurrentPrincipal(c).ID)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Read notifications deleted", gin.H{"deleted": deleted})
}
