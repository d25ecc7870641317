package v1

import (
	"net/http"
	"strconv"

	"go-placement-backend/internal/delivery/http/middleware"
	"go-placement-backend/internal/delivery/http/response"
	"go-placement-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	chatUC domain.ChatUsecase
}

func NewChatHandler(protected *gin.RouterGroup, chatUC domain.ChatUsecase) {
	handler := &ChatHandler{chatUC: chatUC}

	chats := protected.Group("/chats")
	{
		chats.POST("", handler.GetOrCreate)
		chats.GET("", handler.List)
		chats.GET("/:id/messages", handler.ListMessages)
		chats.POST("/:id/messages", handler.PostMessage)
		chats.PATCH("/:id/read", handler.MarkRead)
		chats.DELETE("/:id", handler.Delete)
	}
}

type CreateChatRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
	JobID  *int64 `json:"job_id" binding:"omitempty,gt=0"`
}

// PostMessageRequest carries the raw text; trimming and length rules are
// applied by the chat service.
type PostMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

// GetOrCreate godoc
// @Summary      Open a chat
// @Description  Returns the existing chat between the two users or creates it
// @Tags         chats
// @Accept       json
// @Produce      json
// @Param        body  body      CreateChatRequest  true  "Counterpart"
// @Success      200   {object}  response.Response{data=domain.Chat}
// @Failure      400   {object}  response.Response
// @Router       /chats [post]
// @Security     BearerAuth
func (h *ChatHandler) GetOrCreate(c *gin.Context) {
	var req CreateChatRequest
	if !bindJSON(c, &req) {
		return
	}
	chat, err := h.chatUC.GetOrCreateChat(c.Request.Context(), middleware.CurrentPrincipal(c).ID, req.UserID, req.JobID)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Chat ready", chat)
}

// List godoc
// @Summary      List my chats
// @Tags         chats
// @Produce      json
// @Param        page       query     int  false  "Page number"
// @Param        page_size  query     int  false  "Page size"
// @Success      200  {object}  response.Response{data=domain.PaginatedResult[domain.Chat]}
// @Router       /chats [get]
// @Security     BearerAuth
func (h *ChatHandler) List(c *gin.Context) {
	result, err := h.chatUC.ListChats(c.Request.Context(), middleware.CurrentPrincipal(c).ID,
		queryInt(c, "page", 1),
		queryInt(c, "page_size", 20),
	)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Chats retrieved", result)
}

// ListMessages godoc
// @Summary      List messages of a chat
// @Description  Newest first; pass the oldest id seen as before to page back
// @Tags         chats
// @Produce      json
// @Param        id      path      int  true   "Chat ID"
// @Param        before  query     int  false  "Message id cursor"
// @Param        limit   query     int  false  "Page size"
// @Success      200  {object}  response.Response{data=[]domain.Message}
// @Failure      404  {object}  response.Response
// @Router       /chats/{id}/messages [get]
// @Security     BearerAuth
func (h *ChatHandler) ListMessages(c *gin.Context) {
	chatID, ok := pathID(c, "id", "chat ID")
	if !ok {
		return
	}
	before, _ := strconv.ParseInt(c.Query("before"), 10, 64)

	messages, err := h.chatUC.ListMessages(c.Request.Context(), chatID, middleware.CurrentPrincipal(c).ID, before, queryInt(c, "limit", 50))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Messages retrieved", messages)
}

// PostMessage godoc
// @Summary      Send a message
// @Description  The message is broadcast to connected participants
// @Tags         chats
// @Accept       json
// @Produce      json
// @Param        id    path      int                 true  "Chat ID"
// @Param        body  body      PostMessageRequest  true  "Message"
// @Success      201   {object}  response.Response{data=domain.Message}
// @Failure      400   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Router       /chats/{id}/messages [post]
// @Security     BearerAuth
func (h *ChatHandler) PostMessage(c *gin.Context) {
	chatID, ok := pathID(c, "id", "chat ID")
	if !ok {
		return
	}
	var req PostMessageRequest
	if !bindJSON(c, &req) {
		return
	}

	msg, err := h.chatUC.PostMessage(c.Request.Context(), chatID, middleware.CurrentPrincipal(c).ID, req.Text)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Message sent", msg)
}

// MarkRead godoc
// @Summary      Mark a chat read
// @Tags         chats
// @Produce      json
// @Param        id   path      int  true  "Chat ID"
// @Success      200  {object}  response.Response
// @Router       /chats/{id}/read [patch]
// @Security     BearerAuth
func (h *ChatHandler) MarkRead(c *gin.Context) {
	chatID, ok := pathID(c, "id", "chat ID")
	if !ok {
		return
	}
	updated, err := h.chatUC.MarkChatRead(c.Request.Context(), chatID, middleware.CurrentPrincipal(c).ID)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Chat marked as read", gin.H{"updated": updated})
}

// Delete godoc
// @Summary      Delete a chat
// @Description  Removes the chat and all of its messages
// @Tags         chats
// @Produce      json
// @Param        id   path      int  true  "Chat ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /chats/{id} [delete]
// @Security     BearerAuth
func (h *ChatHandler) Delete(c *gin.Context) {
	chatID, ok := pathID(c, "id", "chat ID")
	if !ok {
		return
	}
	if err := h.chatUC.DeleteChat(c.Request.Context(), chatID, middleware.CurrentPrincipal(c).ID); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Chat deleted", nil)
}
