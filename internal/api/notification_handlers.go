package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type telegramRequest struct {
	ChatID int64 `json:"chat_id"`
}

func (h *handler) getNotifications(c *gin.Context) {
	unreadOnly := c.Query("unread") == "true"
	notifications, err := h.services.Notifications.GetNotifications(c.Request.Context(), callerID(c), unreadOnly)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, notifications)
}

func (h *handler) unreadCount(c *gin.Context) {
	count, err := h.services.Notifications.UnreadCount(c.Request.Context(), callerID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (h *handler) markRead(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.services.Notifications.MarkRead(c.Request.Context(), callerID(c), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) markAllRead(c *gin.Context) {
	updated, err := h.services.Notifications.MarkAllRead(c.Request.Context(), callerID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

// linkTelegram stores the chat id the bot reported on /start.
func (h *handler) linkTelegram(c *gin.Context) {
	var req telegramRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.services.Notifications.LinkTelegram(c.Request.Context(), callerID(c), req.ChatID); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
