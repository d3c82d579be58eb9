package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/socialnet/internal/api/middleware"
	"github.com/d60-Lab/socialnet/pkg/response"
)

// Notifications 当前用户的通知，最新的在前
// @Summary 通知列表
// @Tags 通知
// @Produce json
// @Success 200 {array} model.NotificationView
// @Router /api/notifications [get]
func (h *Handler) Notifications(c *gin.Context) {
	notes, err := h.notifyService.List(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, notes)
}

// ClearNotifications 清空当前用户的通知
// @Summary 清空通知
// @Tags 通知
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/notifications [delete]
func (h *Handler) ClearNotifications(c *gin.Context) {
	n, err := h.notifyService.Clear(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"message": "Notifications deleted successfully", "deleted": n})
}
