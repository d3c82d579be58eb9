package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/socialnet/internal/api/middleware"
	"github.com/d60-Lab/socialnet/internal/service"
	"github.com/d60-Lab/socialnet/pkg/response"
)

// Profile 按用户名查询资料
// @Summary 用户资料
// @Tags 用户
// @Produce json
// @Param userName path string true "用户名"
// @Success 200 {object} model.UserView
// @Failure 404 {object} response.ErrorBody
// @Router /api/user/profile/{userName} [get]
func (h *Handler) Profile(c *gin.Context) {
	user, err := h.profileService.GetProfile(c.Request.Context(), c.Param("userName"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, user)
}

// UpdateProfile 修改资料；空字段保持原值
// @Summary 修改资料
// @Tags 用户
// @Accept json
// @Produce json
// @Param request body service.UpdateProfileInput true "资料字段"
// @Success 200 {object} model.UserView
// @Failure 400 {object} response.ErrorBody
// @Router /api/user/update [post]
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req service.UpdateProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	user, err := h.profileService.UpdateProfile(c.Request.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, user)
}
