package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/socialnet/internal/api/middleware"
	"github.com/d60-Lab/socialnet/internal/service"
	"github.com/d60-Lab/socialnet/pkg/response"
)

// FollowUnfollow 切换关注状态
// @Summary 关注/取消关注
// @Tags 关系链
// @Produce json
// @Param id path string true "目标用户ID"
// @Success 200 {object} response.MessageBody
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /api/user/follow/{id} [post]
func (h *Handler) FollowUnfollow(c *gin.Context) {
	state, err := h.relService.FollowOrUnfollow(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	if state == service.Followed {
		response.Message(c, "User followed successfully")
		return
	}
	response.Message(c, "User unfollowed successfully")
}

// Suggested 推荐关注（排除自己和已关注的人）
// @Summary 推荐用户
// @Tags 关系链
// @Produce json
// @Param limit query int false "数量" default(4)
// @Success 200 {array} model.UserView
// @Router /api/user/suggested [get]
func (h *Handler) Suggested(c *gin.Context) {
	n, _ := strconv.Atoi(c.Query("limit"))
	users, err := h.relService.Suggest(c.Request.Context(), middleware.CurrentUserID(c), n)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, users)
}

// ListFollowing 查询某用户关注的人
// @Summary 查询关注列表
// @Tags 关系链
// @Produce json
// @Param id path string true "用户ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10) maximum(100)
// @Success 200 {object} map[string]interface{}
// @Router /api/user/{id}/following [get]
func (h *Handler) ListFollowing(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	list, err := h.relService.ListFollowing(c.Request.Context(), c.Param("id"), page, pageSize)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "list": list})
}

// ListFollowers 查询某用户的粉丝
// @Summary 查询粉丝列表
// @Tags 关系链
// @Produce json
// @Param id path string true "用户ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10) maximum(100)
// @Success 200 {object} map[string]interface{}
// @Router /api/user/{id}/followers [get]
func (h *Handler) ListFollowers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	list, err := h.relService.ListFans(c.Request.Context(), c.Param("id"), page, pageSize)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "list": list})
}
