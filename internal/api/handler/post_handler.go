package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/socialnet/internal/api/middleware"
	"github.com/d60-Lab/socialnet/pkg/response"
)

type createPostRequest struct {
	Text  string `json:"text"`
	Image string `json:"image"`
}

type commentRequest struct {
	Text string `json:"text"`
}

// CreatePost 发帖；图片为 data URI 或 base64，上传后只保存 URL
// @Summary 发帖
// @Tags 帖子
// @Accept json
// @Produce json
// @Param request body createPostRequest true "文本和/或图片"
// @Success 201 {object} model.PostView
// @Failure 400 {object} response.ErrorBody
// @Failure 401 {object} response.ErrorBody
// @Router /api/post/create [post]
func (h *Handler) CreatePost(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	post, err := h.postService.Create(c.Request.Context(), middleware.CurrentUserID(c), req.Text, req.Image)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, post)
}

// DeletePost 删除自己的帖子
// @Summary 删除帖子
// @Tags 帖子
// @Produce json
// @Param id path string true "帖子ID"
// @Success 200 {object} response.MessageBody
// @Failure 401 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /api/post/{id} [delete]
func (h *Handler) DeletePost(c *gin.Context) {
	if err := h.postService.Delete(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	response.Message(c, "Post deleted successfully")
}

// LikeUnlike 切换点赞，返回最新的点赞用户列表
// @Summary 点赞/取消点赞
// @Tags 帖子
// @Produce json
// @Param id path string true "帖子ID"
// @Success 200 {array} string
// @Failure 404 {object} response.ErrorBody
// @Router /api/post/like/{id} [post]
func (h *Handler) LikeUnlike(c *gin.Context) {
	likes, err := h.postService.ToggleLike(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, likes)
}

// Comment 追加评论，返回完整评论列表
// @Summary 评论
// @Tags 帖子
// @Accept json
// @Produce json
// @Param id path string true "帖子ID"
// @Param request body commentRequest true "评论内容"
// @Success 200 {array} model.CommentView
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /api/post/comment/{id} [post]
func (h *Handler) Comment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	comments, err := h.postService.AddComment(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id"), req.Text)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, comments)
}

// AllPosts 全站时间线
// @Summary 全部帖子
// @Tags 时间线
// @Produce json
// @Success 200 {array} model.PostView
// @Router /api/post/all [get]
func (h *Handler) AllPosts(c *gin.Context) {
	posts, err := h.postService.ListAll(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, posts)
}

// FollowingPosts 关注的人的帖子
// @Summary 关注时间线
// @Tags 时间线
// @Produce json
// @Success 200 {array} model.PostView
// @Router /api/post/following [get]
func (h *Handler) FollowingPosts(c *gin.Context) {
	posts, err := h.postService.ListFollowingFeed(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, posts)
}

// UserPosts 某用户的帖子
// @Summary 用户帖子
// @Tags 时间线
// @Produce json
// @Param username path string true "用户名"
// @Success 200 {array} model.PostView
// @Failure 404 {object} response.ErrorBody
// @Router /api/post/user/{username} [get]
func (h *Handler) UserPosts(c *gin.Context) {
	posts, err := h.postService.ListByUser(c.Request.Context(), c.Param("username"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, posts)
}

// LikedPosts 某用户点赞过的帖子
// @Summary 点赞过的帖子
// @Tags 时间线
// @Produce json
// @Param id path string true "用户ID"
// @Success 200 {array} model.PostView
// @Failure 404 {object} response.ErrorBody
// @Router /api/post/liked/{id} [get]
func (h *Handler) LikedPosts(c *gin.Context) {
	posts, err := h.postService.ListLiked(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, posts)
}
