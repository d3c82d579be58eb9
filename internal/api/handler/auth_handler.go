package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/socialnet/internal/service"
	"github.com/d60-Lab/socialnet/pkg/response"
)

type loginRequest struct {
	Username string `json:"userName"`
	Password string `json:"password"`
}

// Signup 注册并写入会话 cookie
// @Summary 注册
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body service.RegisterInput true "注册信息"
// @Success 201 {object} model.UserView
// @Failure 400 {object} response.ErrorBody
// @Failure 500 {object} response.ErrorBody
// @Router /api/auth/signup [post]
func (h *Handler) Signup(c *gin.Context) {
	var req service.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	user, token, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	h.setSession(c, token)
	response.Created(c, user)
}

// Login 登录
// @Summary 登录
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body loginRequest true "用户名与密码"
// @Success 200 {object} model.UserView
// @Failure 400 {object} response.ErrorBody
// @Failure 429 {object} response.ErrorBody
// @Router /api/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	user, token, err := h.authService.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	h.setSession(c, token)
	response.Success(c, user)
}

// Logout 清除会话 cookie
// @Summary 退出登录
// @Tags 认证
// @Produce json
// @Success 200 {object} response.MessageBody
// @Router /api/auth/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	h.clearSession(c)
	response.Message(c, "Logged out successfully")
}

// Me 当前登录用户
// @Summary 当前用户
// @Tags 认证
// @Produce json
// @Success 200 {object} model.UserView
// @Failure 401 {object} response.ErrorBody
// @Router /api/auth/user [get]
func (h *Handler) Me(c *gin.Context) {
	token, _ := c.Cookie(h.session.CookieName)
	user, err := h.authService.CurrentUser(c.Request.Context(), token)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, user)
}
