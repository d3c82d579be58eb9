package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/socialnet/internal/service"
	"github.com/d60-Lab/socialnet/pkg/response"
)

// SessionConfig 会话 cookie 参数
type SessionConfig struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Handler 聚合各业务服务的 HTTP 入口
type Handler struct {
	authService    service.AuthService
	relService     service.RelationshipService
	postService    service.PostService
	profileService service.ProfileService
	notifyService  service.NotificationService
	session        SessionConfig
}

func New(
	auth service.AuthService,
	rel service.RelationshipService,
	posts service.PostService,
	profiles service.ProfileService,
	notes service.NotificationService,
	session SessionConfig,
) *Handler {
	return &Handler{
		authService:    auth,
		relService:     rel,
		postService:    posts,
		profileService: profiles,
		notifyService:  notes,
		session:        session,
	}
}

// fail 把服务层错误映射为 HTTP 状态码；未知错误统一 500
func fail(c *gin.Context, err error) {
	msg := service.Message(err)
	switch {
	case msg == "":
		response.InternalError(c, err)
	case errors.Is(err, service.ErrNotFound):
		response.NotFound(c, msg)
	case errors.Is(err, service.ErrUnauthorized), errors.Is(err, service.ErrForbidden):
		response.Unauthorized(c, msg)
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrInvalidReference),
		errors.Is(err, service.ErrSelfReference),
		errors.Is(err, service.ErrConflict),
		errors.Is(err, service.ErrInvalidCredentials):
		response.BadRequest(c, msg)
	default:
		response.InternalError(c, err)
	}
}

func (h *Handler) setSession(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(h.session.CookieName, token, int(h.session.TTL.Seconds()), "/", "", h.session.Secure, true)
}

func (h *Handler) clearSession(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(h.session.CookieName, "", -1, "/", "", h.session.Secure, true)
}

// Health 存活检查
// @Summary 健康检查
// @Tags 运维
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *Handler) Health(c *gin.Context) {
	response.Success(c, gin.H{"status": "ok"})
}
