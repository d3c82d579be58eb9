package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/d60-Lab/socialnet/internal/cache"
	"github.com/d60-Lab/socialnet/internal/model"
	"github.com/d60-Lab/socialnet/internal/repository"
	"github.com/d60-Lab/socialnet/pkg/jwt"
)

// bcryptCost 测试中可调低
var bcryptCost = bcrypt.DefaultCost

// RegisterInput 注册参数
type RegisterInput struct {
	Username string `json:"userName"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthService 注册、登录与会话校验
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*model.UserView, string, error)
	Authenticate(ctx context.Context, username, password string) (*model.UserView, string, error)
	// VerifyToken 校验会话令牌，返回用户 ID
	VerifyToken(token string) (string, error)
	CurrentUser(ctx context.Context, token string) (*model.UserView, error)
	TokenTTL() time.Duration
}

type authService struct {
	users  repository.UserRepository
	pop    *populator
	secret []byte
	ttl    time.Duration
}

func NewAuthService(repos *repository.Repositories, users *cache.UserCache, secret string, ttl time.Duration) AuthService {
	return &authService{
		users:  repos.Users,
		pop:    newPopulator(repos, users),
		secret: []byte(secret),
		ttl:    ttl,
	}
}

func (s *authService) TokenTTL() time.Duration { return s.ttl }

func (s *authService) Register(ctx context.Context, in RegisterInput) (*model.UserView, string, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	if !validEmail(in.Email) {
		return nil, "", validationError("Invalid email format")
	}
	if !validUsername(in.Username) {
		return nil, "", validationError("Invalid username")
	}
	if err := s.checkTaken(ctx, in.Username, in.Email); err != nil {
		return nil, "", err
	}
	if !validPassword(in.Password) {
		return nil, "", validationError("Password must be at least 6 characters long")
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, "", err
	}
	fullName := sanitize(in.FullName)
	if fullName == "" {
		fullName = in.Username
	}
	user := &model.User{
		ID:       uuid.New().String(),
		Username: in.Username,
		FullName: fullName,
		Email:    in.Email,
		Password: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// 并发注册时由唯一索引兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", conflictError("Username or email is already taken")
		}
		return nil, "", err
	}
	return s.issue(ctx, user.ID)
}

func (s *authService) checkTaken(ctx context.Context, username, email string) error {
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return conflictError("Username is already taken")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return conflictError("Email is already taken")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	return nil
}

func (s *authService) Authenticate(ctx context.Context, username, password string) (*model.UserView, string, error) {
	invalid := newError(ErrInvalidCredentials, "Invalid username or password")

	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// 仍做一次比较，避免通过耗时区分用户是否存在
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, "", invalid
		}
		return nil, "", err
	}
	if !checkPassword(user.Password, password) {
		return nil, "", invalid
	}
	return s.issue(ctx, user.ID)
}

func (s *authService) VerifyToken(token string) (string, error) {
	if token == "" {
		return "", newError(ErrUnauthorized, "Unauthorized: No token provided")
	}
	userID, err := jwt.ParseToken(token, s.secret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", newError(ErrUnauthorized, "Unauthorized: Token expired")
		}
		return "", newError(ErrUnauthorized, "Unauthorized: Invalid token")
	}
	return userID, nil
}

func (s *authService) CurrentUser(ctx context.Context, token string) (*model.UserView, error) {
	userID, err := s.VerifyToken(token)
	if err != nil {
		return nil, err
	}
	return s.pop.userView(ctx, userID)
}

func (s *authService) issue(ctx context.Context, userID string) (*model.UserView, string, error) {
	view, err := s.pop.userView(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	token, err := jwt.GenerateToken(userID, s.secret, s.ttl)
	if err != nil {
		return nil, "", err
	}
	return view, token, nil
}

var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("placeholder-password"), bcryptCost)

func hashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func checkPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}
