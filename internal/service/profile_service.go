package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/d60-Lab/socialnet/internal/cache"
	"github.com/d60-Lab/socialnet/internal/media"
	"github.com/d60-Lab/socialnet/internal/model"
	"github.com/d60-Lab/socialnet/internal/repository"
)

// UpdateProfileInput 空字段表示保持原值
type UpdateProfileInput struct {
	FullName        string `json:"fullName"`
	Username        string `json:"userName"`
	Email           string `json:"email"`
	Bio             string `json:"bio"`
	Link            string `json:"link"`
	ProfileImg      string `json:"profileImg"`
	CoverImg        string `json:"coverImg"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ProfileService 资料查询与修改
type ProfileService interface {
	GetProfile(ctx context.Context, username string) (*model.UserView, error)
	UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*model.UserView, error)
}

type profileService struct {
	users   repository.UserRepository
	cache   *cache.UserCache
	relay   media.Relay
	cleaner MediaCleaner
	pop     *populator
}

func NewProfileService(repos *repository.Repositories, users *cache.UserCache, relay media.Relay, cleaner MediaCleaner) ProfileService {
	return &profileService{
		users:   repos.Users,
		cache:   users,
		relay:   relay,
		cleaner: cleaner,
		pop:     newPopulator(repos, users),
	}
}

func (s *profileService) GetProfile(ctx context.Context, username string) (*model.UserView, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundError("User not found")
		}
		return nil, err
	}
	return s.pop.userView(ctx, user.ID)
}

func (s *profileService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*model.UserView, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundError("User not found")
		}
		return nil, err
	}

	if err := s.applyPassword(user, in.CurrentPassword, in.NewPassword); err != nil {
		return nil, err
	}
	if email := strings.TrimSpace(in.Email); email != "" && email != user.Email {
		if !validEmail(email) {
			return nil, validationError("Invalid email format")
		}
		if err := s.ensureFree(ctx, user.ID, s.users.GetByEmail, email, "Email is already taken"); err != nil {
			return nil, err
		}
		user.Email = email
	}
	if name := strings.TrimSpace(in.Username); name != "" && name != user.Username {
		if !validUsername(name) {
			return nil, validationError("Invalid username")
		}
		if err := s.ensureFree(ctx, user.ID, s.users.GetByUsername, name, "Username is already taken"); err != nil {
			return nil, err
		}
		user.Username = name
	}
	if v := sanitize(in.FullName); v != "" {
		user.FullName = v
	}
	if v := sanitize(in.Bio); v != "" {
		user.Bio = v
	}
	if v := strings.TrimSpace(in.Link); v != "" {
		user.Link = v
	}

	// 先上传新图，记录保存成功后再回收旧图
	var uploaded, replaced []string
	for _, img := range []struct {
		payload string
		field   *string
		folder  string
	}{
		{in.ProfileImg, &user.ProfileImg, "profiles"},
		{in.CoverImg, &user.CoverImg, "covers"},
	} {
		if img.payload == "" {
			continue
		}
		url, err := uploadImage(ctx, s.relay, img.folder, img.payload)
		if err != nil {
			s.discard(uploaded)
			return nil, err
		}
		uploaded = append(uploaded, url)
		replaced = append(replaced, *img.field)
		*img.field = url
	}

	if err := s.users.Update(ctx, user); err != nil {
		s.discard(uploaded)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, conflictError("Username or email is already taken")
		}
		return nil, err
	}
	s.cache.Invalidate(ctx, user.ID)
	s.discard(replaced)

	return s.pop.userView(ctx, user.ID)
}

func (s *profileService) applyPassword(user *model.User, current, next string) error {
	if current == "" && next == "" {
		return nil
	}
	if current == "" || next == "" {
		return validationError("Please provide both current and new password")
	}
	if !checkPassword(user.Password, current) {
		return validationError("Invalid current password")
	}
	if !validPassword(next) {
		return validationError("Password must be at least 6 characters long")
	}
	hash, err := hashPassword(next)
	if err != nil {
		return err
	}
	user.Password = hash
	return nil
}

// ensureFree 值被其他用户占用时返回 Conflict；自己的旧值不算冲突
func (s *profileService) ensureFree(ctx context.Context, selfID string, lookup func(context.Context, string) (*model.User, error), value, msg string) error {
	owner, err := lookup(ctx, value)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}
	if owner.ID != selfID {
		return conflictError(msg)
	}
	return nil
}

func (s *profileService) discard(urls []string) {
	for _, u := range urls {
		s.cleaner.Enqueue(u)
	}
}
