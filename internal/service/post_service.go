package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/socialnet/internal/cache"
	"github.com/d60-Lab/socialnet/internal/media"
	"github.com/d60-Lab/socialnet/internal/model"
	"github.com/d60-Lab/socialnet/internal/repository"
)

// MediaCleaner 异步回收不再被引用的图片
type MediaCleaner interface {
	Enqueue(url string)
}

// PostService 帖子、点赞、评论与各类时间线
type PostService interface {
	Create(ctx context.Context, ownerID, text, image string) (*model.PostView, error)
	Delete(ctx context.Context, requesterID, postID string) error
	ToggleLike(ctx context.Context, actorID, postID string) ([]string, error)
	AddComment(ctx context.Context, actorID, postID, text string) ([]model.CommentView, error)
	ListAll(ctx context.Context) ([]*model.PostView, error)
	ListByUser(ctx context.Context, username string) ([]*model.PostView, error)
	ListLiked(ctx context.Context, userID string) ([]*model.PostView, error)
	ListFollowingFeed(ctx context.Context, actorID string) ([]*model.PostView, error)
}

type postService struct {
	db       *gorm.DB
	users    repository.UserRepository
	posts    repository.PostRepository
	likes    repository.LikeRepository
	comments repository.CommentRepository
	relay    media.Relay
	cleaner  MediaCleaner
	notifier NotificationService
	pop      *populator
}

func NewPostService(db *gorm.DB, repos *repository.Repositories, users *cache.UserCache, relay media.Relay, cleaner MediaCleaner, notifier NotificationService) PostService {
	return &postService{
		db:       db,
		users:    repos.Users,
		posts:    repos.Posts,
		likes:    repos.Likes,
		comments: repos.Comments,
		relay:    relay,
		cleaner:  cleaner,
		notifier: notifier,
		pop:      newPopulator(repos, users),
	}
}

func (s *postService) Create(ctx context.Context, ownerID, text, image string) (*model.PostView, error) {
	text = sanitize(text)
	if text == "" && image == "" {
		return nil, validationError("Text or image is required")
	}
	if err := s.requireUser(ctx, ownerID); err != nil {
		return nil, err
	}

	post := &model.Post{ID: uuid.New().String(), UserID: ownerID, Text: text}
	if image != "" {
		url, err := uploadImage(ctx, s.relay, "posts", image)
		if err != nil {
			return nil, err
		}
		post.Image = url
	}
	if err := s.posts.Create(ctx, post); err != nil {
		s.cleaner.Enqueue(post.Image)
		return nil, err
	}

	views, err := s.pop.postViews(ctx, []*model.Post{post})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (s *postService) Delete(ctx context.Context, requesterID, postID string) error {
	post, err := s.getPost(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != requesterID {
		return newError(ErrForbidden, "You are not authorized to delete this post")
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.likes.WithTx(tx).DeleteByPost(ctx, post.ID); err != nil {
			return err
		}
		if err := s.comments.WithTx(tx).DeleteByPost(ctx, post.ID); err != nil {
			return err
		}
		return s.posts.WithTx(tx).Delete(ctx, post.ID)
	})
	if err != nil {
		return err
	}
	// 记录已删除，图片交给 janitor 异步回收
	s.cleaner.Enqueue(post.Image)
	return nil
}

func (s *postService) ToggleLike(ctx context.Context, actorID, postID string) ([]string, error) {
	post, err := s.getPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		likes := s.likes.WithTx(tx)
		liked, err := likes.Exists(ctx, post.ID, actorID)
		if err != nil {
			return err
		}
		if liked {
			return likes.Delete(ctx, post.ID, actorID)
		}
		inserted, err := likes.Create(ctx, post.ID, actorID)
		if err != nil || !inserted {
			// 并发点赞已写入同一行，只通知一次
			return err
		}
		return s.notifier.Notify(ctx, tx, actorID, post.UserID, model.NotificationLike)
	})
	if err != nil {
		return nil, err
	}

	likers, err := s.likes.LikerIDs(ctx, []string{post.ID})
	if err != nil {
		return nil, err
	}
	if l := likers[post.ID]; l != nil {
		return l, nil
	}
	return []string{}, nil
}

func (s *postService) AddComment(ctx context.Context, actorID, postID, text string) ([]model.CommentView, error) {
	post, err := s.getPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	text = sanitize(text)
	if text == "" {
		return nil, validationError("Text is required")
	}
	if err := s.comments.Create(ctx, &model.Comment{PostID: post.ID, UserID: actorID, Text: text}); err != nil {
		return nil, err
	}

	views, err := s.pop.postViews(ctx, []*model.Post{post})
	if err != nil {
		return nil, err
	}
	return views[0].Comments, nil
}

func (s *postService) ListAll(ctx context.Context) ([]*model.PostView, error) {
	posts, err := s.posts.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.pop.postViews(ctx, posts)
}

func (s *postService) ListByUser(ctx context.Context, username string) ([]*model.PostView, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundError("User not found")
		}
		return nil, err
	}
	posts, err := s.posts.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return s.pop.postViews(ctx, posts)
}

func (s *postService) ListLiked(ctx context.Context, userID string) ([]*model.PostView, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	liked, err := s.likes.LikedPostIDs(ctx, []string{userID})
	if err != nil {
		return nil, err
	}
	posts, err := s.posts.ListByIDs(ctx, liked[userID])
	if err != nil {
		return nil, err
	}
	return s.pop.postViews(ctx, posts)
}

func (s *postService) ListFollowingFeed(ctx context.Context, actorID string) ([]*model.PostView, error) {
	if err := s.requireUser(ctx, actorID); err != nil {
		return nil, err
	}
	posts, err := s.posts.ListFollowingFeed(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return s.pop.postViews(ctx, posts)
}

func (s *postService) getPost(ctx context.Context, postID string) (*model.Post, error) {
	if _, err := uuid.Parse(postID); err != nil {
		return nil, notFoundError("Post not found")
	}
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundError("Post not found")
		}
		return nil, err
	}
	return post, nil
}

func (s *postService) requireUser(ctx context.Context, userID string) error {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFoundError("User not found")
		}
		return err
	}
	return nil
}

// uploadImage 同步上传；载荷问题归为校验错误，其余为内部错误
func uploadImage(ctx context.Context, relay media.Relay, folder, payload string) (string, error) {
	url, err := relay.Upload(ctx, folder, payload)
	switch {
	case err == nil:
		return url, nil
	case errors.Is(err, media.ErrInvalidPayload), errors.Is(err, media.ErrNotImage):
		return "", validationError("Invalid image")
	case errors.Is(err, media.ErrTooLarge):
		return "", validationError("Image is too large")
	case errors.Is(err, media.ErrDisabled):
		return "", validationError("Image uploads are not available")
	default:
		return "", fmt.Errorf("upload image: %w", err)
	}
}
