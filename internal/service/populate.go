package service

import (
	"context"

	"github.com/d60-Lab/socialnet/internal/cache"
	"github.com/d60-Lab/socialnet/internal/model"
	"github.com/d60-Lab/socialnet/internal/repository"
)

// populator 批量组装对外视图：用户（含关注/粉丝/点赞集合）与帖子（含作者、点赞、评论）
type populator struct {
	users    *cache.UserCache
	follows  repository.FollowRepository
	fans     repository.FanRepository
	likes    repository.LikeRepository
	comments repository.CommentRepository
}

func newPopulator(repos *repository.Repositories, users *cache.UserCache) *populator {
	return &populator{
		users:    users,
		follows:  repos.Follows,
		fans:     repos.Fans,
		likes:    repos.Likes,
		comments: repos.Comments,
	}
}

func (p *populator) userViews(ctx context.Context, ids []string) (map[string]*model.UserView, error) {
	users, err := p.users.Load(ctx, ids)
	if err != nil {
		return nil, err
	}
	found := make([]string, 0, len(users))
	for id := range users {
		found = append(found, id)
	}
	following, err := p.follows.FolloweeIDs(ctx, found)
	if err != nil {
		return nil, err
	}
	followers, err := p.fans.FanIDs(ctx, found)
	if err != nil {
		return nil, err
	}
	liked, err := p.likes.LikedPostIDs(ctx, found)
	if err != nil {
		return nil, err
	}

	out := make(map[string]*model.UserView, len(users))
	for id, u := range users {
		v := model.NewUserView(u)
		if s := following[id]; s != nil {
			v.Following = s
		}
		if s := followers[id]; s != nil {
			v.Followers = s
		}
		if s := liked[id]; s != nil {
			v.LikedPosts = s
		}
		out[id] = v
	}
	return out, nil
}

func (p *populator) userView(ctx context.Context, id string) (*model.UserView, error) {
	views, err := p.userViews(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	v, ok := views[id]
	if !ok {
		return nil, notFoundError("User not found")
	}
	return v, nil
}

func (p *populator) postViews(ctx context.Context, posts []*model.Post) ([]*model.PostView, error) {
	out := make([]*model.PostView, 0, len(posts))
	if len(posts) == 0 {
		return out, nil
	}
	postIDs := make([]string, len(posts))
	userIDs := make([]string, 0, len(posts))
	for i, post := range posts {
		postIDs[i] = post.ID
		userIDs = append(userIDs, post.UserID)
	}

	likers, err := p.likes.LikerIDs(ctx, postIDs)
	if err != nil {
		return nil, err
	}
	comments, err := p.comments.ListByPosts(ctx, postIDs)
	if err != nil {
		return nil, err
	}
	for _, cs := range comments {
		for _, c := range cs {
			userIDs = append(userIDs, c.UserID)
		}
	}
	users, err := p.userViews(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	for _, post := range posts {
		v := &model.PostView{
			ID:        post.ID,
			User:      users[post.UserID],
			Text:      post.Text,
			Image:     post.Image,
			Likes:     []string{},
			Comments:  commentViews(comments[post.ID], users),
			CreatedAt: post.CreatedAt,
			UpdatedAt: post.UpdatedAt,
		}
		if l := likers[post.ID]; l != nil {
			v.Likes = l
		}
		out = append(out, v)
	}
	return out, nil
}

func commentViews(cs []*model.Comment, users map[string]*model.UserView) []model.CommentView {
	out := make([]model.CommentView, 0, len(cs))
	for _, c := range cs {
		out = append(out, model.CommentView{ID: c.ID, User: users[c.UserID], Text: c.Text, CreatedAt: c.CreatedAt})
	}
	return out
}
