package model

import "time"

// UserView 对外展示的用户（不含密码）
type UserView struct {
	ID         string    `json:"_id"`
	Username   string    `json:"userName"`
	FullName   string    `json:"fullName"`
	Email      string    `json:"email"`
	Followers  []string  `json:"followers"`
	Following  []string  `json:"following"`
	LikedPosts []string  `json:"likedPosts"`
	ProfileImg string    `json:"profileImg"`
	CoverImg   string    `json:"coverImg"`
	Bio        string    `json:"bio"`
	Link       string    `json:"link"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// NewUserView copies the public fields of u; edge sets start empty, never nil.
func NewUserView(u *User) *UserView {
	return &UserView{
		ID:         u.ID,
		Username:   u.Username,
		FullName:   u.FullName,
		Email:      u.Email,
		Followers:  []string{},
		Following:  []string{},
		LikedPosts: []string{},
		ProfileImg: u.ProfileImg,
		CoverImg:   u.CoverImg,
		Bio:        u.Bio,
		Link:       u.Link,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

type CommentView struct {
	ID        uint64    `json:"_id"`
	User      *UserView `json:"user"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

type PostView struct {
	ID        string        `json:"_id"`
	User      *UserView     `json:"user"`
	Text      string        `json:"text,omitempty"`
	Image     string        `json:"image,omitempty"`
	Likes     []string      `json:"likes"`
	Comments  []CommentView `json:"comments"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// UserSummary 通知里的发起者
type UserSummary struct {
	ID         string `json:"_id"`
	Username   string `json:"userName"`
	ProfileImg string `json:"profileImg"`
}

type NotificationView struct {
	ID        string           `json:"_id"`
	From      *UserSummary     `json:"from"`
	To        string           `json:"to"`
	Type      NotificationType `json:"type"`
	CreatedAt time.Time        `json:"createdAt"`
}
