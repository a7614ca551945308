// Package domain defines the core entities and error kinds of the
// social feed service: users, posts and their images, comments, chat
// rooms, chat messages, and follow relations.
package domain

import (
	"time"
)

// Base holds the columns shared by every entity table: a bigserial
// primary key and created/updated timestamps. The primary key doubles
// as the keyset cursor for pagination, so it must be monotonic with
// insertion order.
type Base struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PK returns the primary key. It satisfies pagination.Keyed so entities
// can flow through the generic pagination engine.
func (b *Base) PK() int64 {
	return b.ID
}

// UserRole enumerates the roles a user can hold.
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// User is a registered account.
type User struct {
	Base
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
	// Password is the bcrypt hash; it is never serialized.
	Password string   `json:"-"`
	Role     UserRole `json:"role"`

	// FollowerCount and FollowingCount are denormalized counters
	// maintained by atomic increments in the follow repository.
	FollowerCount  int `json:"follower_count"`
	FollowingCount int `json:"following_count"`

	// RefreshToken is the currently issued refresh token, if any.
	RefreshToken string `json:"-"`
}

// Post is a feed entry authored by a user.
type Post struct {
	Base
	AuthorID int64  `json:"author_id"`
	Title    string `json:"title"`
	Content  string `json:"content"`

	LikeCount    int `json:"like_count"`
	CommentCount int `json:"comment_count"`

	// Author is populated by queries that join the users table.
	Author *UserSummary `json:"author,omitempty"`
	// Images are the ordered image rows attached to the post.
	Images []PostImage `json:"images,omitempty"`
}

// ImageKind distinguishes what an image row is attached to.
type ImageKind string

const (
	ImageKindPost ImageKind = "post"
)

// PostImage is one image attached to a post, ordered within the post.
type PostImage struct {
	Base
	PostID int64     `json:"post_id"`
	Order  int       `json:"order"`
	Kind   ImageKind `json:"kind"`
	Path   string    `json:"path"`
}

// Comment is a user comment on a post.
type Comment struct {
	Base
	PostID   int64  `json:"post_id"`
	AuthorID int64  `json:"author_id"`
	Content  string `json:"content"`

	Author *UserSummary `json:"author,omitempty"`
}

// ChatRoom groups a set of users exchanging messages.
type ChatRoom struct {
	Base
	// Users are the room members, populated by queries that join the
	// membership table.
	Users []UserSummary `json:"users,omitempty"`
}

// ChatMessage is one message sent into a chat room.
type ChatMessage struct {
	Base
	RoomID   int64  `json:"room_id"`
	AuthorID int64  `json:"author_id"`
	Message  string `json:"message"`

	Author *UserSummary `json:"author,omitempty"`
}

// FollowRelation links a follower to a followee. A relation starts
// unconfirmed; confirmation flips the flag and bumps both users'
// counters in the same transaction.
type FollowRelation struct {
	Base
	FollowerID int64 `json:"follower_id"`
	FolloweeID int64 `json:"followee_id"`
	Confirmed  bool  `json:"confirmed"`

	// Follower and Followee are populated by listing queries that join
	// the users table from the respective side.
	Follower *UserSummary `json:"follower,omitempty"`
	Followee *UserSummary `json:"followee,omitempty"`
}

// UserSummary is the projection of a user embedded in other entities.
type UserSummary struct {
	ID       int64  `json:"id"`
	Nickname string `json:"nickname"`
}
