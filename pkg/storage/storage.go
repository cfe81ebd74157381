package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"
)

var (
	ErrConnectDB       = fmt.Errorf("unable to establish DB connection")
	ErrDBNotResponding = fmt.Errorf("DB not responding")

	ErrNewsNotFound          = fmt.Errorf("news not found")
	ErrCommentNotFound       = fmt.Errorf("comment not found")
	ErrParentCommentNotFound = fmt.Errorf("parent comment not found")
	ErrUserNotFound          = fmt.Errorf("user not found")
)

// News is a single article document. Comments holds the ids of every comment
// attached to the article, in insertion order.
type News struct {
	ID        uuid.UUID   `json:"id" bson:"_id"`
	Title     string      `json:"title" bson:"title"`
	Content   string      `json:"content" bson:"content"`
	Thumbnail string      `json:"thumbnail" bson:"thumbnail"`
	Category  string      `json:"category" bson:"category"`
	Author    uuid.UUID   `json:"author" bson:"author"`
	Views     int64       `json:"views" bson:"views"`
	Comments  []uuid.UUID `json:"comments" bson:"comments"`
	CreatedAt time.Time   `json:"createdAt" bson:"created_at"`
}

// Comment belongs to exactly one article. ReplyTo is uuid.Nil for top-level
// comments; otherwise it must reference an existing comment at creation time.
type Comment struct {
	ID        uuid.UUID `json:"id" bson:"_id"`
	Content   string    `json:"content" bson:"content"`
	Author    uuid.UUID `json:"author" bson:"author"`
	News      uuid.UUID `json:"news" bson:"news"`
	ReplyTo   uuid.UUID `json:"replyTo,omitempty" bson:"reply_to"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}

type User struct {
	ID       uuid.UUID `json:"id" bson:"_id"`
	Username string    `json:"username" bson:"username"`
	Avatar   string    `json:"avatar" bson:"avatar"`
	Email    string    `json:"email" bson:"email"`
	Password string    `json:"-" bson:"password"`
}

// UserSummary is the projection of a user embedded in populated responses.
type UserSummary struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Avatar   string    `json:"avatar"`
	Email    string    `json:"email,omitempty"`
}

func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username, Avatar: u.Avatar}
}

// NewsItem is a news document with its author resolved to a summary,
// as returned by list queries.
type NewsItem struct {
	ID        uuid.UUID   `json:"id"`
	Title     string      `json:"title"`
	Content   string      `json:"content"`
	Thumbnail string      `json:"thumbnail"`
	Category  string      `json:"category"`
	Author    UserSummary `json:"author"`
	Views     int64       `json:"views"`
	CreatedAt time.Time   `json:"createdAt"`
}

// CommentDetailed is a comment with its author resolved and, for top-level
// comments, one level of replies attached. Deeper nesting is not resolved.
type CommentDetailed struct {
	ID        uuid.UUID          `json:"id"`
	Content   string             `json:"content"`
	Author    UserSummary        `json:"author"`
	News      uuid.UUID          `json:"news"`
	ReplyTo   uuid.UUID          `json:"replyTo,omitempty"`
	CreatedAt time.Time          `json:"createdAt"`
	Replies   []*CommentDetailed `json:"replies,omitempty"`
}

// NewsDetailed is the detail-page projection: full author record (minus
// password) and the article's top-level comments sorted by creation time
// descending, each with its direct replies.
type NewsDetailed struct {
	ID        uuid.UUID          `json:"id"`
	Title     string             `json:"title"`
	Content   string             `json:"content"`
	Thumbnail string             `json:"thumbnail"`
	Category  string             `json:"category"`
	Author    UserSummary        `json:"author"`
	Views     int64              `json:"views"`
	CreatedAt time.Time          `json:"createdAt"`
	Comments  []*CommentDetailed `json:"comments"`
}

// NewsFilter narrows list queries. Zero-value fields are ignored;
// TitleContains matches case-insensitively as a substring.
type NewsFilter struct {
	Category      string
	Author        uuid.UUID
	TitleContains string
}

// NewsUpdate is the allow-listed set of mutable article fields.
// Nil fields are left untouched.
type NewsUpdate struct {
	Title     *string `json:"title"`
	Content   *string `json:"content"`
	Thumbnail *string `json:"thumbnail"`
	Category  *string `json:"category"`
}

func (u NewsUpdate) Empty() bool {
	return u.Title == nil && u.Content == nil && u.Thumbnail == nil && u.Category == nil
}

// UserUpdate is the allow-listed set of mutable profile fields.
// A non-nil Password is hashed by the storage layer before persisting.
type UserUpdate struct {
	Username *string `json:"username"`
	Avatar   *string `json:"avatar"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

func (u UserUpdate) Empty() bool {
	return u.Username == nil && u.Avatar == nil && u.Email == nil && u.Password == nil
}

type Storage interface {
	AddNews(ctx context.Context, n News) (News, error)
	NewsList(ctx context.Context, filter NewsFilter, page, limit int) ([]NewsItem, int, error)
	FeaturedNews(ctx context.Context, limit int) ([]News, error)
	News(ctx context.Context, id uuid.UUID) (News, error)
	NewsDetailed(ctx context.Context, id uuid.UUID) (NewsDetailed, error)
	UpdateNews(ctx context.Context, id uuid.UUID, upd NewsUpdate) (News, error)
	IncreaseViews(ctx context.Context, id uuid.UUID) (int64, error)
	DeleteNews(ctx context.Context, id uuid.UUID) error
	Categories(ctx context.Context) ([]string, error)

	AddComment(ctx context.Context, c Comment) (Comment, error)
	Comment(ctx context.Context, id uuid.UUID) (Comment, error)
	PopulatedComment(ctx context.Context, id uuid.UUID) (CommentDetailed, error)
	UpdateComment(ctx context.Context, id uuid.UUID, content string) (Comment, error)
	DeleteComment(ctx context.Context, id uuid.UUID) error

	AddUser(ctx context.Context, u User) (User, error)
	User(ctx context.Context, id uuid.UUID) (User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, upd UserUpdate) (User, error)
}

// ValidateNews checks the fields required to create an article.
func ValidateNews(n News) error {
	var missing []string
	if strings.TrimSpace(n.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(n.Content) == "" {
		missing = append(missing, "content")
	}
	if strings.TrimSpace(n.Thumbnail) == "" {
		missing = append(missing, "thumbnail")
	}
	if strings.TrimSpace(n.Category) == "" {
		missing = append(missing, "category")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}
