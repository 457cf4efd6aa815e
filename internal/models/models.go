package models

import "time"

// Role is the closed set of user roles.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	}
	return false
}

func ParseRole(raw string) (Role, bool) {
	role := Role(raw)
	return role, role.Valid()
}

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

type PostStatus string

const (
	PostDraft     PostStatus = "draft"
	PostPublished PostStatus = "published"
)

func (s PostStatus) Valid() bool {
	return s == PostDraft || s == PostPublished
}

const (
	MessageUnread = "unread"
	MessageRead   = "read"
)

type User struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password" json:"-"`
	Role         Role      `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

type Category struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Slug        string    `db:"slug" json:"slug"`
	Description *string   `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type Tag struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
	Slug string `db:"slug" json:"slug"`
}

type Project struct {
	ID          int64     `db:"id"`
	Title       string    `db:"title"`
	Description *string   `db:"description"`
	CategoryID  *int64    `db:"category_id"`
	ImageURL    *string   `db:"image_url"`
	CreatedBy   *int64    `db:"created_by"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type BlogPost struct {
	ID              int64      `db:"id"`
	Title           string     `db:"title"`
	Slug            string     `db:"slug"`
	Excerpt         *string    `db:"excerpt"`
	Content         string     `db:"content"`
	ImageURL        *string    `db:"image_url"`
	MetaTitle       *string    `db:"meta_title"`
	MetaDescription *string    `db:"meta_description"`
	Keywords        []byte     `db:"keywords"`
	AuthorID        *int64     `db:"author_id"`
	CategoryID      *int64     `db:"category_id"`
	Status          PostStatus `db:"status"`
	Views           int64      `db:"views"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
}

// RelatedContent links a blog post to exactly one project or one other post.
type RelatedContent struct {
	ID             int64   `db:"id"`
	BlogID         int64   `db:"blog_id"`
	ProjectID      *int64  `db:"project_id"`
	RelatedBlogID  *int64  `db:"related_blog_id"`
	RelevanceScore float64 `db:"relevance_score"`
}

type UserSettings struct {
	UserID             int64     `db:"user_id" json:"user_id"`
	Theme              Theme     `db:"theme" json:"theme"`
	Language           string    `db:"language" json:"language"`
	EmailNotifications bool      `db:"email_notifications" json:"email_notifications"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

type ContactMessage struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Message   string    `db:"message" json:"message"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
