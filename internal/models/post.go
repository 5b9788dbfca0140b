// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Post is a blog entry. Comments live inside their post and have no
// independent lifecycle: deleting the post removes them.
type Post struct {
	ID            uuid.UUID  `json:"id"`
	Title         string     `json:"title"`
	Content       string     `json:"content"`
	Excerpt       *string    `json:"excerpt,omitempty"`
	FeaturedImage *string    `json:"featured_image,omitempty"`
	Slug          string     `json:"slug"`
	AuthorID      uuid.UUID  `json:"author_id"`
	Author        *PostAuthor `json:"author,omitempty"`
	CategoryID    uuid.UUID  `json:"category_id"`
	Category      *Category  `json:"category,omitempty"`
	Tags          []string   `json:"tags"`
	IsPublished   bool       `json:"is_published"`
	ViewCount     int        `json:"view_count"`
	Comments      []Comment  `json:"comments"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// PostAuthor is the embedded author projection returned with a post.
type PostAuthor struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// Comment is an owned substructure of a post: a user reference, the text,
// and when it was written. It is never addressable on its own.
type Comment struct {
	UserID    uuid.UUID `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// CanModify reports whether the acting user may update or delete the post.
// Only the post's author and admins may mutate it.
func CanModify(u *User, p *Post) bool {
	if u == nil || p == nil {
		return false
	}
	return u.ID == p.AuthorID || u.Role == RoleAdmin
}
