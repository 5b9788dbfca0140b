// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"inkwell/internal/models"
)

// PostStore handles all post-related database operations, including the
// comments owned by each post.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

// ListFilter narrows a post listing. Zero values mean "no restriction".
type ListFilter struct {
	CategoryID *uuid.UUID
	Query      string // case-insensitive substring match on title or content
}

// postColumns are the base columns of the posts table.
const postColumns = `id, title, content, excerpt, featured_image, slug,
       author_id, category_id, tags, is_published, view_count,
       created_at, updated_at`

// joinedPostSelect selects a post with its author and category projections.
const joinedPostSelect = `
	SELECT p.id, p.title, p.content, p.excerpt, p.featured_image, p.slug,
	       p.author_id, p.category_id, p.tags, p.is_published, p.view_count,
	       p.created_at, p.updated_at,
	       u.username,
	       c.name, c.slug, c.created_at, c.updated_at
	FROM posts p
	JOIN users u ON u.id = p.author_id
	JOIN categories c ON c.id = p.category_id`

// scanJoinedPost scans a row from joinedPostSelect into a Post with its
// author and category attached.
func scanJoinedPost(scanner interface{ Scan(...any) error }) (*models.Post, error) {
	var (
		p        models.Post
		rawTags  []byte
		username string
		cat      models.Category
	)
	err := scanner.Scan(
		&p.ID, &p.Title, &p.Content, &p.Excerpt, &p.FeaturedImage, &p.Slug,
		&p.AuthorID, &p.CategoryID, &rawTags, &p.IsPublished, &p.ViewCount,
		&p.CreatedAt, &p.UpdatedAt,
		&username,
		&cat.Name, &cat.Slug, &cat.CreatedAt, &cat.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(rawTags, &p.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}

	p.Author = &models.PostAuthor{ID: p.AuthorID, Username: username}
	cat.ID = p.CategoryID
	p.Category = &cat
	return &p, nil
}

// buildFilter assembles the WHERE clause and arguments for a ListFilter.
func buildFilter(f ListFilter) (string, []any) {
	var conds []string
	var args []any

	if f.CategoryID != nil {
		args = append(args, *f.CategoryID)
		conds = append(conds, fmt.Sprintf("p.category_id = $%d", len(args)))
	}
	if f.Query != "" {
		args = append(args, "%"+f.Query+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(p.title ILIKE $%d OR p.content ILIKE $%d)", n, n))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// List returns one page of posts matching the filter, newest first, along
// with the total number of matches irrespective of pagination.
func (s *PostStore) List(f ListFilter, page, limit int) ([]models.Post, int, error) {
	where, args := buildFilter(f)

	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM posts p`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}

	offset := (page - 1) * limit
	listArgs := append(args, limit, offset)
	rows, err := s.db.Query(
		joinedPostSelect+where+
			fmt.Sprintf(" ORDER BY p.created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2),
		listArgs...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	items := []models.Post{}
	for rows.Next() {
		p, err := scanJoinedPost(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan post: %w", err)
		}
		items = append(items, *p)
	}
	return items, total, rows.Err()
}

// FindByID retrieves a post by its UUID with author, category, and comments.
// Returns nil if not found.
func (s *PostStore) FindByID(id uuid.UUID) (*models.Post, error) {
	row := s.db.QueryRow(joinedPostSelect+` WHERE p.id = $1`, id)
	p, err := scanJoinedPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by id: %w", err)
	}
	if p.Comments, err = s.ListComments(p.ID); err != nil {
		return nil, err
	}
	return p, nil
}

// FindByIDOrSlug looks a post up by UUID when the reference parses as one,
// falling back to slug lookup otherwise (and when the UUID matches nothing).
// Returns nil if neither matches.
func (s *PostStore) FindByIDOrSlug(ref string) (*models.Post, error) {
	if id, err := uuid.Parse(ref); err == nil {
		p, err := s.FindByID(id)
		if err != nil || p != nil {
			return p, err
		}
	}

	row := s.db.QueryRow(joinedPostSelect+` WHERE p.slug = $1`, ref)
	p, err := scanJoinedPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by slug: %w", err)
	}
	if p.Comments, err = s.ListComments(p.ID); err != nil {
		return nil, err
	}
	return p, nil
}

// Create inserts a new post and returns it with generated fields populated.
// A duplicate slug surfaces as a unique violation.
func (s *PostStore) Create(p *models.Post) (*models.Post, error) {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	rawTags, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}

	result := &models.Post{Comments: []models.Comment{}}
	var rawOut []byte
	err = s.db.QueryRow(`
		INSERT INTO posts (title, content, excerpt, featured_image, slug,
		                   author_id, category_id, tags, is_published)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+postColumns,
		p.Title, p.Content, p.Excerpt, p.FeaturedImage, p.Slug,
		p.AuthorID, p.CategoryID, rawTags, p.IsPublished,
	).Scan(
		&result.ID, &result.Title, &result.Content, &result.Excerpt,
		&result.FeaturedImage, &result.Slug, &result.AuthorID, &result.CategoryID,
		&rawOut, &result.IsPublished, &result.ViewCount,
		&result.CreatedAt, &result.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	if err := json.Unmarshal(rawOut, &result.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	if result.Tags == nil {
		result.Tags = []string{}
	}
	return result, nil
}

// Update overwrites the mutable columns of a post with the struct's values.
// Callers merge incoming fields into a freshly loaded post first; whatever
// the struct holds wins (last write wins, no concurrency check).
func (s *PostStore) Update(p *models.Post) error {
	rawTags, err := json.Marshal(p.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}

	_, err = s.db.Exec(`
		UPDATE posts SET
			title = $1, content = $2, excerpt = $3, featured_image = $4,
			slug = $5, category_id = $6, tags = $7, is_published = $8,
			updated_at = NOW()
		WHERE id = $9
	`, p.Title, p.Content, p.Excerpt, p.FeaturedImage,
		p.Slug, p.CategoryID, rawTags, p.IsPublished, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	return nil
}

// Delete removes a post by ID. Its comments go with it (ON DELETE CASCADE).
func (s *PostStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

// SetViewCount persists an absolute view count for a post.
//
// The read-increment-write cycle around this call is deliberately not atomic:
// concurrent fetches of the same post may lose increments. View counts are
// approximate and this matches the documented consistency model.
func (s *PostStore) SetViewCount(id uuid.UUID, count int) error {
	_, err := s.db.Exec(`UPDATE posts SET view_count = $1 WHERE id = $2`, count, id)
	if err != nil {
		return fmt.Errorf("set view count: %w", err)
	}
	return nil
}

// AddComment appends a comment to a post and returns it.
func (s *PostStore) AddComment(postID, userID uuid.UUID, content string) (*models.Comment, error) {
	c := &models.Comment{}
	err := s.db.QueryRow(`
		INSERT INTO comments (post_id, user_id, content)
		VALUES ($1, $2, $3)
		RETURNING user_id, content, created_at
	`, postID, userID, content).Scan(&c.UserID, &c.Content, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("add comment: %w", err)
	}
	return c, nil
}

// ListComments returns a post's comments in arrival order.
func (s *PostStore) ListComments(postID uuid.UUID) ([]models.Comment, error) {
	rows, err := s.db.Query(`
		SELECT user_id, content, created_at
		FROM comments WHERE post_id = $1 ORDER BY seq ASC
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.UserID, &c.Content, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
