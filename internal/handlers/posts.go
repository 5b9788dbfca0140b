// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"inkwell/internal/cache"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/slug"
	"inkwell/internal/store"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

// Posts groups the post CRUD, listing, and comment handlers.
type Posts struct {
	postStore     *store.PostStore
	categoryStore *store.CategoryStore
	listCache     *cache.ListCache
	devMode       bool
}

// NewPosts creates a new Posts handler group.
func NewPosts(postStore *store.PostStore, categoryStore *store.CategoryStore, listCache *cache.ListCache, devMode bool) *Posts {
	return &Posts{
		postStore:     postStore,
		categoryStore: categoryStore,
		listCache:     listCache,
		devMode:       devMode,
	}
}

type postCreateRequest struct {
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	Excerpt       *string  `json:"excerpt"`
	FeaturedImage *string  `json:"featured_image"`
	Slug          string   `json:"slug"`
	CategoryID    string   `json:"category_id"`
	Tags          []string `json:"tags"`
	IsPublished   bool     `json:"is_published"`
}

// postUpdateRequest uses pointers throughout: nil means "leave untouched",
// anything else overwrites the post's field. There is no per-field
// whitelisting beyond this — whatever the caller sends wins.
type postUpdateRequest struct {
	Title         *string   `json:"title"`
	Content       *string   `json:"content"`
	Excerpt       *string   `json:"excerpt"`
	FeaturedImage *string   `json:"featured_image"`
	Slug          *string   `json:"slug"`
	CategoryID    *string   `json:"category_id"`
	Tags          *[]string `json:"tags"`
	IsPublished   *bool     `json:"is_published"`
}

type commentRequest struct {
	Content string `json:"content"`
}

// listMeta is the pagination envelope returned alongside listing data.
type listMeta struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

type listResponse struct {
	Data []models.Post `json:"data"`
	Meta listMeta      `json:"meta"`
}

// List returns a page of posts, optionally filtered by category and a
// case-insensitive title/content search.
func (p *Posts) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page := intParam(q.Get("page"), defaultPage)
	// No upper bound on limit.
	limit := intParam(q.Get("limit"), defaultLimit)

	filter := store.ListFilter{Query: q.Get("q")}
	if raw := q.Get("category"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondValidation(w, []FieldError{{"category", "category must be a valid id"}})
			return
		}
		filter.CategoryID = &id
	}

	key := fmt.Sprintf("posts?page=%d&limit=%d&category=%s&q=%s",
		page, limit, q.Get("category"), q.Get("q"))
	if body, ok := p.listCache.Get(r.Context(), key); ok {
		respondRaw(w, http.StatusOK, body)
		return
	}

	items, total, err := p.postStore.List(filter, page, limit)
	if err != nil {
		slog.Error("list posts failed", "error", err)
		respondInternal(w, p.devMode, err)
		return
	}

	resp := listResponse{
		Data: items,
		Meta: listMeta{Total: total, Page: page, Limit: limit},
	}
	body := marshalOrInternal(w, p.devMode, resp)
	if body == nil {
		return
	}
	p.listCache.Set(r.Context(), key, body)
	respondRaw(w, http.StatusOK, body)
}

// Get returns a single post looked up by ID or slug, bumping its view count.
//
// The view-count write happens in a detached goroutine after the response.
// Its failure is logged and swallowed. Concurrent fetches may lose
// increments; view counts are approximate.
func (p *Posts) Get(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "idOrSlug")

	post, err := p.postStore.FindByIDOrSlug(ref)
	if err != nil {
		slog.Error("get post failed", "error", err)
		respondInternal(w, p.devMode, err)
		return
	}
	if post == nil {
		respondMessage(w, http.StatusNotFound, "Post not found")
		return
	}

	post.ViewCount++
	respondJSON(w, http.StatusOK, post)

	go func(id uuid.UUID, count int) {
		if err := p.postStore.SetViewCount(id, count); err != nil {
			slog.Warn("view count update failed", "post_id", id, "error", err)
		}
	}(post.ID, post.ViewCount)
}

// Create adds a new post authored by the caller.
func (p *Posts) Create(w http.ResponseWriter, r *http.Request) {
	ident := middleware.IdentityFromCtx(r.Context())
	if ident == nil {
		respondMessage(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req postCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var errs []FieldError
	if fe := validateTitle(req.Title); fe != nil {
		errs = append(errs, *fe)
	}
	if fe := validateContent(req.Content); fe != nil {
		errs = append(errs, *fe)
	}
	if req.Excerpt != nil {
		if fe := validateExcerpt(*req.Excerpt); fe != nil {
			errs = append(errs, *fe)
		}
	}
	if req.CategoryID == "" {
		errs = append(errs, FieldError{"category_id", "category required"})
	}
	if errs != nil {
		respondValidation(w, errs)
		return
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid category")
		return
	}
	category, err := p.categoryStore.FindByID(categoryID)
	if err != nil {
		slog.Error("category lookup failed", "error", err)
		respondInternal(w, p.devMode, err)
		return
	}
	if category == nil {
		respondMessage(w, http.StatusBadRequest, "Invalid category")
		return
	}

	// Derive the slug from the title unless the caller supplied one.
	// Either way it goes through the generator so stored slugs are
	// always normalized.
	source := req.Title
	if req.Slug != "" {
		source = req.Slug
	}
	s := slug.Generate(source)
	if s == "" {
		respondValidation(w, []FieldError{{"slug", "title or slug must contain letters or digits"}})
		return
	}

	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}

	post := &models.Post{
		Title:         strings.TrimSpace(req.Title),
		Content:       req.Content,
		Excerpt:       req.Excerpt,
		FeaturedImage: req.FeaturedImage,
		Slug:          s,
		AuthorID:      ident.ID, // always the authenticated caller
		CategoryID:    categoryID,
		Tags:          tags,
		IsPublished:   req.IsPublished,
	}

	created, err := p.postStore.Create(post)
	if err != nil {
		if store.IsUniqueViolation(err) {
			respondMessage(w, http.StatusBadRequest, "A post with this slug already exists")
			return
		}
		slog.Error("create post failed", "error", err)
		respondInternal(w, p.devMode, err)
		return
	}

	p.listCache.InvalidateAll(r.Context())
	respondJSON(w, http.StatusCreated, created)
}

// Update merges the supplied fields into an existing post. Only the post's
// author or an admin may update it. Last write wins under concurrency.
func (p *Posts) Update(w http.ResponseWriter, r *http.Request) {
	ident := middleware.IdentityFromCtx(r.Context())
	if ident == nil {
		respondMessage(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	post, ok := p.loadPostByID(w, r)
	if !ok {
		return
	}

	if !models.CanModify(ident, post) {
		respondMessage(w, http.StatusForbidden, "Not authorized to update this post")
		return
	}

	var req postUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var errs []FieldError
	if req.Title != nil {
		if fe := validateTitle(*req.Title); fe != nil {
			errs = append(errs, *fe)
		}
	}
	if req.Content != nil {
		if fe := validateContent(*req.Content); fe != nil {
			errs = append(errs, *fe)
		}
	}
	if req.Excerpt != nil {
		if fe := validateExcerpt(*req.Excerpt); fe != nil {
			errs = append(errs, *fe)
		}
	}
	if errs != nil {
		respondValidation(w, errs)
		return
	}

	if req.CategoryID != nil {
		categoryID, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			respondMessage(w, http.StatusBadRequest, "Invalid category")
			return
		}
		category, err := p.categoryStore.FindByID(categoryID)
		if err != nil {
			slog.Error("category lookup failed", "error", err)
			respondInternal(w, p.devMode, err)
			return
		}
		if category == nil {
			respondMessage(w, http.StatusBadRequest, "Invalid category")
			return
		}
		post.CategoryID = categoryID
	}

	if req.Slug != nil {
		s := slug.Generate(*req.Slug)
		if s == "" {
			respondValidation(w, []FieldError{{"slug", "slug must contain letters or digits"}})
			return
		}
		post.Slug = s
	}

	// Blind shallow merge: present fields overwrite, absent fields stay.
	if req.Title != nil {
		post.Title = strings.TrimSpace(*req.Title)
	}
	if req.Content != nil {
		post.Content = *req.Content
	}
	if req.Excerpt != nil {
		post.Excerpt = req.Excerpt
	}
	if req.FeaturedImage != nil {
		post.FeaturedImage = req.FeaturedImage
	}
	if req.Tags != nil {
		post.Tags = *req.Tags
	}
	if req.IsPublished != nil {
		post.IsPublished = *req.IsPublished
	}

	if err := p.postStore.Update(post); err != nil {
		if store.IsUniqueViolation(err) {
			respondMessage(w, http.StatusBadRequest, "A post with this slug already exists")
			return
		}
		slog.Error("update post failed", "error", err)
		respondInternal(w, p.devMode, err)
		return
	}

	// Re-read so the response carries fresh timestamps and projections.
	updated, err := p.postStore.FindByID(post.ID)
	if err != nil || updated == nil {
		slog.Error("reload updated post failed", "error", err)
		respondInternal(w, p.devMode, err)
		return
	}

	p.listCache.InvalidateAll(r.Context())
	respondJSON(w, http.StatusOK, updated)
}

// Delete removes a post and its comments. Same authorization rule as Update.
func (p *Posts) Delete(w http.ResponseWriter, r *http.Request) {
	ident := middleware.IdentityFromCtx(r.Context())
	if ident == nil {
		respondMessage(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	post, ok := p.loadPostByID(w, r)
	if !ok {
		return
	}

	if !models.CanModify(ident, post) {
		respondMessage(w, http.StatusForbidden, "Not authorized to delete this post")
		return
	}

	if err := p.postStore.Delete(post.ID); err != nil {
		slog.Error("delete post failed", "error", err)
		respondInternal(w, p.devMode, err)
		return
	}

	p.listCache.InvalidateAll(r.Context())
	respondMessage(w, http.StatusOK, "Post deleted")
}

// AddComment appends a comment by the caller to a post. Any authenticated
// user may comment on any post.
func (p *Posts) AddComment(w http.ResponseWriter, r *http.Request) {
	ident := middleware.IdentityFromCtx(r.Context())
	if ident == nil {
		respondMessage(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		respondValidation(w, []FieldError{{"content", "comment content required"}})
		return
	}

	post, ok := p.loadPostByID(w, r)
	if !ok {
		return
	}

	if _, err := p.postStore.AddComment(post.ID, ident.ID, content); err != nil {
		slog.Error("add comment failed", "error", err)
		respondInternal(w, p.devMode, err)
		return
	}

	// Return the full post with the new comment appended.
	updated, err := p.postStore.FindByID(post.ID)
	if err != nil || updated == nil {
		slog.Error("reload commented post failed", "error", err)
		respondInternal(w, p.devMode, err)
		return
	}

	respondJSON(w, http.StatusCreated, updated)
}

// loadPostByID resolves the {id} URL parameter to a post, writing a 404
// when the ID is malformed or matches nothing.
func (p *Posts) loadPostByID(w http.ResponseWriter, r *http.Request) (*models.Post, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondMessage(w, http.StatusNotFound, "Post not found")
		return nil, false
	}

	post, err := p.postStore.FindByID(id)
	if err != nil {
		slog.Error("load post failed", "error", err)
		respondInternal(w, p.devMode, err)
		return nil, false
	}
	if post == nil {
		respondMessage(w, http.StatusNotFound, "Post not found")
		return nil, false
	}
	return post, true
}

// intParam parses a positive integer query parameter, falling back to a
// default for absent, malformed, or non-positive values.
func intParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
