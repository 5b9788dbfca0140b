// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/slug"
	"inkwell/internal/store"
)

// categoriesCacheKey is the list-cache key for the category listing.
const categoriesCacheKey = "categories"

// Categories groups the category handlers. Creation is admin-only,
// enforced by the router's middleware chain.
type Categories struct {
	categoryStore *store.CategoryStore
	listCache     *cache.ListCache
	devMode       bool
}

// NewCategories creates a new Categories handler group.
func NewCategories(categoryStore *store.CategoryStore, listCache *cache.ListCache, devMode bool) *Categories {
	return &Categories{
		categoryStore: categoryStore,
		listCache:     listCache,
		devMode:       devMode,
	}
}

type categoryCreateRequest struct {
	Name string `json:"name"`
}

// List returns all categories sorted by name.
func (c *Categories) List(w http.ResponseWriter, r *http.Request) {
	if body, ok := c.listCache.Get(r.Context(), categoriesCacheKey); ok {
		respondRaw(w, http.StatusOK, body)
		return
	}

	items, err := c.categoryStore.List()
	if err != nil {
		slog.Error("list categories failed", "error", err)
		respondInternal(w, c.devMode, err)
		return
	}
	if items == nil {
		items = []models.Category{}
	}

	body := marshalOrInternal(w, c.devMode, items)
	if body == nil {
		return
	}
	c.listCache.Set(r.Context(), categoriesCacheKey, body)
	respondRaw(w, http.StatusOK, body)
}

// Create adds a new category with a slug derived from its name.
func (c *Categories) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if errs := validateCategoryName(req.Name); errs != nil {
		respondValidation(w, errs)
		return
	}

	s := slug.Generate(req.Name)
	if s == "" {
		respondValidation(w, []FieldError{{"name", "name must contain letters or digits"}})
		return
	}

	existing, err := c.categoryStore.FindBySlug(s)
	if err != nil {
		slog.Error("category slug lookup failed", "error", err)
		respondInternal(w, c.devMode, err)
		return
	}
	if existing != nil {
		respondMessage(w, http.StatusBadRequest, "Category already exists")
		return
	}

	category, err := c.categoryStore.Create(req.Name, s)
	if err != nil {
		if store.IsUniqueViolation(err) {
			respondMessage(w, http.StatusBadRequest, "Category already exists")
			return
		}
		slog.Error("create category failed", "error", err)
		respondInternal(w, c.devMode, err)
		return
	}

	c.listCache.InvalidateAll(r.Context())
	respondJSON(w, http.StatusCreated, category)
}
