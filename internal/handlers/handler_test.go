// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler integration
// tests. Tests are skipped when PostgreSQL or Valkey are unavailable.
package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"inkwell/internal/cache"
	"inkwell/internal/database"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/store"
)

const testJWTSecret = "handler-test-secret"

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "inkwell")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "inkwell")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		// Clean up test cache keys.
		keys, _ := client.Keys(ctx, "list:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB            *sql.DB
	Valkey        *redis.Client
	UserStore     *store.UserStore
	CategoryStore *store.CategoryStore
	PostStore     *store.PostStore
	ListCache     *cache.ListCache
	Auth          *Auth
	Categories    *Categories
	Posts         *Posts
}

// newTestEnv creates a complete test environment with all handler dependencies.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	vk := testValkeyClient(t)

	userStore := store.NewUserStore(db)
	categoryStore := store.NewCategoryStore(db)
	postStore := store.NewPostStore(db)
	listCache := cache.NewListCache(vk, 1*time.Minute)

	return &testEnv{
		DB:            db,
		Valkey:        vk,
		UserStore:     userStore,
		CategoryStore: categoryStore,
		PostStore:     postStore,
		ListCache:     listCache,
		Auth:          NewAuth(userStore, testJWTSecret, true),
		Categories:    NewCategories(categoryStore, listCache, true),
		Posts:         NewPosts(postStore, categoryStore, listCache, true),
	}
}

// ctxWithIdentity adds an authenticated identity to a context using the
// middleware key, the way LoadUser does after verifying a token.
func ctxWithIdentity(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, middleware.IdentityKey, u)
}

// asUser attaches an identity to a request.
func asUser(r *http.Request, u *models.User) *http.Request {
	return r.WithContext(ctxWithIdentity(r.Context(), u))
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// testUser creates a user through the store and registers its cleanup.
func testUser(t *testing.T, env *testEnv, email string, role models.Role) *models.User {
	t.Helper()
	u, err := env.UserStore.Create("hdl-"+uuid.NewString()[:8], email, "handlerpass", role)
	if err != nil {
		t.Fatalf("test user: %v", err)
	}
	t.Cleanup(func() { env.DB.Exec("DELETE FROM users WHERE email = $1", email) })
	return u
}

// testCategory creates a category and registers its cleanup.
func testCategory(t *testing.T, env *testEnv, name, slug string) *models.Category {
	t.Helper()
	c, err := env.CategoryStore.Create(name, slug)
	if err != nil {
		t.Fatalf("test category: %v", err)
	}
	t.Cleanup(func() { env.DB.Exec("DELETE FROM categories WHERE slug = $1", slug) })
	return c
}

// testPost creates a post and registers its cleanup.
func testPost(t *testing.T, env *testEnv, author *models.User, category *models.Category, title, slug string) *models.Post {
	t.Helper()
	p, err := env.PostStore.Create(&models.Post{
		Title:       title,
		Content:     "Handler test content that is long enough.",
		Slug:        slug,
		AuthorID:    author.ID,
		CategoryID:  category.ID,
		Tags:        []string{},
		IsPublished: true,
	})
	if err != nil {
		t.Fatalf("test post: %v", err)
	}
	t.Cleanup(func() { env.DB.Exec("DELETE FROM posts WHERE slug = $1", slug) })
	return p
}
