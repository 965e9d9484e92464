package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrymomot/routebind/pkg/binding"
	"github.com/dmitrymomot/routebind/pkg/cache"
	"github.com/dmitrymomot/routebind/pkg/db"
)

const (
	userModel      = `App\Models\User`
	postModel      = `App\Models\Post`
	commentModel   = `App\Models\Comment`
	postRepository = `App\Repositories\PostRepository`
)

// tableSpecs maps entity identifiers to tables. rows may be nil.
func tableSpecs(rows cache.Cache[db.Row], ttl time.Duration) map[string]db.TableSpec {
	var cached []db.TableOption
	if rows != nil {
		cached = append(cached, db.WithCache(rows, ttl))
	}

	return map[string]db.TableSpec{
		userModel: {Name: "users", Options: append([]db.TableOption{
			db.WithRouteKey("username"),
			db.WithColumns("id", "username", "name", "created_at"),
		}, cached...)},
		postModel: {Name: "posts", Options: append([]db.TableOption{
			db.WithRouteKey("slug"),
			db.WithColumns("id", "user_id", "slug", "title", "body", "created_at"),
			db.WithSoftDelete("deleted_at"),
		}, cached...)},
		commentModel: {Name: "comments", Options: cached},
	}
}

// PostRepository resolves a comment together with the post it belongs to.
type PostRepository struct {
	db    db.Querier
	posts *db.Table
}

func newPostRepository(q db.Querier, posts *db.Table) *PostRepository {
	return &PostRepository{db: q, posts: posts}
}

// FindWithComment returns the post and one of its comments.
// A comment of another post is reported as not found.
func (r *PostRepository) FindWithComment(ctx context.Context, slug, comment string) ([]any, error) {
	post, err := r.posts.Where(r.posts.RouteKeyName(), slug).FirstOrFail(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := strconv.ParseInt(comment, 10, 64); err != nil {
		return nil, binding.NotFound("comments", "id", comment)
	}

	row, _ := post.(db.Row)
	comments := db.NewTable(r.db, "comments", db.WithScope("post_id", fmt.Sprint(row["id"])))
	c, err := comments.Where("id", comment).FirstOrFail(ctx)
	if err != nil {
		return nil, err
	}
	return []any{post, c}, nil
}

// registerModels fills registry with every entity the bindings may reference.
func registerModels(registry *binding.Registry, q db.Querier, rows cache.Cache[db.Row], ttl time.Duration) error {
	specs := tableSpecs(rows, ttl)
	if err := db.RegisterTables(registry, q, specs); err != nil {
		return err
	}

	posts := specs[postModel]
	table := db.NewTable(q, posts.Name, posts.Options...)
	return binding.Provide(registry, postRepository, func() *PostRepository {
		return newPostRepository(q, table)
	})
}

// errorHandlers are the handlers binding files may refer to by name.
func errorHandlers() map[string]binding.ErrorHandler {
	return map[string]binding.ErrorHandler{
		"not_found_as_nil": func(_ context.Context, err error) (any, error) {
			if errors.Is(err, binding.ErrEntityNotFound) {
				return nil, nil
			}
			return nil, err
		},
	}
}
