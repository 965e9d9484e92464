// Package routebind resolves route parameters into application values before
// handlers run.
//
// A route such as "/posts/{post}/comments/{comment}" hands its handler the raw
// strings "hello-world" and "42". routebind replaces them with the entities
// they identify, following three kinds of bindings registered on a
// [binding.Resolver]:
//
//   - explicit: one wildcard name bound to a function, an entity identifier
//     ("App\Models\User") or an entity method ("App\Repositories\Posts@FindBySlug");
//   - implicit: every wildcard whose capitalized name is an entity in a namespace
//     ("user" becomes "App\Models\User"), looked up by the entity's route key;
//   - composite: several wildcards resolved together by one callable.
//
// Each binding may carry an error handler that turns a failed lookup into a
// fallback value or a different error.
//
// # Quick Start
//
//	registry := binding.NewRegistry()
//	_ = db.RegisterTables(registry, pool, map[string]db.TableSpec{
//	    `App\Models\Post`: {Name: "posts", Options: []db.TableOption{db.WithRouteKey("slug")}},
//	})
//
//	resolver := binding.NewResolver(registry)
//	resolver.ImplicitBind(`App\Models`)
//
//	app := routebind.New(
//	    routebind.WithResolver(resolver),
//	    routebind.WithHandlers(&PostHandler{}),
//	)
//
//	if err := app.Run(":8080"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Handlers
//
//	func (h *PostHandler) Routes(r routebind.Router) {
//	    r.GET("/posts/{post}", h.show)
//	}
//
//	func (h *PostHandler) show(c routebind.Context) error {
//	    post, _ := routebind.Bound[db.Row](c, "post")
//	    return c.JSON(http.StatusOK, post)
//	}
//
// A lookup that matches nothing fails with binding.ErrEntityNotFound, which
// the default error handler answers with 404.
//
// # Packages
//
//   - [github.com/dmitrymomot/routebind/pkg/binding]: the resolver, registry and YAML configuration
//   - [github.com/dmitrymomot/routebind/pkg/db]: PostgreSQL tables usable as entities
//   - [github.com/dmitrymomot/routebind/pkg/cache]: memory and Redis caches for lookups
//   - [github.com/dmitrymomot/routebind/middlewares]: request ID, recover and timeout
//
// cmd/routebind is a runnable blog API wiring all of the above.
package routebind
