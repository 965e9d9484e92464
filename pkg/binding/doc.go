// Package binding resolves raw route parameters into bound values before a
// handler runs.
//
// Three mechanisms are supported:
//
//   - Explicit bindings map one wildcard name to a binder.
//   - Implicit rules derive an entity name from the wildcard name
//     (namespace + separator + prefix + Capitalized(key) + suffix) and use it
//     when the InstanceFactory knows that name.
//   - Composite bindings resolve several wildcards in one call when the route's
//     wildcards match the registered keys exactly, in order.
//
// A composite match wins over everything else. Otherwise each wildcard is
// resolved independently, explicit before implicit, and wildcards without a
// binding keep their raw value.
//
// # Binders
//
// A Binder is one of:
//
//   - Func: a closure receiving the wildcard value.
//   - CompositeFunc: a closure receiving every wildcard value in key order.
//   - ByName: an entity identifier resolved with the default lookup, which calls
//     Where(RouteKeyName(), value).FirstOrFail(ctx) on a fresh Model instance.
//   - ByMethod: an "Identifier@Method" reference; the method is called on a fresh
//     instance with the wildcard value(s).
//
// Name parses string references into ByName or ByMethod.
//
// # Errors
//
// Only failures raised while calling a binder go through its ErrorHandler.
// The handler result replaces the value; an error returned by the handler
// propagates and aborts the whole resolution. Unknown identifiers, invalid
// binders and composite results of the wrong shape are never handled.
//
// # Usage
//
//	registry := binding.NewRegistry()
//	_ = binding.Provide(registry, `App\Models\User`, func() *db.Table {
//	    return db.NewTable(pool, "users", db.WithRouteKey("username"))
//	})
//
//	resolver := binding.NewResolver(registry, binding.WithLogger(log))
//	resolver.ImplicitBind(`App\Models`)
//	resolver.Bind("article", binding.Func(findArticle))
//
//	bound, err := resolver.ResolveBindings(ctx, binding.NewParams("user", "alice"))
package binding
