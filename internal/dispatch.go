package internal

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/routebind/pkg/binding"
)

// routeParams returns the URL parameters chi matched for r in route order.
// Values are path-unescaped; the catch-all "*" parameter is skipped.
func routeParams(r *http.Request) binding.Params {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return nil
	}

	keys, values := rctx.URLParams.Keys, rctx.URLParams.Values
	params := make(binding.Params, 0, len(keys))
	for i, key := range keys {
		if key == "" || key == "*" || i >= len(values) {
			continue
		}
		v, err := url.PathUnescape(values[i])
		if err != nil {
			v = values[i]
		}
		params.Set(key, v)
	}
	return params
}

// bind resolves the route parameters of c through the app's resolver.
// Routes without parameters and apps without a resolver keep the raw values.
func (a *App) bind(c *requestContext) error {
	params := routeParams(c.request)
	if a.resolver == nil || len(params) == 0 {
		c.params = params
		return nil
	}

	resolved, err := a.resolver.ResolveBindings(c.Context(), params)
	if err != nil {
		return err
	}
	c.params = resolved
	return nil
}
