package providers

import (
	"net/http"

	"github.com/gorilla/mux"

	"homeboard/internal/structures"
)

type RouterProviderInterface interface {
	Get(url string, handler http.Handler)
	Post(url string, handler http.Handler)
	GetRoutes() []structures.Route
	Build(middlewares ...mux.MiddlewareFunc) *mux.Router
}

type RouterProvider struct {
	routes []structures.Route
}

func (rp *RouterProvider) Get(url string, handler http.Handler) {
	rp.routes = append(rp.routes, structures.Route{
		Method:  http.MethodGet,
		Url:     url,
		Handler: handler,
	})
}

func (rp *RouterProvider) Post(url string, handler http.Handler) {
	rp.routes = append(rp.routes, structures.Route{
		Method:  http.MethodPost,
		Url:     url,
		Handler: handler,
	})
}

func (rp *RouterProvider) GetRoutes() []structures.Route {
	return rp.routes
}

// Build registers the routes in declaration order; literal paths must be
// declared before templated siblings (".../popups/clear" before ".../popups/{id}").
func (rp *RouterProvider) Build(middlewares ...mux.MiddlewareFunc) *mux.Router {
	r := mux.NewRouter()
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)
	for _, route := range rp.routes {
		r.Handle(route.Url, route.Handler).Methods(route.Method)
	}
	r.Use(middlewares...)
	return r
}

func NewRouterProvider() RouterProviderInterface {
	return &RouterProvider{}
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
}

// RouteTemplate returns the matched mux path template, falling back to the raw path.
func RouteTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return r.URL.Path
}
