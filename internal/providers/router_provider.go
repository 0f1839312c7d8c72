package providers

import (
	"net/http"
	"scoutd/internal/structures"
	"strings"
)

type RouterProviderInterface interface {
	Get(url string, handler http.Handler)
	Post(url string, handler http.Handler)
	GetRoutes() []structures.Route
}

type RouterProvider struct {
	basePath string
	routes   []structures.Route
}

func (rp *RouterProvider) Get(url string, handler http.Handler) {
	rp.add(http.MethodGet, url, handler)
}

func (rp *RouterProvider) Post(url string, handler http.Handler) {
	rp.add(http.MethodPost, url, handler)
}

func (rp *RouterProvider) add(method, url string, handler http.Handler) {
	rp.routes = append(rp.routes, structures.Route{
		Method:  method,
		Url:     rp.basePath + url,
		Handler: handler,
	})
}

func (rp *RouterProvider) GetRoutes() []structures.Route {
	return rp.routes
}

// NewRouterProvider returns a router whose urls are prefixed with basePath.
// Method enforcement is left to the method-qualified ServeMux patterns.
func NewRouterProvider(basePath string) RouterProviderInterface {
	return &RouterProvider{basePath: strings.TrimSuffix(basePath, "/")}
}
