// Package router builds the HTTP route table.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIPrefix is where every versioned resource is mounted
const APIPrefix = "/api/v1"

// Route is one endpoint; the last handler serves the request, earlier ones guard it
type Route struct {
	Method   string
	Path     string
	Handlers []gin.HandlerFunc
}

// Resource is a set of routes under one prefix that share middleware.
// Nested resources run the parent's middleware first.
type Resource struct {
	Prefix     string
	Middleware []gin.HandlerFunc
	Routes     []Route
	Nested     []Resource
}

func (r Resource) mount(parent gin.IRouter) {
	group := parent.Group(r.Prefix, r.Middleware...)
	for _, route := range r.Routes {
		group.Handle(route.Method, route.Path, route.Handlers...)
	}
	for _, nested := range r.Nested {
		nested.mount(group)
	}
}

func get(path string, h ...gin.HandlerFunc) Route    { return Route{http.MethodGet, path, h} }
func post(path string, h ...gin.HandlerFunc) Route   { return Route{http.MethodPost, path, h} }
func put(path string, h ...gin.HandlerFunc) Route    { return Route{http.MethodPut, path, h} }
func patch(path string, h ...gin.HandlerFunc) Route  { return Route{http.MethodPatch, path, h} }
func remove(path string, h ...gin.HandlerFunc) Route { return Route{http.MethodDelete, path, h} }
