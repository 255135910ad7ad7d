package v1

import (
	"github.com/gin-gonic/gin"
)

// CRUDRouteHandler defines the interface for catalog handlers.
type CRUDRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

// RouteGuards are the middleware chains run before each kind of route.
type RouteGuards struct {
	Read   []gin.HandlerFunc
	Create []gin.HandlerFunc
	Write  []gin.HandlerFunc // update and delete
}

// RegisterCRUDRoutes registers standard CRUD routes for a catalog.
//
// Usage:
//
//	RegisterCRUDRoutes(api.Group("/banks", auth), bankHandler, RouteGuards{
//		Read:   []gin.HandlerFunc{middleware.RequireRole("admin", "employee")},
//		Create: []gin.HandlerFunc{middleware.RequireRole("admin")},
//		Write:  []gin.HandlerFunc{middleware.RequireRole("admin")},
//	})
func RegisterCRUDRoutes(group *gin.RouterGroup, handler CRUDRouteHandler, guards RouteGuards) {
	group.GET("", chain(guards.Read, handler.List)...)
	group.POST("", chain(guards.Create, handler.Create)...)
	group.GET("/:id", chain(guards.Read, handler.Get)...)
	group.PUT("/:id", chain(guards.Write, handler.Update)...)
	group.DELETE("/:id", chain(guards.Write, handler.Delete)...)
}

func chain(guards []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(guards)+1)
	out = append(out, guards...)
	return append(out, h)
}
