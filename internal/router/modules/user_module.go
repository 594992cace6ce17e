package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/user-directory/internal/interface/http"
)

// UserModule wires the user-directory handlers into routes under /api.
//
// GET /, POST /users, GET /users, GET /users/:id, PUT /users/:id,
// DELETE /users/:id, POST /users/:id/follow/:target_id,
// POST /users/:id/unfollow/:target_id
type UserModule struct {
	Handler *handlers.UserHandler
}

func NewUserModule(h *handlers.UserHandler) *UserModule {
	return &UserModule{Handler: h}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	rg.GET("", m.Handler.Index)

	rg.POST("/users", m.Handler.Create)
	rg.GET("/users", m.Handler.List)
	rg.GET("/users/:id", m.Handler.Get)
	rg.PUT("/users/:id", m.Handler.Update)
	rg.DELETE("/users/:id", m.Handler.Delete)

	rg.POST("/users/:id/follow/:target_id", m.Handler.Follow)
	rg.POST("/users/:id/unfollow/:target_id", m.Handler.Unfollow)
}
