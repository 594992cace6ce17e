package router

import (
	"github.com/oksasatya/user-directory/internal/application"
	"github.com/oksasatya/user-directory/internal/container"
	handlers "github.com/oksasatya/user-directory/internal/interface/http"
	"github.com/oksasatya/user-directory/internal/router/modules"
)

func buildUserModule() *modules.UserModule {
	store := container.GetStore()
	logger := container.GetLogger()

	views := application.NewService(store, logger)
	handler := handlers.NewUserHandler(store, views, logger)

	return modules.NewUserModule(handler)
}

// InitModules initializes all application modules and registers them with
// the router registry. Called once during startup.
func InitModules(r *Registry) {
	r.Add(buildUserModule())
}
