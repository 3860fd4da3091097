package routes

import (
	"cinechat/cinechat/controllers"

	"github.com/go-chi/chi/v5"
)

// HealthRoutes mounts the liveness probe outside the token guard so
// supervisors can poll it before anyone has logged in.
func HealthRoutes(ctrl *controllers.HealthController) chi.Router {
	r := chi.NewRouter()
	r.Get("/", ctrl.HealthCheck)
	return r
}
