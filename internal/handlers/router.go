package handlers

import (
	"net/http"

	"clearTask/internal/middleware"

	"github.com/go-chi/chi/v5"
)

type Router struct {
	Tasks         TaskHandler
	Sessions      SessionHandler
	Notifications NotificationHandler
	Health        HealthHandler

	Loaded        func() bool
	Authenticated func() bool
}

// Mount registers the API routes on r.
func (h *Router) Mount(r chi.Router) {
	r.Get("/health", h.Health.HealthCheck)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireLoaded(h.Loaded))

		r.Route("/session", func(r chi.Router) {
			r.Get("/", h.Sessions.GetSession)           // GET /session
			r.Post("/login", h.Sessions.Login)          // POST /session/login
			r.Post("/signup", h.Sessions.Signup)        // POST /session/signup
			r.Post("/logout", h.Sessions.Logout)        // POST /session/logout
			r.Put("/profile", h.Sessions.UpdateProfile) // PUT /session/profile
			r.Delete("/", h.Sessions.DeleteAccount)     // DELETE /session
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession(h.Authenticated))

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", h.Tasks.ListTasks)  // GET /tasks
				r.Post("/", h.Tasks.PostTask)  // POST /tasks
				r.Get("/stats", h.Tasks.Stats) // GET /tasks/stats

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Tasks.GetTaskByID)             // GET /tasks/{id}
					r.Patch("/", h.Tasks.PatchTask)             // PATCH /tasks/{id}
					r.Delete("/", h.Tasks.DeleteTask)           // DELETE /tasks/{id}
					r.Post("/duplicate", h.Tasks.DuplicateTask) // POST /tasks/{id}/duplicate
					r.Post("/pin", h.Tasks.TogglePin)           // POST /tasks/{id}/pin
					r.Post("/complete", h.Tasks.ToggleComplete) // POST /tasks/{id}/complete
				})
			})

			r.Get("/notifications", h.Notifications.List) // GET /notifications
		})
	})
}

func (h *Router) Handler() http.Handler {
	r := chi.NewRouter()
	h.Mount(r)
	return r
}
