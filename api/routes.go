package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func healthCheck() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("Blog server is running.."))
	}
}

// setupRoutes mounts every route under /api. Routes that act on behalf of a user sit behind
// authMiddleware; ownership is checked by the services.
func setupRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware) {
	r.Get("/", healthCheck())

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Group(func(r chi.Router) {
			r.Post("/auth/register", handlers.userHandler.register())
			r.Post("/auth/login", handlers.userHandler.login())

			r.Get("/blogs", handlers.blogHandler.getAllBlogs())
			r.Get("/blogs/{id}", handlers.blogHandler.getBlog())

			r.Get("/blog/{id}/likes", handlers.engagementHandler.getLikes())
			r.Get("/blog/comment/{id}", handlers.engagementHandler.getComments())

			r.Get("/search", handlers.blogHandler.searchBlogs())
			r.Get("/search/filter", handlers.blogHandler.filterBlogs())

			r.Get("/user/profile/{id}", handlers.userHandler.getPublicProfile())
			r.Get("/user/blogs/{id}", handlers.blogHandler.getUserBlogs())
		})

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.authenticate)

			r.Get("/protected", handlers.userHandler.protected())

			r.Post("/blogs", handlers.blogHandler.createBlog())
			r.Put("/blogs/{id}", handlers.blogHandler.updateBlog())
			r.Delete("/blogs/{id}", handlers.blogHandler.deleteBlog())

			r.Post("/blog/{id}/like", handlers.engagementHandler.toggleLike())
			r.Post("/blog/comment/{id}", handlers.engagementHandler.createComment())
			r.Put("/blog/comment/{id}", handlers.engagementHandler.updateComment())
			r.Delete("/blog/comment/{id}", handlers.engagementHandler.deleteComment())

			r.Get("/blog/notifications", handlers.notificationHandler.getNotifications())
			r.Patch("/blog/notifications/read/{id}", handlers.notificationHandler.markRead())
			r.Patch("/blog/notifications/mark-read", handlers.notificationHandler.markManyRead())
			r.Patch("/blog/notifications/mark-all-read", handlers.notificationHandler.markAllRead())
			r.Delete("/blog/notifications", handlers.notificationHandler.deleteManyNotifications())
			r.Delete("/blog/notifications/all", handlers.notificationHandler.deleteAllNotifications())
			r.Delete("/blog/notifications/{id}", handlers.notificationHandler.deleteNotification())

			r.Get("/user/profile", handlers.userHandler.getProfile())
			r.Put("/user/profile", handlers.userHandler.updateProfile())
		})
	})
}
