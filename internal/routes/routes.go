package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/storecore/catalog-api/internal/auth"
	"github.com/storecore/catalog-api/internal/handlers"
	"github.com/storecore/catalog-api/internal/middleware"
	"github.com/storecore/catalog-api/internal/repositories"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	itemHandler *handlers.ItemHandler,
	userHandler *handlers.UserHandler,
	authHandler *handlers.AuthHandler,
	tokenManager *auth.TokenManager,
	userRepo *repositories.UserRepository,
	loginRateLimit middleware.RateLimitConfig,
) {
	// Public routes - no authentication required
	router.With(middleware.RateLimitByIP(loginRateLimit)).Post("/auth/login", authHandler.Login)
	router.Get("/items", itemHandler.ListItems)
	router.Get("/items/{id}", itemHandler.GetItem)

	// Protected routes - authentication required
	router.Group(func(r chi.Router) {
		r.Use(auth.Authenticate(tokenManager, userRepo))

		// Any authenticated user, acting on their own account
		r.Get("/users/me", userHandler.GetMe)
		r.Patch("/users/me", userHandler.UpdateMe)
		r.Put("/users/me/image", userHandler.UpdateMyImage)
		r.Patch("/users/me/password", userHandler.UpdateMyPassword(tokenManager))

		// Admin-only routes
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin)

			r.Get("/admin/items", itemHandler.AdminListItems)
			r.Post("/admin/items", itemHandler.CreateItem)
			r.Patch("/admin/items/{id}", itemHandler.UpdateItem)
			r.Put("/admin/items/{id}/image", itemHandler.UpdateItemImage)
			r.Delete("/admin/items/{id}", itemHandler.DeleteItem)

			r.Get("/admin/users", userHandler.ListUsers)
			r.Get("/admin/users/{id}", userHandler.GetUser)
			r.Post("/admin/users", userHandler.CreateUser)
			r.Delete("/admin/users/{id}", userHandler.DeleteUser)
		})
	})
}
