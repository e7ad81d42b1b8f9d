package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"leke-chat/internal/handlers"
	"leke-chat/internal/middleware"
)

func New(
	chatHandler *handlers.ChatHandler,
	chatLimiter *middleware.RateLimiter,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", chatHandler.Health)

		r.Group(func(r chi.Router) {
			if chatLimiter != nil {
				r.Use(chatLimiter.Middleware)
			}
			r.Use(chimiddleware.Timeout(3 * time.Minute))
			r.Post("/chat", chatHandler.Chat)
		})

		r.Route("/conversations", func(r chi.Router) {
			r.Get("/", chatHandler.ListConversations)
			r.Delete("/", chatHandler.ClearConversations)
		})
	})

	return r
}
