package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-im-ha/turbo-blog-practice/config"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

type Server struct {
	*http.Server
}

func NewServer(c map[string]string, deps Dependencies) (Server, error) {
	if deps.Store == nil || deps.Tokens == nil || deps.Tags == nil {
		return Server{}, fmt.Errorf("api: store, tokens and tag scheduler are required")
	}

	// Ensure correct port is set
	port := config.GetString(c, "PORT", "8080")
	address := fmt.Sprintf("0.0.0.0:%s", port) // Bind to 0.0.0.0 for external access

	router := newRouter(deps, withConfig(c))

	// Get timeout values from config with sensible defaults
	readTimeout := time.Duration(config.GetInt(c, "READ_TIMEOUT_SECONDS", 30)) * time.Second
	writeTimeout := time.Duration(config.GetInt(c, "WRITE_TIMEOUT_SECONDS", 30)) * time.Second
	idleTimeout := time.Duration(config.GetInt(c, "IDLE_TIMEOUT_SECONDS", 120)) * time.Second

	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  readTimeout,  // Timeout for reading the entire request
		WriteTimeout: writeTimeout, // Timeout for writing the response
		IdleTimeout:  idleTimeout,  // Timeout for idle connections
	}

	return Server{server}, nil
}

type router struct {
	config map[string]string
}

func withConfig(c map[string]string) func(*router) {
	return func(r *router) {
		r.config = c
	}
}

func newRouter(deps Dependencies, opts ...func(*router)) *chi.Mux {
	var router router
	for _, opt := range opts {
		opt(&router)
	}

	chiRouter := chi.NewRouter()
	chiRouter.Use(middleware.RealIP)
	chiRouter.Use(RequestLogger(log.With().Str("handlerName", "requestLogger").Logger()))
	chiRouter.Use(RecoverPanics)

	// Apply CORS middleware
	acceptedOrigins := config.GetStrings(router.config, "ACCEPTED_ORIGINS", []string{"http://localhost:3000"})
	chiRouter.Use(CORSCheckMiddleware(acceptedOrigins))
	chiRouter.Use(corsMiddleware(acceptedOrigins))

	limiter := newRateLimiter(
		rate.Limit(config.GetFloat(router.config, "RATE_LIMIT_RPS", 5)),
		config.GetInt(router.config, "RATE_LIMIT_BURST", 20),
	)
	chiRouter.Use(limiter.limitMutations)

	handlers := initializeHandlers(deps)
	authMiddleware := newAuthMiddleware(deps.Tokens)

	setupRoutes(chiRouter, handlers, authMiddleware)

	return chiRouter
}

func (s Server) Start(errChannel chan<- error) {
	log.Info().Msgf("Server started on: %s", s.Addr)
	errChannel <- s.ListenAndServe()
}

func (s Server) ShutdownGracefully(timeout time.Duration) {
	log.Info().Msg("Gracefully shutting down...")

	gracefullCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefullCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
	} else {
		log.Info().Msg("HttpServer gracefully shut down")
	}
}
