package server

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"idm-in-go/pkg/auth"
	"idm-in-go/pkg/config"
	"idm-in-go/pkg/server/store"
	"idm-in-go/pkg/session"
)

// Server bundles the authentication service with its HTTP surface.
type Server struct {
	Auth     *auth.Service
	Sessions *session.Module
	Users    store.UserStore
	Health   store.HealthStore
	Config   *config.ServerConfig
	Router   *mux.Router
	DB       *gorm.DB
	srv      *http.Server
}

func NewServer(
	authService *auth.Service,
	sessions *session.Module,
	users store.UserStore,
	health store.HealthStore,
	cfg *config.ServerConfig,
	db *gorm.DB,
) *Server {

	router := mux.NewRouter().UseEncodedPath()
	srv := &http.Server{
		Handler: handlers.LoggingHandler(os.Stdout, router),
		Addr:    cfg.ListenAddress,
		// Good practice: enforce timeouts for servers you create!
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	return &Server{
		Auth:     authService,
		Sessions: sessions,
		Users:    users,
		Health:   health,
		Config:   cfg,
		Router:   router,
		DB:       db,
		srv:      srv,
	}
}

func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
