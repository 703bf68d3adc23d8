package api

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/teris-io/shortid"

	"liveroom-server/internal/config"
	"liveroom-server/internal/database"
	"liveroom-server/internal/room"
)

type LiveRoomApp struct {
	log   *log.Logger
	db    database.LiveRoomRepository
	rooms *room.Service
	mux   *http.Server
	// overridable in tests
	generateToken     func() string
	generateRequestId func() (string, error)
}

func NewLiveRoomApp(mux *http.ServeMux, logger *log.Logger, rooms *room.Service, db database.LiveRoomRepository, cfg *config.Config) *LiveRoomApp {
	s := &LiveRoomApp{
		log:               logger,
		db:                db,
		rooms:             rooms,
		generateToken:     uuid.NewString,
		generateRequestId: shortid.Generate,
	}

	mux.HandleFunc("GET /healthz", s.healthCheck)
	mux.HandleFunc("POST /api/user/create", s.createUser)
	mux.Handle("GET /api/user/me", s.authMiddleware(s.me))
	mux.Handle("POST /api/user/update", s.authMiddleware(s.updateUser))
	mux.Handle("POST /api/room/create", s.authMiddleware(s.createRoom))
	mux.HandleFunc("POST /api/room/list", s.listRooms)
	mux.Handle("POST /api/room/join", s.authMiddleware(s.joinRoom))
	mux.Handle("POST /api/room/wait", s.authMiddleware(s.waitRoom))
	mux.Handle("POST /api/room/leave", s.authMiddleware(s.leaveRoom))

	h := handlers.CORS(
		handlers.MaxAge(3600),
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Origin", "Content-Type", "Accept", "Authorization"}),
	)(mux)

	h = s.requestLogger(h)
	h = s.errorHandler(h)

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: h,
	}

	s.mux = srv
	return s
}

func (s *LiveRoomApp) Start() error {
	s.log.Printf("starting server on %s\n", s.mux.Addr)
	return s.mux.ListenAndServe()
}

func (s *LiveRoomApp) Shutdown(ctx context.Context) error {
	s.log.Println("shutting down HTTP server...")
	if err := s.mux.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}
