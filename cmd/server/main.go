package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"liveroom-server/internal/api"
	"liveroom-server/internal/config"
	"liveroom-server/internal/database"
	"liveroom-server/internal/room"
	"liveroom-server/internal/stats"
)

type stringSliceFlag []string

func (s *stringSliceFlag) String() string {
	return strings.Join(*s, ",")
}

func (s *stringSliceFlag) Set(value string) error {
	*s = append(*s, strings.Split(value, ",")...)
	return nil
}

var (
	addr           string
	dsn            string
	maxDBConns     int
	skipMigrate    bool
	allowedOrigins stringSliceFlag
)

func main() {
	flag.StringVar(&addr, "addr", "localhost:8000", "server address")
	flag.StringVar(&dsn, "dsn", "host=localhost user=postgres password=postgres dbname=postgres sslmode=disable", "database connection string")
	flag.IntVar(&maxDBConns, "max-db-conns", 10, "upper bound on database connections")
	flag.BoolVar(&skipMigrate, "skip-migrate", false, "do not apply schema migrations on startup")
	flag.Var(&allowedOrigins, "allowed-origins", "comma-separated list of allowed origins for CORS")
	flag.Parse()

	logger := log.New(os.Stderr, "[liveroom] ", log.LstdFlags)

	cfg, err := config.NewConfig(addr, dsn, allowedOrigins, maxDBConns)
	if err != nil {
		logger.Fatal("config:", err)
	}

	dbConn, err := database.NewPgLiveRoomRepository(cfg.DatabaseDSN, cfg.MaxDBConns)
	if err != nil {
		logger.Fatal("db open:", err)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Fatal("db close:", err)
		}
	}()

	if !skipMigrate {
		if err := dbConn.Migrate(); err != nil {
			logger.Fatal("db migrate:", err)
		}
	}

	mux := http.NewServeMux()

	statsRecorder := stats.NewStatsRecorder(mux)
	roomService := room.NewService(logger, dbConn, statsRecorder)

	srv := api.NewLiveRoomApp(mux, logger, roomService, dbConn, cfg)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigs:
		logger.Printf("received signal: %s\n", sig)
	case err := <-errCh:
		logger.Println("server:", err)
	}

	shutDownCtx, cancel := context.WithTimeout(
		context.Background(),
		10*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutDownCtx); err != nil {
		logger.Fatalln("HTTP server shutdown:", err)
	}

	logger.Println("shutdown complete")
}
