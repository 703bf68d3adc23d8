package config

import (
	"fmt"
)

type Config struct {
	ServerAddr     string
	DatabaseDSN    string
	AllowedOrigins []string
	// MaxDBConns bounds the store's connection pool. An admission holds its
	// connection while blocked on a room lock, so this also bounds the number
	// of in-flight transactions.
	MaxDBConns int
}

func NewConfig(serverAddr, databaseDSN string, allowedOrigins []string, maxDBConns int) (*Config, error) {
	if serverAddr == "" {
		return nil, fmt.Errorf("server address cannot be empty")
	}
	if databaseDSN == "" {
		return nil, fmt.Errorf("database DSN cannot be empty")
	}
	if maxDBConns <= 0 {
		return nil, fmt.Errorf("max database connections must be positive, got %d", maxDBConns)
	}

	return &Config{
		ServerAddr:     serverAddr,
		DatabaseDSN:    databaseDSN,
		AllowedOrigins: allowedOrigins,
		MaxDBConns:     maxDBConns,
	}, nil
}
