package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig(t *testing.T) {
	var (
		addr  = "localhost:8080"
		dsn   = "host=localhost user=postgres password=postgres dbname=postgres sslmode=disable"
		orig  = []string{"http://localhost:3000"}
		conns = 10
	)

	tcases := []struct {
		name  string
		addr  string
		dsn   string
		orig  []string
		conns int
		err   bool
	}{
		{
			name:  "valid config",
			addr:  addr,
			dsn:   dsn,
			orig:  orig,
			conns: conns,
			err:   false,
		},
		{
			name:  "empty address",
			addr:  "",
			dsn:   dsn,
			orig:  orig,
			conns: conns,
			err:   true,
		},
		{
			name:  "empty DSN",
			addr:  addr,
			dsn:   "",
			orig:  orig,
			conns: conns,
			err:   true,
		},
		{
			name:  "zero connection bound",
			addr:  addr,
			dsn:   dsn,
			orig:  orig,
			conns: 0,
			err:   true,
		},
		{
			name:  "negative connection bound",
			addr:  addr,
			dsn:   dsn,
			orig:  orig,
			conns: -1,
			err:   true,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			config, err := NewConfig(tc.addr, tc.dsn, tc.orig, tc.conns)
			if tc.err {
				assert.Error(t, err, "expected error for config: %s", tc.name)
				return
			}
			assert.NoError(t, err, "expected no error for config: %s", tc.name)

			assert.Equal(t, tc.addr, config.ServerAddr, "expected server address to match")
			assert.Equal(t, tc.dsn, config.DatabaseDSN, "expected database DSN to match")
			assert.Equal(t, tc.orig, config.AllowedOrigins, "expected allowed origins to match")
			assert.Equal(t, tc.conns, config.MaxDBConns, "expected connection bound to match")
		})
	}
}
