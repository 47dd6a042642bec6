package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/stitts-dev/tennis-sim/pkg/config"
)

func TestServeShutsDownOnCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := Serve(ctx, &config.Config{Env: "test", Port: "0", CacheTTL: time.Minute})
	assert.NoError(t, err)
}

func TestServeRejectsBadRedisURL(t *testing.T) {
	err := Serve(context.Background(), &config.Config{Env: "test", Port: "0", RedisURL: "ftp://nope"})
	assert.Error(t, err)
}
