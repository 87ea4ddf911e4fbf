package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Akshat090803/ecommerce-final-project/internal/config"
)

func redisConfig(mr *miniredis.Miniredis) *config.Config {
	return &config.Config{Redis: config.RedisConfig{
		Host:     mr.Host(),
		Port:     mr.Port(),
		PoolSize: 2,
	}}
}

func TestNewConnection_Health(t *testing.T) {
	mr := miniredis.RunT(t)
	log, hook := test.NewNullLogger()

	client, err := NewConnection(redisConfig(mr), log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	assert.NoError(t, client.Health(context.Background()))
	assert.NotNil(t, client.GetClient())
	assert.Len(t, hook.AllEntries(), 1)

	mr.Close()
	assert.Error(t, client.Health(context.Background()))
}

func TestNewConnection_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := redisConfig(mr)
	mr.Close()
	log, _ := test.NewNullLogger()

	_, err := NewConnection(cfg, log)
	assert.Error(t, err)
}
