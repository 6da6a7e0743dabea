package redis

import (
	"context"
	"fmt"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	s := miniredis.RunT(t)

	ctx := context.Background()
	client, err := NewClient(ctx, fmt.Sprintf("redis://%s/2", s.Addr()))
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, clientName, client.Options().ClientName)
	assert.Equal(t, 2, client.Options().DB)
	assert.NoError(t, client.Set(ctx, "k", "v", 0).Err())
}

func TestNewClient_InvalidURL(t *testing.T) {
	_, err := NewClient(context.Background(), "://bad-url")
	assert.Error(t, err)
}

func TestNewClient_ServerDown(t *testing.T) {
	s := miniredis.RunT(t)
	url := fmt.Sprintf("redis://%s", s.Addr())
	s.Close()

	_, err := NewClient(context.Background(), url)
	assert.ErrorContains(t, err, "failed to ping redis")
}

func TestPing(t *testing.T) {
	s := miniredis.RunT(t)
	client, err := NewClient(context.Background(), fmt.Sprintf("redis://%s", s.Addr()))
	require.NoError(t, err)
	defer client.Close()

	probe := Ping(client)
	require.NoError(t, probe(context.Background()))

	s.Close()
	assert.Error(t, probe(context.Background()))
}
