package bootstrap

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/chargeview/internal/config"
	"github.com/turtacn/chargeview/internal/infrastructure/fetch"
	"github.com/turtacn/chargeview/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/chargeview/internal/testutil"
	"github.com/turtacn/chargeview/pkg/errors"
)

func TestConnect_NothingEnabled(t *testing.T) {
	cfg := config.Default()
	infra, err := Connect(context.Background(), cfg, testutil.NewMockLogger())
	require.NoError(t, err)
	defer infra.Close()

	assert.Nil(t, infra.Redis)
	assert.Nil(t, infra.MinIO)
	assert.Nil(t, infra.Producer)
	assert.Empty(t, infra.HealthCheckers())
	assert.Nil(t, infra.DownloadCache())

	// local files are off unless configured
	_, err = infra.Fetcher(nil).Fetch(context.Background(), "/tmp/x.cif")
	assert.True(t, errors.IsInvalidReference(err))
}

func TestConnect_RedisCachesDownloads(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.Default()
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = mr.Addr()
	cfg.Viewer.AllowLocalFiles = true

	log := testutil.NewMockLogger()
	infra, err := Connect(context.Background(), cfg, log)
	require.NoError(t, err)
	defer infra.Close()
	require.NotNil(t, infra.Cache)

	checkers := infra.HealthCheckers()
	require.Len(t, checkers, 1)
	assert.Equal(t, "redis", checkers[0].Name())
	assert.NoError(t, checkers[0].Check(context.Background()))

	path := testutil.WriteFile(t, t.TempDir(), "1abc.cif", testutil.ChargedPeptide("1ABC", 2, "eem/un_2016").CIF())
	res, err := infra.Fetcher(nil).Fetch(context.Background(), path)
	require.NoError(t, err)
	assert.False(t, res.Cached)
	assert.NotEmpty(t, res.Bytes)
	assert.True(t, log.HasMessage("info", "infrastructure initialized"))

	dc := infra.DownloadCache()
	require.NotNil(t, dc)
	st, err := dc.Status(context.Background(), path)
	require.NoError(t, err)
	assert.False(t, st.Cached)
}

func TestConnect_RedisUnreachable(t *testing.T) {
	cfg := config.Default()
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = "127.0.0.1:1"

	_, err := Connect(context.Background(), cfg, testutil.NewMockLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis")
}

func TestStateTopics(t *testing.T) {
	topics := StateTopics("viewer.state")
	require.Len(t, topics, 2)
	assert.Equal(t, "viewer.state", topics[0].Name)
	assert.Equal(t, kafka.TopicStructureLoaded, topics[1].Name)

	assert.Equal(t, kafka.TopicControlsState, StateTopics("")[0].Name)
}

var _ fetch.Fetcher = (*fetch.Router)(nil)

//Personal.AI order the ending
