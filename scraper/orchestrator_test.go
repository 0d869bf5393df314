package scraper

import (
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadpipe/config"
	"leadpipe/models"
	"leadpipe/storage"
)

func TestLogWarnsWhenOpsStoreFails(t *testing.T) {
	ops, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "ops.db"))
	require.NoError(t, err)
	require.NoError(t, ops.Close())

	logger, hook := test.NewNullLogger()
	o := NewOrchestrator(&config.Config{}, ops, nil, nil, nil, logger)

	o.log(1, models.LogLevelInfo, "ping", "tn_ledger")

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Contains(t, entry.Message, "Could not write run log")
}
