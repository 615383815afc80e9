package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupConsoleOnly(t *testing.T) {
	logger := log.New()
	closer := Setup(logger, Options{Debug: true})
	defer closer.Close()

	assert.Equal(t, log.DebugLevel, logger.GetLevel())
	assert.Empty(t, logger.Hooks)
}

func TestSetupFileHook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scanner.log")
	logger := log.New()
	logger.SetOutput(&bytes.Buffer{})

	closer := Setup(logger, Options{File: path, MaxSizeMB: 1, MaxBackups: 1, MaxAgeDays: 1})
	assert.Equal(t, log.InfoLevel, logger.GetLevel())

	logger.WithField("symbol", "SPX500").Info("scan done")
	logger.Debug("dropped below level")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := bytes.Split(bytes.TrimSpace(data), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "scan done", entry["msg"])
	assert.Equal(t, "SPX500", entry["symbol"])
	assert.Equal(t, "info", entry["level"])
}
