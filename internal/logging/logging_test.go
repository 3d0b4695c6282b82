package logging_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omochice/tcptalk/internal/logging"
)

func TestNew_JSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")

	logger, err := logging.New(logging.Options{Level: "info", Format: "json", Output: path})
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("Username admitted")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "Username admitted", entry["msg"])
}

func TestNew_ConsoleDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.log")

	logger, err := logging.New(logging.Options{Level: "debug", Format: "console", Output: path})
	require.NoError(t, err)
	logger.Debug("Relayed chat line")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "DEBUG")
	assert.Contains(t, string(data), "Relayed chat line")
}

func TestNew_Errors(t *testing.T) {
	_, err := logging.New(logging.Options{Level: "loud"})
	assert.ErrorContains(t, err, "failed to parse log level")

	_, err = logging.New(logging.Options{Level: "info", Format: "xml"})
	assert.ErrorContains(t, err, "unknown log format")
}
