package logging

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
	}{
		{"development", &Config{Env: "development", Level: "debug"}, false},
		{"production to file", &Config{Env: "production", Level: "warn", FilePath: filepath.Join(t.TempDir(), "app.log")}, false},
		{"unknown level", &Config{Env: "production", Level: "verbose"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}
}

func TestContextLogger(t *testing.T) {
	assert.NotNil(t, ExtractLoggerFromContext(context.Background()))

	logger := zap.NewExample()
	ctx := SetLoggerInContext(context.Background(), logger)
	assert.Same(t, logger, ExtractLoggerFromContext(ctx))
}

func TestProductionLoggerWritesECS(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	logger, err := NewLogger(&Config{Env: "production", Level: "info", FilePath: path, AppID: "learning"})
	require.NoError(t, err)

	logger.Info("session opened", zap.String("session.id", "s1"))
	logger.Debug("dropped")
	require.NoError(t, logger.Sync())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 1)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &doc))
	assert.Equal(t, "session opened", doc["message"])
	assert.Equal(t, "info", doc["log.level"])
	assert.Equal(t, "learning", doc["service.id"])
	assert.Equal(t, "s1", doc["session.id"])
	assert.Contains(t, doc, "@timestamp")
}
