package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"hydration_notification_bot/internal/infra/config"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigure_ProductionUsesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()

	configure(l, &buf, &config.AppConfig{LogLevel: "warn", Environment: "production"})
	l.Warn("disk almost full")

	assert.Equal(t, logrus.WarnLevel, l.GetLevel())
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &entry))
	assert.Equal(t, "disk almost full", entry["msg"])
}

func TestConfigure_InvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()

	configure(l, &buf, &config.AppConfig{LogLevel: "loud", Environment: "development"})

	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
	assert.Contains(t, buf.String(), "Invalid log level")
}
