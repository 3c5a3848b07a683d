package logger

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	if err != nil {
		return nil
	}
	return logEntry
}

func TestNewLoggerLevelParsing(t *testing.T) {
	log := NewLogger("debug")
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	// Invalid levels fall back to info
	log = NewLogger("nonsense")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestAuditLoggerRecommendationServed(t *testing.T) {
	log, buf := setupTestLogger()
	audit := NewAuditLogger(log)

	audit.LogRecommendationServed("req_001", "rapid_odds", "logistic_regression", 5.0, 20.0, 12, 5)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "req_001", logEntry["request_id"])
	assert.Equal(t, "rapid_odds", logEntry["site"])
	assert.Equal(t, "audit", logEntry["component"])
	assert.Equal(t, float64(5), logEntry["served"])
}

func TestAuditLoggerBetRecorded(t *testing.T) {
	log, buf := setupTestLogger()
	audit := NewAuditLogger(log)

	audit.LogBetRecorded("bet_001", "user_001", "random_forest", "home", 10, 2.4, 0.2, time.Now())

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "bet_001", logEntry["bet_id"])
	assert.Equal(t, "user_001", logEntry["user_id"])
	assert.Equal(t, "random_forest", logEntry["model"])
}

func TestAuditLoggerPreferenceChange(t *testing.T) {
	log, buf := setupTestLogger()
	audit := NewAuditLogger(log)

	audit.LogPreferenceChange("user_001", "risk_tolerance", "medium", "high")

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "risk_tolerance", logEntry["preference_name"])
	assert.Equal(t, "high", logEntry["new_value"])
}

func TestFileAuditLogger(t *testing.T) {
	path := t.TempDir() + "/audit.log"
	audit, err := NewFileAuditLogger(path, logrus.InfoLevel)
	require.NoError(t, err)

	audit.LogProviderFailure("rapid_odds", "rate_limit_exceeded", "429 from upstream")
	require.NoError(t, audit.Close())
}
