// Package logger provides audit logging.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger provides a dedicated audit trail for served recommendations
// and recorded bets.
type AuditLogger struct {
	*logrus.Entry
	file io.WriteCloser
}

// NewAuditLogger creates a new audit logger writing to the base logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// NewFileAuditLogger creates an audit logger that appends JSON lines to the
// given path in addition to the process log level settings.
func NewFileAuditLogger(path string, level logrus.Level) (*AuditLogger, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}

	log := logrus.New()
	log.SetOutput(f)
	log.SetLevel(level)
	log.SetFormatter(&logrus.JSONFormatter{})

	return &AuditLogger{
		Entry: log.WithField("component", "audit"),
		file:  f,
	}, nil
}

// Close closes the underlying audit file, if any.
func (al *AuditLogger) Close() error {
	if al.file != nil {
		return al.file.Close()
	}
	return nil
}

// LogRecommendationServed logs a served recommendation set.
func (al *AuditLogger) LogRecommendationServed(requestID, site, modelName string, maxOdds, desiredProfit float64, candidates, served int) {
	al.WithFields(logrus.Fields{
		"request_id":     requestID,
		"site":           site,
		"model":          modelName,
		"max_odds":       maxOdds,
		"desired_profit": desiredProfit,
		"candidates":     candidates,
		"served":         served,
	}).Info("Recommendations served")
}

// LogBetRecorded logs a bet recorded against a user's history.
func (al *AuditLogger) LogBetRecorded(betID, userID, modelName, outcome string, stake, odds, ev float64, timestamp time.Time) {
	al.WithFields(logrus.Fields{
		"bet_id":    betID,
		"user_id":   userID,
		"model":     modelName,
		"outcome":   outcome,
		"stake":     stake,
		"odds":      odds,
		"ev":        ev,
		"timestamp": timestamp.Unix(),
	}).Info("Bet recorded")
}

// LogPreferenceChange logs a user preference update.
func (al *AuditLogger) LogPreferenceChange(userID, preferenceName string, oldValue, newValue interface{}) {
	al.WithFields(logrus.Fields{
		"user_id":         userID,
		"preference_name": preferenceName,
		"old_value":       oldValue,
		"new_value":       newValue,
	}).Info("User preference changed")
}

// LogProviderFailure logs an odds provider failure event.
func (al *AuditLogger) LogProviderFailure(provider, code, message string) {
	al.WithFields(logrus.Fields{
		"provider": provider,
		"code":     code,
		"message":  message,
	}).Warn("Odds provider failure recorded")
}
