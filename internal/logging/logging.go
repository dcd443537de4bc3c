// Package logging configures the process-wide logrus logger.
package logging

import (
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/soonland/nexus-gaming/internal/permission"
)

const ServiceName = "nexus-gaming-api"

// Configure sets level and format on the standard logger and tags every entry
// with the service name and environment.
func Configure(level, format, env string) {
	logger := logrus.StandardLogger()
	logger.Out = os.Stdout

	if strings.EqualFold(format, "text") {
		logger.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	} else {
		logger.Formatter = &logrus.JSONFormatter{}
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	logger.ReplaceHooks(make(logrus.LevelHooks))
	logger.AddHook(&DefaultFieldsHook{Env: env})
}

type DefaultFieldsHook struct {
	Env string
}

func (hook *DefaultFieldsHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (hook *DefaultFieldsHook) Fire(e *logrus.Entry) error {
	e.Data["service"] = ServiceName
	if hook.Env != "" {
		e.Data["env"] = hook.Env
	}
	return nil
}

// PrincipalLookup extracts the authenticated principal, if any, from a request
type PrincipalLookup func(c *gin.Context) (permission.Principal, bool)

// RequestLogger replaces gin's default logger with one structured entry per request
func RequestLogger(lookup PrincipalLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
			"client":  c.ClientIP(),
		}
		if lookup != nil {
			if p, ok := lookup(c); ok {
				fields["user_id"] = p.ID
				fields["role"] = p.Role
			}
		}

		entry := logrus.WithFields(fields)
		switch status := c.Writer.Status(); {
		case status >= 500:
			entry.Error("request failed")
		case status >= 400:
			entry.Warn("request rejected")
		default:
			entry.Info("request served")
		}
	}
}
