package config

import (
	"strings"

	"github.com/labstack/gommon/log"
)

var logLevels = map[string]log.Lvl{
	"debug": log.DEBUG,
	"info":  log.INFO,
	"warn":  log.WARN,
	"error": log.ERROR,
	"off":   log.OFF,
}

// Level maps LOG_LEVEL to a gommon level, defaulting to INFO.
func (c *Config) Level() log.Lvl {
	if lvl, ok := logLevels[strings.ToLower(c.LogLevel)]; ok {
		return lvl
	}
	return log.INFO
}
