package envutil

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/coco-backend/internal/platform/logger"
)

// String returns the trimmed value of name, or def when unset or blank.
func String(name string, def string, log *logger.Logger) string {
	v, ok := lookup(name)
	if !ok {
		debugDefault(log, name, def)
		return def
	}
	return v
}

func Int(name string, def int, log *logger.Logger) int {
	v, ok := lookup(name)
	if !ok {
		debugDefault(log, name, def)
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		if log != nil {
			log.Debug("Environment variable could not be parsed as int, using default", "env_var", name, "providedVal", v, "defaultVal", def, "error", err)
		}
		return def
	}
	return i
}

func Float(name string, def float64, log *logger.Logger) float64 {
	v, ok := lookup(name)
	if !ok {
		debugDefault(log, name, def)
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		if log != nil {
			log.Debug("Environment variable could not be parsed as float, using default", "env_var", name, "providedVal", v, "defaultVal", def, "error", err)
		}
		return def
	}
	return f
}

func Bool(name string, def bool, log *logger.Logger) bool {
	v, ok := lookup(name)
	if !ok {
		debugDefault(log, name, def)
		return def
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}

// Seconds reads an integer number of seconds; non-positive values fall back to def.
func Seconds(name string, def time.Duration, log *logger.Logger) time.Duration {
	n := Int(name, int(def/time.Second), log)
	if n <= 0 {
		return def
	}
	return time.Duration(n) * time.Second
}

// List splits a comma separated value, dropping blanks.
func List(name string, def []string, log *logger.Logger) []string {
	v, ok := lookup(name)
	if !ok {
		debugDefault(log, name, def)
		return def
	}
	out := make([]string, 0, 4)
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func debugDefault(log *logger.Logger, name string, def any) {
	if log != nil {
		log.Debug("Environment variable not found, using default", "env_var", name, "default", def)
	}
}
