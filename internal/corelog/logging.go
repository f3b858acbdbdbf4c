// Package corelog is the transpiler's structured logger: a thin,
// singleton wrapper over charmbracelet/log re-themed for this project.
package corelog

import (
	"os"
	"sync"

	"github.com/charmbracelet/log"
)

var once sync.Once
var singleton *log.Logger

func get() *log.Logger {
	once.Do(func() {
		singleton = log.NewWithOptions(os.Stderr, log.Options{
			ReportCaller:    false,
			ReportTimestamp: true,
			Prefix:          "d3d9->spirv ",
		})
		singleton.SetLevel(log.InfoLevel)
	})
	return singleton
}

// New returns a child logger carrying the given key/value pair on every
// subsequent entry, e.g. corelog.New("stage", "pixel").
func New(key string, value any) *log.Logger {
	return get().With(key, value)
}

func Debug(msg string, args ...any) { get().Debug(msg, args...) }
func Info(msg string, args ...any)  { get().Info(msg, args...) }
func Warn(msg string, args ...any)  { get().Warn(msg, args...) }
func Error(msg string, args ...any) { get().Error(msg, args...) }

// SetLevel adjusts the shared logger's verbosity, e.g. from a CLI -v flag.
func SetLevel(level log.Level) {
	get().SetLevel(level)
}
