// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"

	"github.com/rifflock/lfshook"
	log "github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls console verbosity and the optional rotating JSON log file.
type Options struct {
	Debug      bool
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup installs the console formatter on logger and, when File is set,
// a hook mirroring every entry as JSON into a size-rotated file.
// The returned closer flushes the file writer.
func Setup(logger *log.Logger, opts Options) io.Closer {
	logger.SetFormatter(&prefixed.TextFormatter{FullTimestamp: true})
	logger.SetLevel(log.InfoLevel)
	if opts.Debug {
		logger.SetLevel(log.DebugLevel)
	}

	if opts.File == "" {
		return nopCloser{}
	}

	writer := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   true,
	}
	logger.AddHook(lfshook.NewHook(
		lfshook.WriterMap{
			log.DebugLevel: writer,
			log.InfoLevel:  writer,
			log.WarnLevel:  writer,
			log.ErrorLevel: writer,
			log.FatalLevel: writer,
			log.PanicLevel: writer,
		},
		&log.JSONFormatter{},
	))
	return writer
}
