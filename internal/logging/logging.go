package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"connect4/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	writerMu sync.RWMutex
	writer   io.Writer = os.Stdout
	fileSink *cappedFile
)

// Init configures the global zerolog logger and the shared writer returned by Writer.
func Init(cfg config.LogConfig) error {
	level := zerolog.InfoLevel
	if v := strings.TrimSpace(cfg.Level); v != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(v)); err == nil {
			level = parsed
		}
	}

	var out io.Writer = os.Stdout
	var sink *cappedFile
	if path := strings.TrimSpace(cfg.File); path != "" {
		f, err := openCappedFile(path, cfg.MaxMB)
		if err != nil {
			return err
		}
		sink = f
		out = io.MultiWriter(os.Stdout, f)
	}

	console := out
	if cfg.Pretty {
		console = zerolog.ConsoleWriter{Out: out}
	}

	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(console).With().Timestamp().Logger()
	if cfg.SampleEvery > 1 {
		logger = logger.Sample(&zerolog.BasicSampler{N: uint32(cfg.SampleEvery)})
	}
	log.Logger = logger

	writerMu.Lock()
	prev := fileSink
	writer = out
	fileSink = sink
	writerMu.Unlock()
	if prev != nil {
		_ = prev.Close()
	}
	return nil
}

// Writer is the raw sink behind the global logger, shared with the HTTP request logger.
func Writer() io.Writer {
	writerMu.RLock()
	defer writerMu.RUnlock()
	return writer
}

// Close releases the log file opened by Init, if any.
func Close() error {
	writerMu.Lock()
	sink := fileSink
	fileSink = nil
	writer = os.Stdout
	writerMu.Unlock()
	if sink == nil {
		return nil
	}
	return sink.Close()
}
