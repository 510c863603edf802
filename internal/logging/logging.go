package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"tricktable/internal/config"
)

var (
	writerMu sync.Mutex
	writer   io.Writer = os.Stdout
)

// Init configures the global zerolog logger. When cfg.File is set, log
// output goes to a size-capped file instead of stdout.
func Init(cfg config.LogConfig) {
	level := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level))); err == nil && cfg.Level != "" {
		level = parsed
	}

	out := io.Writer(os.Stdout)
	if cfg.File != "" {
		if fw, err := newCappedFileWriter(cfg.File, cfg.FileMaxMB); err == nil {
			out = fw
		}
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out}
	}

	writerMu.Lock()
	writer = out
	writerMu.Unlock()

	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(out).With().Timestamp().Logger()
	if cfg.SampleEvery > 1 {
		logger = logger.Sample(&zerolog.BasicSampler{N: uint32(cfg.SampleEvery)})
	}
	log.Logger = logger
}

// Writer returns the sink selected by Init, for components (HTTP request
// logging) that write through their own logger.
func Writer() io.Writer {
	writerMu.Lock()
	defer writerMu.Unlock()
	return writer
}
