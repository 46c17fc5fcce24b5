package calculation

import "github.com/rs/zerolog"

// ZerologLogger adapts a zerolog.Logger to the calculation package's
// minimal Logger interface, keeping the core calculation code ignorant of
// which concrete logging library the CLI wires in.
type ZerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger wraps an existing zerolog.Logger.
func NewZerologLogger(l zerolog.Logger) ZerologLogger {
	return ZerologLogger{log: l}
}

func (z ZerologLogger) Debugf(format string, args ...any) { z.log.Debug().Msgf(format, args...) }
func (z ZerologLogger) Infof(format string, args ...any)  { z.log.Info().Msgf(format, args...) }
func (z ZerologLogger) Warnf(format string, args ...any)  { z.log.Warn().Msgf(format, args...) }
func (z ZerologLogger) Errorf(format string, args ...any) { z.log.Error().Msgf(format, args...) }
