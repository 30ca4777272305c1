package log

import (
	"io"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// Logger is the process-wide structured logger. Setup replaces it once the
// log file destination is known; the zero-config default writes to stdout.
var Logger = zerolog.New(os.Stdout).With().Timestamp().Str("service", "stocklock").Logger()

// Setup points the logger at stdout plus an optional append-only log file.
func Setup(logFile string) {
	zerolog.TimeFieldFormat = time.RFC3339
	var w io.Writer = os.Stdout
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			Logger.Warn().Err(err).Str("path", logFile).Msg("could not open log file")
		} else {
			w = io.MultiWriter(os.Stdout, f)
		}
	}
	Logger = zerolog.New(w).With().Timestamp().Str("service", "stocklock").Logger()
}

func write(ev *zerolog.Event, c *fiber.Ctx, action string, err error, fields map[string]any) {
	ev = ev.Str("action", action)
	if c != nil {
		ev = ev.Str("ip", c.IP()).Str("method", c.Method()).Str("path", c.Path()).
			Int("status", c.Response().StatusCode())
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			ev = ev.Str("req_id", rid)
		}
	}
	if err != nil {
		ev = ev.Err(err)
	}
	if len(fields) > 0 {
		ev = ev.Fields(fields)
	}
	ev.Send()
}

func Info(c *fiber.Ctx, action string, fields map[string]any) {
	write(Logger.Info(), c, action, nil, fields)
}

func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	write(Logger.Info().Str("kind", "audit"), c, action, nil, fields)
}

func Security(c *fiber.Ctx, action string, fields map[string]any) {
	write(Logger.Warn(), c, action, nil, fields)
}

func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	write(Logger.Error(), c, action, err, fields)
}
