package middleware

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel/trace"
)

// Logger logs each HTTP request as one JSON object on stdout.
// Fields: ts, request_id (set by the RequestID middleware), method, path,
// status, latency (milliseconds), and trace_id when a span is recording.
func Logger(loc *time.Location) fiber.Handler {
	return LoggerWithWriter(os.Stdout, loc)
}

// LoggerWithWriter is Logger with an explicit output, used by tests.
func LoggerWithWriter(w io.Writer, loc *time.Location) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		// Collect fields after the handler executed to capture the final status.
		rid, _ := c.Locals(RequestIDLocalKey).(string)
		entry := map[string]any{
			"ts":         time.Now().In(loc).Format(time.RFC3339Nano),
			"request_id": rid,
			"method":     c.Method(),
			"path":       c.Path(), // path segment only, no query string
			"status":     c.Response().StatusCode(),
			"latency":    float64(time.Since(start).Milliseconds()),
		}
		if sc := trace.SpanContextFromContext(c.UserContext()); sc.HasTraceID() {
			entry["trace_id"] = sc.TraceID().String()
		}

		// Encode to a local buffer so concurrent requests each issue a single
		// Write; entries from parallel handlers cannot interleave.
		line, mErr := json.Marshal(entry)
		if mErr == nil {
			_, _ = w.Write(append(line, '\n'))
		}

		return err
	}
}
