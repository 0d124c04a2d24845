package httptransport

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"connect4/internal/logging"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v3"
)

func APILogMiddleware() func(http.Handler) http.Handler {
	return httplog.RequestLogger(
		slog.New(slog.NewJSONHandler(logging.Writer(), &slog.HandlerOptions{})),
		&httplog.Options{
			Level:              slog.LevelInfo,
			Schema:             httplog.Schema{ResponseStatus: "status", ResponseDuration: "duration_ms"},
			LogRequestBody:     func(*http.Request) bool { return false },
			LogResponseBody:    func(*http.Request) bool { return false },
			LogRequestHeaders:  []string{},
			LogResponseHeaders: []string{},
			LogExtraAttrs: func(req *http.Request, _ string, status int) []slog.Attr {
				rc := chi.RouteContext(req.Context())
				route := req.URL.Path
				if rc != nil && rc.RoutePattern() != "" {
					route = rc.RoutePattern()
				}
				return []slog.Attr{
					slog.String("request_id", chimw.GetReqID(req.Context())),
					slog.String("method", req.Method),
					slog.String("route", route),
					slog.String("path", req.URL.Path),
					slog.Bool("client_error", status >= 400 && status < 500),
				}
			},
		},
	)
}

// BodyCaptureMiddleware attaches up to maxCaptureBytes of the request and response
// bodies to the request log entry. The handler still sees the full request body.
func BodyCaptureMiddleware(maxCaptureBytes int) func(http.Handler) http.Handler {
	if maxCaptureBytes <= 0 {
		maxCaptureBytes = 4096
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqBody, _ := io.ReadAll(io.LimitReader(r.Body, maxRequestBodyBytes+1))
			_ = r.Body.Close()
			r.Body = io.NopCloser(bytes.NewReader(reqBody))

			reqCap := cappedBuffer{max: maxCaptureBytes}
			_, _ = reqCap.Write(reqBody)
			cw := &captureWriter{ResponseWriter: w, capture: cappedBuffer{max: maxCaptureBytes}}
			next.ServeHTTP(cw, r)

			httplog.SetAttrs(r.Context(),
				slog.Any("request_body", parseMaybeJSON(reqCap.buf.Bytes())),
				slog.Any("response_body", parseMaybeJSON(cw.capture.buf.Bytes())),
				slog.Bool("request_body_truncated", reqCap.truncated),
				slog.Bool("response_body_truncated", cw.capture.truncated),
			)
		})
	}
}

// cappedBuffer keeps the first max bytes written to it.
type cappedBuffer struct {
	buf       bytes.Buffer
	max       int
	truncated bool
}

func (c *cappedBuffer) Write(p []byte) (int, error) {
	remain := c.max - c.buf.Len()
	switch {
	case remain <= 0:
		c.truncated = c.truncated || len(p) > 0
	case len(p) > remain:
		c.buf.Write(p[:remain])
		c.truncated = true
	default:
		c.buf.Write(p)
	}
	return len(p), nil
}

type captureWriter struct {
	http.ResponseWriter
	capture cappedBuffer
}

func (c *captureWriter) Write(p []byte) (int, error) {
	_, _ = c.capture.Write(p)
	return c.ResponseWriter.Write(p)
}

func (c *captureWriter) Flush() {
	if f, ok := c.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func parseMaybeJSON(b []byte) any {
	if len(b) == 0 {
		return ""
	}
	if !json.Valid(b) {
		return string(b)
	}
	return json.RawMessage(append([]byte(nil), b...))
}

type errorResponse struct {
	Error string `json:"error"`
}

func WriteHTTPError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, errorResponse{Error: code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		metricEncodeErrorsTotal.Add(1)
	}
}
