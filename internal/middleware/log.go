package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	chiMiddleware "github.com/go-chi/chi/middleware"
	"go.uber.org/zap"
)

const maxLoggedBody = 4 << 10

var redactedFields = []string{"password"}

// loggableBody masks credentials in JSON bodies and hides encoded payloads.
func loggableBody(r *http.Request, body []byte) []byte {
	if len(body) == 0 {
		return body
	}
	if r.Header.Get("Content-Encoding") != "" {
		return []byte("<encoded>")
	}
	if len(body) > maxLoggedBody {
		return []byte("<truncated>")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return body
	}

	redacted := false
	for _, name := range redactedFields {
		if _, ok := fields[name]; ok {
			fields[name] = json.RawMessage(`"***"`)
			redacted = true
		}
	}
	if !redacted {
		return body
	}

	masked, err := json.Marshal(fields)
	if err != nil {
		return []byte("<redacted>")
	}
	return masked
}

func LogMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			var body []byte
			if r.Body != nil {
				data, err := io.ReadAll(io.LimitReader(r.Body, maxLoggedBody+1))
				if err != nil {
					logger.Errorf("read request body: %v", err)
				}
				body = data
				r.Body = struct {
					io.Reader
					io.Closer
				}{io.MultiReader(bytes.NewReader(data), r.Body), r.Body}
			}
			body = loggableBody(r, body)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			logger.Infof("request_id=%s method=%s uri=%s status=%d size=%d duration=%s body=%s outputheaders=%v",
				chiMiddleware.GetReqID(r.Context()),
				r.Method,
				r.RequestURI,
				status,
				ww.BytesWritten(),
				time.Since(start),
				body,
				ww.Header(),
			)
		})
	}
}
