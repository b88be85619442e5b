package httpmw

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

// WithLogging logs non-200 responses with the client ip attached, and makes
// the ip available to downstream middleware via ContextIPAddress.
func WithLogging(h http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		clientIP, err := extractClientIP(r)
		if err != nil {
			log.Warn().Err(err).Msg("can't extract client ip")
			clientIP = ""
		}

		r = r.WithContext(context.WithValue(r.Context(), ContextIPAddress, clientIP))

		loggedRW := &responseWriterLogger{ResponseWriter: rw}
		h.ServeHTTP(loggedRW, r)

		if loggedRW.statusCode != 0 && loggedRW.statusCode != http.StatusOK {
			log.Ctx(r.Context()).
				Warn().
				Int("statusCode", loggedRW.statusCode).
				Str("clientIP", clientIP).
				Str("path", r.URL.Path).
				Msg("non-200 status code response")
		}
	})
}

type responseWriterLogger struct {
	http.ResponseWriter
	statusCode int
}

func (r *responseWriterLogger) WriteHeader(statusCode int) {
	r.ResponseWriter.WriteHeader(statusCode)
	r.statusCode = statusCode
}

// extractClientIP prefers a load balancer's X-Forwarded-For header over the
// raw connection address.
func extractClientIP(r *http.Request) (string, error) {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.Split(xff, ",")[0], nil
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "", err
	}
	return ip, nil
}
