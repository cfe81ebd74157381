package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"

	"github.com/MinhQuan1102/news-website/pkg/auth"
	"github.com/MinhQuan1102/news-website/pkg/logger"
	"github.com/MinhQuan1102/news-website/pkg/storage"
)

type ctxKeyRequestID struct{}

var RequestIDKey = ctxKeyRequestID{}

func (api *API) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-Id")
		if reqID == "" {
			id, err := uuid.NewV4()
			if err != nil {
				log.Errorf("[requestIDMiddleware] failed to generate request id: %v", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			reqID = id.String()
		}

		w.Header().Set("X-Request-Id", reqID)
		ctx := context.WithValue(r.Context(), RequestIDKey, reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (api *API) headerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		// Set CORS headers
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		next.ServeHTTP(w, r)
	})
}

func (api *API) loggingMiddleware(kWriter *kafka.Writer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lw := logger.New(w)
			defer func() {
				go func() {
					entry := LogEntry{
						Timestamp:  time.Now(),
						IP:         getClientIP(r),
						StatusCode: lw.Status(),
						Size:       lw.Size(),
						RequestID:  GetRequestID(r.Context()),
						Method:     r.Method,
						Path:       r.URL.Path,
						Duration:   time.Since(start).Seconds(),
						Service:    api.ServiceName,
					}

					jsonEntry, err := json.Marshal(entry)
					if err != nil {
						log.Errorf("[LoggingMiddleware] failed to marshal log entry for request %s", entry.RequestID)
						return
					}
					ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
					defer cancel()
					err = kWriter.WriteMessages(ctx, kafka.Message{Value: jsonEntry})
					if err != nil {
						log.Errorf("[LoggingMiddleware] failed to write log to Kafka: %v", err)
						return
					}
					log.Debugf("[LoggingMiddleware] log entry sent to Kafka request_id:%s", entry.RequestID)
				}()
			}()

			next.ServeHTTP(lw, r)
		})
	}
}

// authMiddleware verifies the bearer token and resolves its subject to a user
// record, attaching it to the request context. A missing header, a bad or
// expired token and an unknown subject are all rejected with the same status,
// so a caller cannot probe for account existence.
func (api *API) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sID := shorten(GetRequestID(r.Context()))

		tokenStr := extractBearer(r.Header.Get("Authorization"))
		if tokenStr == "" {
			log.Debugf("[authMiddleware][%s] missing bearer token from %v", sID, r.RemoteAddr)
			writeError(w, http.StatusUnauthorized, "Not authorized, no token", nil)
			return
		}

		userID, err := auth.ParseToken(api.secret, tokenStr)
		if err != nil {
			log.Debugf("[authMiddleware][%s] token rejected: %v", sID, err)
			writeError(w, http.StatusUnauthorized, "Not authorized, invalid token", nil)
			return
		}

		user, err := api.DB.User(r.Context(), userID)
		if err != nil {
			// A subject deleted after issuance is denied exactly like a bad
			// signature.
			log.Debugf("[authMiddleware][%s] subject lookup failed: %v", sID, err)
			writeError(w, http.StatusUnauthorized, "Not authorized, invalid token", nil)
			return
		}
		user.Password = ""

		next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
	})
}

// identity returns the authenticated user attached by authMiddleware.
func identity(r *http.Request) (storage.User, bool) {
	u, err := auth.UserFromContext(r.Context())
	return u, err == nil
}

func extractBearer(header string) string {
	parts := strings.Split(header, " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

func getClientIP(r *http.Request) string {
	ip := r.Header.Get("X-Forwarded-For")
	if ip == "" {
		ip = r.RemoteAddr
	}

	return ip
}
