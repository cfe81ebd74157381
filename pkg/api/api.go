// Package api wires the HTTP surface of the news backend: routing,
// middleware and the request handlers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"

	"github.com/MinhQuan1102/news-website/pkg/storage"
)

const (
	maxPageSize     = 100
	defaultPageSize = 10
	featuredCount   = 4

	uuidPattern = "[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}"
)

type API struct {
	ServiceName string
	DB          storage.Storage

	r      *mux.Router
	kw     *kafka.Writer
	secret string
}

// New builds the API. The JWT secret is injected here rather than read from
// the environment inside the auth path. kafkaWriter may be nil, which
// disables access-log shipping.
func New(name string, db storage.Storage, secret string, kafkaWriter *kafka.Writer) *API {
	api := API{
		ServiceName: name,
		DB:          db,
		r:           mux.NewRouter(),
		kw:          kafkaWriter,
		secret:      secret,
	}
	api.endpoints()

	return &api
}

func (api *API) Router() *mux.Router {
	return api.r
}

func (api *API) endpoints() {
	api.r.Use(api.requestIDMiddleware)
	api.r.Use(api.headerMiddleware)

	if api.kw != nil {
		api.r.Use(api.loggingMiddleware(api.kw))
	}

	api.r.HandleFunc("/news", api.newsByCategoryHandler).Methods(http.MethodGet)
	api.r.HandleFunc("/news/featured", api.featuredNewsHandler).Methods(http.MethodGet)
	api.r.HandleFunc("/news/category", api.categoriesHandler).Methods(http.MethodGet)
	api.r.HandleFunc("/news/search", api.searchNewsHandler).Methods(http.MethodGet)
	api.r.HandleFunc("/news/user/{id:"+uuidPattern+"$}", api.newsOfUserHandler).Methods(http.MethodGet)
	api.r.HandleFunc("/news/{id:"+uuidPattern+"$}", api.newsDetailedHandler).Methods(http.MethodGet)
	api.r.HandleFunc("/news/{id:"+uuidPattern+"}/view", api.increaseViewHandler).Methods(http.MethodPut)

	api.r.Handle("/news", api.authMiddleware(http.HandlerFunc(api.createNewsHandler))).Methods(http.MethodPost)
	api.r.Handle("/news/{id:"+uuidPattern+"$}", api.authMiddleware(http.HandlerFunc(api.updateNewsHandler))).Methods(http.MethodPut)
	api.r.Handle("/news/{id:"+uuidPattern+"$}", api.authMiddleware(http.HandlerFunc(api.deleteNewsHandler))).Methods(http.MethodDelete)

	api.r.Handle("/news/{newsId:"+uuidPattern+"}/comments", api.authMiddleware(http.HandlerFunc(api.createCommentHandler))).Methods(http.MethodPost)
	api.r.Handle("/comments/{id:"+uuidPattern+"$}", api.authMiddleware(http.HandlerFunc(api.updateCommentHandler))).Methods(http.MethodPut)
	api.r.Handle("/comments/{id:"+uuidPattern+"$}", api.authMiddleware(http.HandlerFunc(api.deleteCommentHandler))).Methods(http.MethodDelete)

	api.r.HandleFunc("/users/profile/{id:"+uuidPattern+"$}", api.userProfileHandler).Methods(http.MethodGet)
	api.r.Handle("/users/{id:"+uuidPattern+"$}", api.authMiddleware(http.HandlerFunc(api.updateUserHandler))).Methods(http.MethodPut)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("[writeJSON] failed to encode response data: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string, err error) {
	resp := errorResponse{Message: msg}
	if err != nil && status == http.StatusInternalServerError {
		resp.Error = err.Error()
	}
	writeJSON(w, status, resp)
}

// pageParams reads page and pageSize query parameters, applying the defaults
// and capping pageSize.
func pageParams(r *http.Request) (page, limit int) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err = strconv.Atoi(r.URL.Query().Get("pageSize"))
	if err != nil || limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	return page, limit
}

func numPages(total, limit int) int {
	return (total + limit - 1) / limit
}

// GetRequestID extracts the request ID from the context.
// It returns the request ID as a string if present, otherwise returns an empty string.
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(RequestIDKey).(string); ok {
		return v
	}
	return ""
}

// shorten truncates a string to 6 characters if it is longer than 6, appends '...' at the end,
// otherwise it returns the string unchanged.
func shorten(s string) string {
	if len(s) > 6 {
		return s[:6] + "..."
	}
	return s
}
