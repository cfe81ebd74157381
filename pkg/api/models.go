package api

import (
	"time"

	"github.com/MinhQuan1102/news-website/pkg/storage"
)

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

type listResponse struct {
	Message     string `json:"message"`
	CurrentPage int    `json:"currentPage"`
	TotalPages  int    `json:"totalPages"`
	TotalItems  int    `json:"totalItems"`
	Data        any    `json:"data"`
}

type dataResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
}

type newsResponse struct {
	Message string       `json:"message"`
	News    storage.News `json:"news"`
}

type commentResponse struct {
	Message string                  `json:"message"`
	Comment storage.CommentDetailed `json:"comment"`
}

type viewsResponse struct {
	Message string `json:"message"`
	Views   int64  `json:"views"`
}

type LogEntry struct {
	Timestamp  time.Time `json:"timestamp"`
	IP         string    `json:"ip"`
	StatusCode int       `json:"status_code"`
	Size       int       `json:"size"`
	RequestID  string    `json:"request_id"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	Duration   float64   `json:"duration_sec"`
	Service    string    `json:"service"`
}
