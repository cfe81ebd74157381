package logger

import "net/http"

// ResponseLogger wraps an http.ResponseWriter and records the status code and
// the number of bytes written, for the access-log middleware.
type ResponseLogger struct {
	w      http.ResponseWriter
	status int
	size   int
}

func New(w http.ResponseWriter) *ResponseLogger {
	return &ResponseLogger{w, http.StatusOK, 0}
}

func (l *ResponseLogger) WriteHeader(code int) {
	l.status = code
	l.w.WriteHeader(code)
}

func (l *ResponseLogger) Write(b []byte) (int, error) {
	n, err := l.w.Write(b)
	l.size += n
	return n, err
}

func (l *ResponseLogger) Header() http.Header {
	return l.w.Header()
}

func (l *ResponseLogger) Status() int {
	return l.status
}

func (l *ResponseLogger) Size() int {
	return l.size
}
