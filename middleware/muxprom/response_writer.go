package muxprom

import "net/http"

// statusResponseWriter records the status code and body size passing
// through it so the middleware can label its samples after the handler
// returns.
type statusResponseWriter struct {
	http.ResponseWriter
	wroteHeader bool
	status      int
	size        int
}

func (s *statusResponseWriter) WriteHeader(status int) {
	if !s.wroteHeader {
		s.wroteHeader = true
		s.status = status
	}
	s.ResponseWriter.WriteHeader(status)
}

func (s *statusResponseWriter) Write(b []byte) (int, error) {
	if !s.wroteHeader {
		s.wroteHeader = true
		s.status = http.StatusOK
	}
	n, err := s.ResponseWriter.Write(b)
	s.size += n
	return n, err
}

// Flush keeps streaming handlers working behind the middleware.
func (s *statusResponseWriter) Flush() {
	if f, ok := s.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
