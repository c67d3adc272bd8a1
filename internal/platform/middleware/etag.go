package middleware

import (
	"bytes"
	"crypto/md5"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// bufferedWriter holds the response so its ETag can be computed before
// anything reaches the client.
type bufferedWriter struct {
	http.ResponseWriter
	buf    bytes.Buffer
	status int
}

func (w *bufferedWriter) Write(b []byte) (int, error) { return w.buf.Write(b) }

func (w *bufferedWriter) WriteHeader(code int) { w.status = code }

func (w *bufferedWriter) flush() error {
	w.ResponseWriter.WriteHeader(w.status)
	if w.buf.Len() == 0 {
		return nil
	}
	_, err := w.ResponseWriter.Write(w.buf.Bytes())
	return err
}

// ETag tags successful GET and HEAD responses with a weak ETag and answers
// If-None-Match with 304. Rendered charts only change when a widget is
// regenerated, so repeated polls are cheap for the client.
func ETag() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Method != http.MethodGet && req.Method != http.MethodHead {
				return next(c)
			}

			res := c.Response()
			orig := res.Writer
			bw := &bufferedWriter{ResponseWriter: orig, status: http.StatusOK}
			res.Writer = bw
			err := next(c)
			res.Writer = orig
			if err != nil {
				return err
			}
			if bw.status != http.StatusOK {
				return bw.flush()
			}

			etag := fmt.Sprintf(`W/"%x"`, md5.Sum(bw.buf.Bytes()))
			res.Header().Set("ETag", etag)
			res.Header().Set("Cache-Control", "private, no-cache")
			if match := req.Header.Get("If-None-Match"); match != "" && etagMatch(match, etag) {
				res.Header().Del(echo.HeaderContentLength)
				res.Status = http.StatusNotModified
				orig.WriteHeader(http.StatusNotModified)
				return nil
			}
			return bw.flush()
		}
	}
}

func etagMatch(header, etag string) bool {
	header = strings.TrimSpace(header)
	if header == "*" {
		return true
	}
	want := strings.TrimPrefix(etag, "W/")
	for _, candidate := range strings.Split(header, ",") {
		if strings.TrimPrefix(strings.TrimSpace(candidate), "W/") == want {
			return true
		}
	}
	return false
}
