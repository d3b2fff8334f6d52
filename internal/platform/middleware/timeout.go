package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

const timeoutMessage = "request processing exceeded the allowed time limit"

// timeoutWriter buffers the handler's response so nothing reaches the client
// until the handler finishes inside the deadline. After a timeout every write
// is dropped.
type timeoutWriter struct {
	mu       sync.Mutex
	header   http.Header
	buf      bytes.Buffer
	code     int
	timedOut bool
}

func (tw *timeoutWriter) Header() http.Header {
	return tw.header
}

func (tw *timeoutWriter) WriteHeader(code int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut || tw.code != 0 {
		return
	}
	tw.code = code
}

func (tw *timeoutWriter) Write(p []byte) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut {
		return 0, http.ErrHandlerTimeout
	}
	if tw.code == 0 {
		tw.code = http.StatusOK
	}
	return tw.buf.Write(p)
}

// flushTo copies the buffered response to w.
func (tw *timeoutWriter) flushTo(w http.ResponseWriter) error {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	dst := w.Header()
	for k, v := range tw.header {
		dst[k] = v
	}
	if tw.code == 0 {
		return nil
	}
	w.WriteHeader(tw.code)
	_, err := w.Write(tw.buf.Bytes())
	return err
}

// RequestTimeout puts a deadline on the request context. When the handler
// has not finished by then, whatever it buffered is discarded and a 504 with
// an {"error": ...} body is written. The middleware still waits for the
// handler to return before it does, so the context is never used after the
// request completes. A non-positive timeout disables the middleware.
func RequestTimeout(timeout time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if timeout <= 0 {
			return next
		}
		return func(c echo.Context) error {
			ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
			defer cancel()

			c.SetRequest(c.Request().WithContext(ctx))

			res := c.Response()
			orig := res.Writer
			tw := &timeoutWriter{header: orig.Header().Clone()}
			res.Writer = tw

			done := make(chan error, 1)
			go func() {
				defer func() {
					if r := recover(); r != nil {
						done <- fmt.Errorf("panic: %v", r)
					}
				}()
				done <- next(c)
			}()

			select {
			case err := <-done:
				res.Writer = orig
				if ferr := tw.flushTo(orig); ferr != nil {
					return ferr
				}
				return err
			case <-ctx.Done():
				tw.mu.Lock()
				tw.timedOut = true
				var size int
				if errors.Is(ctx.Err(), context.DeadlineExceeded) {
					size = writeGatewayTimeout(orig)
				}
				tw.mu.Unlock()

				<-done
				res.Writer = orig
				if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
					// Client went away.
					return ctx.Err()
				}
				res.Status = http.StatusGatewayTimeout
				res.Committed = true
				res.Size = int64(size)
				return nil
			}
		}
	}
}

// writeGatewayTimeout writes the 504 body to w directly and flushes it so the
// client sees it while the handler winds down.
func writeGatewayTimeout(w http.ResponseWriter) int {
	body, _ := json.Marshal(map[string]string{"error": timeoutMessage})
	body = append(body, '\n')
	w.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSONCharsetUTF8)
	w.WriteHeader(http.StatusGatewayTimeout)
	n, _ := w.Write(body)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	return n
}
