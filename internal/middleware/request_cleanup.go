package middleware

import (
	"io"
	"net/http"
)

// maxDrainBytes caps how much of an unread body is consumed so the connection can be reused.
// Larger leftovers are just closed, which drops the keep-alive connection.
const maxDrainBytes = 256 << 10

// DrainAndCloseRequest consumes what the handler left unread from the request body and closes it.
func DrainAndCloseRequest() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)
			drainBody(r.Body)
		})
	}
}

func drainBody(body io.ReadCloser) int64 {
	if body == nil || body == http.NoBody {
		return 0
	}
	drained, _ := io.CopyN(io.Discard, body, maxDrainBytes)
	_ = body.Close()
	return drained
}
