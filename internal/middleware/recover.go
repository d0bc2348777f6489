package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/wallspace/wallspace-api/internal/pkg/errorhandler"
)

// Recover turns panics into 500 responses and logs the stack
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				if err == http.ErrAbortHandler {
					panic(err)
				}
				errorhandler.HandlePanicError(r.Context(), w, r, err, string(debug.Stack()))
			}
		}()

		next.ServeHTTP(w, r)
	})
}
