package middleware

import (
	"net/http"

	"github.com/turtacn/Resonance-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Resonance-Intelligence/pkg/errors"
)

// Recover turns a handler panic into a structured 500 response. The panic
// value is logged, never returned to the caller.
func Recover(logger logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var res *errors.Result
			defer func() {
				if res == nil {
					return
				}
				logger.Error("handler panicked",
					logging.String("method", r.Method),
					logging.String("path", r.URL.Path),
					logging.String("panic", res.Message))
				res.Message = errors.DefaultMessageForCode(errors.ErrCodeInternal)
				WriteResult(w, http.StatusInternalServerError, res)
			}()
			defer errors.Recover(&res)
			next.ServeHTTP(w, r)
		})
	}
}

//Personal.AI order the ending
