package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/turtacn/Resonance-Intelligence/internal/interfaces/http/middleware"
	"github.com/turtacn/Resonance-Intelligence/pkg/errors"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	middleware.WriteJSON(w, statusCode, data)
}

// writeError maps err to its HTTP status and writes the structured result.
// Internal failures are masked.
func writeError(w http.ResponseWriter, err error) {
	res := errors.ToResult(err)
	status := errors.HTTPStatusForCode(res.Code)
	if status == http.StatusOK {
		// Warnings travel as errors from a few services; they are not failures.
		res.Status = errors.StatusWarning
	}
	if res.Code == errors.ErrCodeInternal {
		res.Message = errors.DefaultMessageForCode(errors.ErrCodeInternal)
	}
	middleware.WriteResult(w, status, res)
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && err != io.EOF {
		var ae *errors.AppError
		if errors.As(err, &ae) {
			return ae
		}
		return errors.Wrap(err, errors.ErrCodeBadRequest, "invalid request body: "+err.Error())
	}
	return nil
}

// queryInt parses an integer query parameter, falling back to def.
func queryInt(r *http.Request, name string, def int) int {
	if v := r.URL.Query().Get(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

//Personal.AI order the ending
