package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/turtacn/Resonance-Intelligence/pkg/errors"
)

// WriteJSON writes data as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// WriteResult writes a structured result body.
func WriteResult(w http.ResponseWriter, statusCode int, res *errors.Result) {
	WriteJSON(w, statusCode, res)
}

//Personal.AI order the ending
