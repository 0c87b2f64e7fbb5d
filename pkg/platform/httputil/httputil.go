// Package httputil holds small helpers for writing JSON responses.
package httputil

import (
	"encoding/json"
	"net/http"
	"strconv"

	dErrors "usergate/pkg/domain-errors"
)

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates err into the error envelope and writes it. Faults are
// rendered with the generic public message only.
func WriteError(w http.ResponseWriter, err error) {
	tr := dErrors.Translate(err)
	if tr.Err.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(tr.Err.RetryAfter))
	}
	WriteJSON(w, tr.Status, tr.Envelope)
}
