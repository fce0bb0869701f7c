package devserver

import (
	"encoding/json"
	"log"
	"net/http"

	shared "uniforum/shared"
)

// maxBodyBytes caps request bodies; forum payloads are small.
const maxBodyBytes = 1 << 20

// detailBody is how the forum backend reports errors that aren't tied to a
// form field.
type detailBody struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error writing %d response: %v\n", status, err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	if status >= http.StatusInternalServerError {
		log.Printf("Dev server error: %s\n", msg)
	}
	writeJSON(w, status, detailBody{Detail: msg})
}

// writeValidationError answers 400 with messages keyed by the offending
// field, e.g. {"password": ["..."]}.
func writeValidationError(w http.ResponseWriter, field string, apiErr *shared.ApiError) {
	writeJSON(w, http.StatusBadRequest, map[string][]string{field: {apiErr.Msg}})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		log.Printf("Bad %s %s body: %v\n", r.Method, r.URL.Path, err)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
