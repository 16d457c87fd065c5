// Package handlers provides HTTP handlers for the clinic API.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, message string, code int) {
	writeJSON(w, code, map[string]string{"error": message})
}

// writeCSV serves a CSV payload as a named download.
func writeCSV(w http.ResponseWriter, filename, csv string) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(csv))
}

// confirmed reports whether the request carries the confirm=true flag. Bulk
// deletions are irreversible; the flag stands in for the original
// confirmation dialog.
func confirmed(r *http.Request) bool {
	return r.URL.Query().Get("confirm") == "true"
}

// writeHTML serves a print document.
func writeHTML(w http.ResponseWriter, html string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(html))
}
