package handlers

import (
	"net/http"

	"github.com/veritum/veritum-pro/internal/database"
)

// Schema serves the tenant-setup SQL script exactly as bundled. The script
// is the whole contract for self-hosted databases; no rendering, no
// templating.
func Schema(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(database.TenantSchema()))
}
