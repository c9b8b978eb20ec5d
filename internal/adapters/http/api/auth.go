package api

import (
	"crypto/subtle"
	"net/http"

	"github.com/inourx99/Englishcompition/pkg/logger"
)

// AdminHeader carries the shared admin passphrase.
const AdminHeader = "X-Admin-Passphrase"

// AdminGate checks the shared passphrase on admin routes.
type AdminGate struct {
	passphrase []byte
	log        logger.Logger
}

// NewAdminGate creates a gate for passphrase. An empty passphrase rejects every request.
func NewAdminGate(passphrase string, log logger.Logger) *AdminGate {
	if log == nil {
		log = logger.Nop()
	}
	return &AdminGate{passphrase: []byte(passphrase), log: log}
}

// Allowed reports whether r carries the exact passphrase.
func (g *AdminGate) Allowed(r *http.Request) bool {
	if len(g.passphrase) == 0 {
		return false
	}
	given := []byte(r.Header.Get(AdminHeader))
	return subtle.ConstantTimeCompare(given, g.passphrase) == 1
}

// Require wraps next so it only runs for admin requests.
func (g *AdminGate) Require(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "api.admin_gate"
		if !g.Allowed(r) {
			g.log.Warn(r.Context(), "admin request rejected",
				logger.String("method", r.Method), logger.String("path", r.URL.Path))
			writeError(w, http.StatusUnauthorized, "unauthorized", NewKind(op, ErrUnauthorized))
			return
		}
		next(w, r)
	}
}

// HandleSession handles POST /admin/session: 204 when the passphrase matches.
func (g *AdminGate) HandleSession(w http.ResponseWriter, r *http.Request) {
	const op = "api.admin_session"
	if !g.Allowed(r) {
		writeError(w, http.StatusUnauthorized, "unauthorized", NewKind(op, ErrUnauthorized))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
