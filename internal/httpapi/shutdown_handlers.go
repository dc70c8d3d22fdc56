package httpapi

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net"
	"net/http"
)

// ShutdownHandler lets a local supervisor stop the engine.
type ShutdownHandler struct {
	Token string
	Stop  func()
}

func (h ShutdownHandler) Shutdown(w http.ResponseWriter, r *http.Request) {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if host != "127.0.0.1" && host != "::1" && host != "localhost" {
		WriteError(w, r, http.StatusForbidden, "forbidden", "forbidden")
		return
	}

	got := r.Header.Get("X-Shutdown-Token")
	if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(h.Token)) != 1 {
		WriteError(w, r, http.StatusUnauthorized, "unauthorized", "unauthorized")
		return
	}

	WriteJSON(w, http.StatusAccepted, map[string]any{"ok": true})
	go h.Stop()
}

// RandomToken returns n random bytes hex encoded.
func RandomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
