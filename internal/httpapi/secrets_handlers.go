package httpapi

import (
	"encoding/json"
	"net/http"

	"leadhunt-engine/internal/secrets"
)

type SecretsHandler struct{}

type setSearchKeyReq struct {
	Key string `json:"key"`
}

func (h SecretsHandler) SetSearchKey(w http.ResponseWriter, r *http.Request) {
	var req setSearchKeyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if err := secrets.SetSearchAPIKey(req.Key); err != nil {
		WriteError(w, r, http.StatusBadRequest, "keychain", "failed to store key: "+err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h SecretsHandler) DeleteSearchKey(w http.ResponseWriter, r *http.Request) {
	if err := secrets.DeleteSearchAPIKey(); err != nil {
		WriteErr(w, r, http.StatusInternalServerError, "keychain", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
