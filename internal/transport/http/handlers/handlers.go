package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pribylovaa/go-menu-platform/internal/config"
	"github.com/pribylovaa/go-menu-platform/internal/service"
)

// Handlers агрегирует зависимости HTTP-хендлеров.
type Handlers struct {
	Service *service.Service
	MailCfg config.MailConfig
}

func New(svc *service.Service, mailCfg config.MailConfig) *Handlers {
	return &Handlers{Service: svc, MailCfg: mailCfg}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через httperr.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}

// pathID извлекает UUID из именованного параметра пути.
func pathID(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, name))
}
