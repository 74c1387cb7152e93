package postal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// Lookuper resolves a postal code.
type Lookuper interface {
	Lookup(ctx context.Context, cep string) (*Address, error)
}

type errorBody struct {
	Error string `json:"error"`
}

// Handler serves GET /api/cep/{cep}.
func Handler(l Lookuper) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		addr, err := l.Lookup(r.Context(), chi.URLParam(r, "cep"))
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, addr)
		case errors.Is(err, ErrInvalidCEP):
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "CEP inválido. Informe 8 dígitos."})
		case errors.Is(err, ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody{Error: "CEP não encontrado."})
		case errors.Is(err, ErrUnavailable), errors.Is(err, ErrCircuitOpen):
			log.Warn().Err(err).Msg("postal: lookup unavailable")
			writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "Serviço de CEP indisponível. Tente novamente."})
		default:
			log.Error().Err(err).Msg("postal: lookup failed")
			writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Erro ao consultar o CEP."})
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug().Err(err).Msg("postal: write response")
	}
}
