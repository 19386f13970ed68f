package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mateusmacedo/go-reservas/pkg/application"
	"github.com/mateusmacedo/go-reservas/pkg/domain"
)

// JSON escreve v como corpo da resposta com o status informado.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// Message é o corpo {"message": ...} usado nas exclusões.
func Message(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"message": message})
}

// StatusFor devolve o status HTTP de cada tipo de erro.
func StatusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusUnprocessableEntity
	case domain.KindUnauthenticated:
		return http.StatusUnauthorized
	case domain.KindPermissionDenied:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindInvalidOperation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error traduz err para a resposta HTTP. Erros internos são registrados com a causa
// e o cliente recebe apenas uma mensagem genérica.
func Error(w http.ResponseWriter, r *http.Request, logger application.AppLogger, err error) {
	var appErr *domain.Error
	if !errors.As(err, &appErr) {
		appErr = domain.NewInternalError(err)
	}

	status := StatusFor(appErr.Kind)
	if appErr.Kind == domain.KindInternal {
		application.LogError(r.Context(), logger, "request failed", err, map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
		})
		JSON(w, status, map[string]string{"error": domain.NewInternalError(nil).Message})
		return
	}

	body := map[string]interface{}{"error": appErr.Message}
	if appErr.Kind == domain.KindValidation && len(appErr.Fields) > 0 {
		body["messages"] = appErr.Fields
	}
	JSON(w, status, body)
}
