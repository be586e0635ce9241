// internal/transport/rest/handler/respond.go
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	stderrors "yojana-engine/internal/common/errors"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError maps engine error codes onto HTTP statuses and renders the
// structured error body. Unknown errors become a generic 500.
func writeError(w http.ResponseWriter, err error) {
	var stdErr *stderrors.StandardError
	if !errors.As(err, &stdErr) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"code":    "INTERNAL_ERROR",
			"message": "internal error",
		})
		return
	}

	status := http.StatusInternalServerError
	switch stdErr.Code {
	case stderrors.ErrCodeValidation:
		status = http.StatusBadRequest
	case stderrors.ErrCodeSchemeNotFound:
		status = http.StatusNotFound
	case stderrors.ErrCodeCatalogUnavailable:
		status = http.StatusServiceUnavailable
	case stderrors.ErrCodeCatalogValidationFailed, stderrors.ErrCodeDocumentCycleDetected:
		status = http.StatusUnprocessableEntity
	case stderrors.ErrCodeSourceQueryFailed, stderrors.ErrCodeReasoningUnavailable:
		status = http.StatusBadGateway
	case stderrors.ErrCodeReasoningTimeout:
		status = http.StatusGatewayTimeout
	}

	writeJSON(w, status, map[string]interface{}{
		"code":      string(stdErr.Code),
		"message":   stdErr.Message,
		"details":   stdErr.Details,
		"retryable": stderrors.IsRetryableErrorCode(stdErr.Code),
	})
}
