package core

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

func RequestBody[TRequest any](r *http.Request) (TRequest, error) {
	var request TRequest
	err := json.NewDecoder(r.Body).Decode(&request)
	return request, err
}

func WriteOK(w http.ResponseWriter, r *http.Request, body interface{}) {
	WriteResponse(w, r, http.StatusOK, body)
}

func WriteBadRequest(w http.ResponseWriter, r *http.Request, body interface{}) {
	WriteResponse(w, r, http.StatusBadRequest, body)
}

func WriteUnauthorized(w http.ResponseWriter, r *http.Request, body interface{}) {
	WriteResponse(w, r, http.StatusUnauthorized, body)
}

func WriteInternalServerError(w http.ResponseWriter, r *http.Request, body interface{}) {
	WriteResponse(w, r, http.StatusInternalServerError, body)
}

// WriteError renders a typed outcome: business-rule aborts map onto their
// client-facing status codes, everything else is an opaque 500.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	if abort, ok := AsAbort(err); ok {
		WriteResponse(w, r, abortStatusCode(abort.Reason), abort)
		return
	}

	zap.L().Error("request failed", zap.Error(err))
	WriteResponse(w, r, http.StatusInternalServerError, nil)
}

func abortStatusCode(reason AbortReason) int {
	switch reason {
	case ReasonNotFound:
		return http.StatusNotFound
	case ReasonNotAllowed:
		return http.StatusForbidden
	case ReasonConflict:
		return http.StatusConflict
	case ReasonMalformed:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func WriteResponse(w http.ResponseWriter, r *http.Request, statusCode int, body interface{}) {
	if body != nil {
		w.Header().Set("Content-Type", "application/json")
	}

	w.WriteHeader(statusCode)
	writeBodyIfPresent(w, body)
}

func writeBodyIfPresent(w http.ResponseWriter, body interface{}) {
	if body == nil {
		return
	}

	responseBytes, err := json.Marshal(body)
	if err != nil {
		zap.L().Error("failed to serialize response body", zap.Error(err))
		return
	}

	if _, err := w.Write(responseBytes); err != nil {
		zap.L().Error("failed to write response", zap.Error(err))
	}
}
