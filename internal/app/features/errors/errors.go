// internal/app/features/errors/errors.go
package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/abdeliveries/abdeliveries/internal/app/system/apperr"
	"go.uber.org/zap"
)

// internalMessage is the only detail clients see for untyped failures.
const internalMessage = "internal server error"

// body is the error envelope every failed request returns.
type body struct {
	Detail string `json:"detail"`
}

// WriteDetail writes {"detail": msg} with the given status.
func WriteDetail(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body{Detail: msg})
}

// Write renders err. Errors from apperr carry their own status and message;
// anything else is logged and reported as a bare 500.
func Write(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	var typed apperr.HTTPStatuser
	if stderrors.As(err, &typed) {
		status := typed.HTTPStatus()
		if status >= http.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Error(err))
		}
		WriteDetail(w, status, typed.Error())
		return
	}

	logger.Error("unhandled error",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err))
	WriteDetail(w, http.StatusInternalServerError, internalMessage)
}

// NotFound renders a JSON 404 for unknown routes.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	WriteDetail(w, http.StatusNotFound, "Not Found")
}

// MethodNotAllowed renders a JSON 405.
func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	WriteDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
}
