// internal/app/features/accounts/handler.go
package accounts

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	apierrors "github.com/abdeliveries/abdeliveries/internal/app/features/errors"
	"github.com/abdeliveries/abdeliveries/internal/app/system/apperr"
	"github.com/abdeliveries/abdeliveries/internal/app/system/auditlog"
	"github.com/abdeliveries/abdeliveries/internal/app/system/limits"
	"go.uber.org/zap"
)

// Handler serves the /api account endpoints.
type Handler struct {
	Svc      *Service
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

// NewHandler creates a new accounts handler. auditLogger may be nil.
func NewHandler(svc *Service, auditLogger *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Svc:      svc,
		AuditLog: auditLogger,
		Log:      logger,
	}
}

// ServeGetUser handles GET /api/user?phone=.
func (h *Handler) ServeGetUser(w http.ResponseWriter, r *http.Request) {
	out, err := h.Svc.GetUser(r.Context(), r.URL.Query().Get("phone"))
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	writeJSON(w, out)
}

// ServeRegister handles POST /api/register.
func (h *Handler) ServeRegister(w http.ResponseWriter, r *http.Request) {
	var in RegisterInput
	if err := decodeBody(w, r, &in); err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}

	out, err := h.Svc.Register(r.Context(), in)
	if err != nil {
		var conflict *apperr.ConflictError
		if errors.As(err, &conflict) {
			h.AuditLog.RegisterConflict(r.Context(), r, in.Email, in.Phone)
		}
		apierrors.Write(w, r, h.Log, err)
		return
	}

	h.AuditLog.RegisterSuccess(r.Context(), r, out.UserID, in.Email)
	writeJSON(w, out)
}

// ServeLogin handles POST /api/login.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	var in LoginInput
	if err := decodeBody(w, r, &in); err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}

	out, err := h.Svc.Login(r.Context(), in)
	if err != nil {
		var authErr *apperr.AuthenticationError
		if errors.As(err, &authErr) {
			switch authErr.Message {
			case MsgEmailNotFound:
				h.AuditLog.LoginFailedUserNotFound(r.Context(), r, in.Email)
			case MsgIncorrectPassword:
				h.AuditLog.LoginFailedWrongPassword(r.Context(), r, in.Email)
			}
		}
		apierrors.Write(w, r, h.Log, err)
		return
	}

	h.AuditLog.LoginSuccess(r.Context(), r, out.UserID, out.Email)
	writeJSON(w, out)
}

// ServeRegisterToast handles POST /api/register-toast.
func (h *Handler) ServeRegisterToast(w http.ResponseWriter, r *http.Request) {
	var in ToastInput
	if err := decodeBody(w, r, &in); err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}

	out, err := h.Svc.RegisterToast(r.Context(), in)
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	writeJSON(w, out)
}

// decodeBody decodes a single JSON value into dst. Malformed bodies, and
// anything after the value, are validation errors reported as 422 like a
// missing field.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limits.MaxAPIBodySize))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.NewValidationError("request body is required")
		}
		return apperr.NewValidationError("invalid JSON body")
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return apperr.NewValidationError("invalid JSON body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
