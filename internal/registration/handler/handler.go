package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"farmgate/internal/platform/middleware"
	"farmgate/internal/registration/materializer"
	"farmgate/internal/registration/models"
	"farmgate/internal/registration/service"
	"farmgate/internal/registration/validation"
	dErrors "farmgate/pkg/domain-errors"
	"farmgate/pkg/platform/httputil"
)

// Service defines the provisional registration operations.
type Service interface {
	Create(ctx context.Context, form validation.SignupForm) (*models.ProvisionalRegistration, error)
	Status(ctx context.Context, tempID string) (*service.Status, error)
	SendOTP(ctx context.Context, tempID string) error
	Account(ctx context.Context, accountID string) (*models.Account, error)
}

// Materializer creates accounts from completed registrations.
type Materializer interface {
	Materialize(ctx context.Context, tempID string, otp models.OTPConfirmation) (*models.Completion, error)
	RetryProfile(ctx context.Context, tempID, identityUID string) (*models.Completion, error)
}

// Handler handles registration and account endpoints.
type Handler struct {
	logger       *slog.Logger
	registration Service
	materializer Materializer
	jwtValidator middleware.JWTValidator
}

func New(registration Service, materializer Materializer, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		registration: registration,
		materializer: materializer,
		jwtValidator: jwtValidator,
	}
}

// Register registers the registration routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/register", h.handleCreate)
	r.Get("/api/register/{tempId}", h.handleStatus)
	r.Post("/api/register/{tempId}/otp", h.handleSendOTP)
	r.Post("/api/register/{tempId}/complete", h.handleComplete)
	r.Post("/api/register/{tempId}/retry-profile", h.handleRetryProfile)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		r.Get("/api/accounts/me", h.handleMe)
	})
}

type createResponse struct {
	Success   bool      `json:"success"`
	TempID    string    `json:"tempId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type completeRequest struct {
	Code string `json:"code"`
}

type retryRequest struct {
	IdentityUID string `json:"identityUid"`
}

type completeResponse struct {
	Success     bool            `json:"success"`
	Account     *models.Account `json:"account"`
	AccessToken string          `json:"accessToken"`
	ExpiresAt   time.Time       `json:"expiresAt"`
}

type failureResponse struct {
	Success     bool                    `json:"success"`
	Error       string                  `json:"error"`
	ErrorCode   string                  `json:"errorCode"`
	Details     []validation.FieldError `json:"details,omitempty"`
	IdentityUID string                  `json:"identityUid,omitempty"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var form validation.SignupForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		h.logger.WarnContext(ctx, "invalid registration request",
			"request_id", requestID,
			"error", err,
		)
		h.writeFailure(ctx, w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	reg, err := h.registration.Create(ctx, form)
	if err != nil {
		h.writeFailure(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, createResponse{Success: true, TempID: reg.TempID, ExpiresAt: reg.ExpiresAt})
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.registration.Status(r.Context(), chi.URLParam(r, "tempId"))
	if err != nil {
		h.writeFailure(r.Context(), w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, status)
}

func (h *Handler) handleSendOTP(w http.ResponseWriter, r *http.Request) {
	if err := h.registration.SendOTP(r.Context(), chi.URLParam(r, "tempId")); err != nil {
		h.writeFailure(r.Context(), w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, map[string]bool{"success": true})
}

func (h *Handler) handleComplete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req completeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeFailure(ctx, w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	completion, err := h.materializer.Materialize(ctx, chi.URLParam(r, "tempId"), models.OTPConfirmation{Code: req.Code})
	if err != nil {
		h.writeFailure(ctx, w, err)
		return
	}
	h.writeCompletion(w, completion)
}

func (h *Handler) handleRetryProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req retryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IdentityUID == "" {
		h.writeFailure(ctx, w, dErrors.New(dErrors.CodeBadRequest, "identityUid is required"))
		return
	}

	completion, err := h.materializer.RetryProfile(ctx, chi.URLParam(r, "tempId"), req.IdentityUID)
	if err != nil {
		h.writeFailure(ctx, w, err)
		return
	}
	h.writeCompletion(w, completion)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID := middleware.GetAccountID(ctx)
	if accountID == "" {
		h.logger.ErrorContext(ctx, "accountID missing from context despite auth middleware",
			"request_id", middleware.GetRequestID(ctx),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	account, err := h.registration.Account(ctx, accountID)
	if err != nil {
		h.writeFailure(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, account)
}

func (h *Handler) writeCompletion(w http.ResponseWriter, c *models.Completion) {
	httputil.WriteJSON(w, http.StatusCreated, completeResponse{
		Success:     true,
		Account:     c.Account,
		AccessToken: c.AccessToken,
		ExpiresAt:   c.ExpiresAt,
	})
}

func (h *Handler) writeFailure(ctx context.Context, w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	resp := failureResponse{ErrorCode: string(code), Error: "request could not be completed"}
	if de, ok := dErrors.As(err); ok && code != dErrors.CodeInternal {
		resp.Error = de.Message
	}
	resp.Details = validation.Details(err)
	if uid, ok := materializer.PartialIdentity(err); ok {
		resp.IdentityUID = uid
	}
	if code == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, "registration request failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
	}
	httputil.WriteJSON(w, httputil.StatusFor(code), resp)
}
