package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"farmgate/internal/platform/middleware"
	"farmgate/internal/verification/models"
	"farmgate/internal/verification/service"
	dErrors "farmgate/pkg/domain-errors"
	"farmgate/pkg/platform/httputil"
)

const (
	DefaultMaxUploadBytes int64 = 10 << 20

	maxIDNumberLength = 32
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// Service runs a verification attempt.
type Service interface {
	Verify(ctx context.Context, in service.Input) (*service.Result, error)
}

// Handler serves the farmer ID verification endpoint.
type Handler struct {
	logger         *slog.Logger
	verification   Service
	maxUploadBytes int64
}

// New creates a verification Handler. maxUploadBytes bounds each image.
func New(verification Service, logger *slog.Logger, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &Handler{
		logger:         logger,
		verification:   verification,
		maxUploadBytes: maxUploadBytes,
	}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/api/verify-farmer-id", h.handleVerify)
}

// VerificationDetails is the outcome section of the response.
type VerificationDetails struct {
	IDData         models.ExtractedIDData `json:"idData"`
	FaceMatch      models.FaceMatchResult `json:"faceMatch"`
	NameMatches    bool                   `json:"nameMatches"`
	State          models.State           `json:"state"`
	Reason         string                 `json:"reason,omitempty"`
	ExtractedName  string                 `json:"extractedName,omitempty"`
	RegisteredName string                 `json:"registeredName,omitempty"`
}

type VerifyResponse struct {
	Success           bool                 `json:"success"`
	Verified          bool                 `json:"verified"`
	Verification      *VerificationDetails `json:"verification,omitempty"`
	IDCardURL         string               `json:"idCardUrl,omitempty"`
	SelfieURL         string               `json:"selfieUrl,omitempty"`
	AttemptsRemaining int                  `json:"attemptsRemaining"`
	RestartRequired   bool                 `json:"restartRequired,omitempty"`
	Error             string               `json:"error,omitempty"`
	ErrorCode         string               `json:"errorCode,omitempty"`
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	in, err := h.parseForm(w, r)
	if err != nil {
		h.logger.WarnContext(ctx, "invalid verification upload",
			"request_id", requestID,
			"error", err,
		)
		h.writeFailure(w, err)
		return
	}

	result, err := h.verification.Verify(ctx, in)
	if err != nil {
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			h.logger.ErrorContext(ctx, "verification failed",
				"request_id", requestID,
				"temp_id", in.TempID,
				"error", err,
			)
		}
		h.writeFailure(w, err)
		return
	}

	outcome := result.Outcome
	resp := VerifyResponse{
		Success:  outcome.Verified,
		Verified: outcome.Verified,
		Verification: &VerificationDetails{
			IDData:         outcome.IDData,
			FaceMatch:      outcome.FaceMatch,
			NameMatches:    outcome.NameMatches,
			State:          outcome.State,
			Reason:         outcome.Reason,
			ExtractedName:  outcome.ExtractedName,
			RegisteredName: outcome.RegisteredName,
		},
		IDCardURL:         result.IDImage.URL,
		SelfieURL:         result.Selfie.URL,
		AttemptsRemaining: outcome.AttemptsRemaining,
		RestartRequired:   result.RestartRequired,
	}

	status := http.StatusOK
	if !outcome.Verified {
		resp.Error = outcome.Reason
		resp.ErrorCode = string(outcome.State)
		if outcome.State == models.StateRejectedVendorError && outcome.Cause != nil {
			code := dErrors.CodeOf(outcome.Cause)
			status = httputil.StatusFor(code)
			resp.ErrorCode = string(code)
			if de, ok := dErrors.As(outcome.Cause); ok && code != dErrors.CodeInternal {
				resp.Error = de.Message
			}
		}
		if result.RestartRequired {
			resp.ErrorCode = string(dErrors.CodeAttemptsExhausted)
		}
	}
	httputil.WriteJSON(w, status, resp)
}

func (h *Handler) parseForm(w http.ResponseWriter, r *http.Request) (service.Input, error) {
	// Two images plus a little room for the text fields.
	r.Body = http.MaxBytesReader(w, r.Body, 2*h.maxUploadBytes+(1<<20))
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return service.Input{}, dErrors.New(dErrors.CodePayloadTooLarge, "upload exceeds the allowed size")
		}
		return service.Input{}, dErrors.New(dErrors.CodeBadRequest, "expected a multipart form upload")
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	tempID := strings.TrimSpace(r.FormValue("tempId"))
	if tempID == "" {
		return service.Input{}, dErrors.New(dErrors.CodeValidation, "tempId is required")
	}
	idType, err := models.ParseIDType(strings.TrimSpace(r.FormValue("idType")))
	if err != nil {
		return service.Input{}, err
	}
	idNumber := strings.TrimSpace(r.FormValue("idNumber"))
	if idNumber == "" {
		return service.Input{}, dErrors.New(dErrors.CodeValidation, "idNumber is required")
	}
	if len(idNumber) > maxIDNumberLength {
		return service.Input{}, dErrors.New(dErrors.CodeValidation, "idNumber is too long")
	}

	idImage, err := h.readImage(r.MultipartForm, "idImage")
	if err != nil {
		return service.Input{}, err
	}
	selfie, err := h.readImage(r.MultipartForm, "selfieImage")
	if err != nil {
		return service.Input{}, err
	}

	return service.Input{
		TempID:   tempID,
		IDType:   idType,
		IDNumber: idNumber,
		IDImage:  idImage,
		Selfie:   selfie,
	}, nil
}

func (h *Handler) readImage(form *multipart.Form, field string) (service.Upload, error) {
	files := form.File[field]
	if len(files) == 0 {
		return service.Upload{}, dErrors.New(dErrors.CodeValidation, field+" is required")
	}
	header := files[0]
	if header.Size > h.maxUploadBytes {
		return service.Upload{}, dErrors.New(dErrors.CodePayloadTooLarge, field+" exceeds the maximum image size")
	}

	f, err := header.Open()
	if err != nil {
		return service.Upload{}, dErrors.Wrap(err, dErrors.CodeBadRequest, "could not read "+field)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxUploadBytes+1))
	if err != nil {
		return service.Upload{}, dErrors.Wrap(err, dErrors.CodeBadRequest, "could not read "+field)
	}
	if int64(len(data)) > h.maxUploadBytes {
		return service.Upload{}, dErrors.New(dErrors.CodePayloadTooLarge, field+" exceeds the maximum image size")
	}
	if len(data) == 0 {
		return service.Upload{}, dErrors.New(dErrors.CodeValidation, field+" is empty")
	}

	// Trust the bytes, not the client's declared type.
	contentType := http.DetectContentType(data)
	if !allowedImageTypes[contentType] {
		return service.Upload{}, dErrors.New(dErrors.CodeValidation, field+" must be a JPEG, PNG or WebP image")
	}
	return service.Upload{Data: data, ContentType: contentType}, nil
}

func (h *Handler) writeFailure(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	resp := VerifyResponse{ErrorCode: string(code), Error: "verification could not be completed"}
	if de, ok := dErrors.As(err); ok && code != dErrors.CodeInternal {
		resp.Error = de.Message
	}
	resp.RestartRequired = code == dErrors.CodeAttemptsExhausted || code == dErrors.CodeSessionExpired
	httputil.WriteJSON(w, httputil.StatusFor(code), resp)
}
