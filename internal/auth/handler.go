package auth

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes the auth core over HTTP.
type Handler struct {
	svc    *Service
	logger *slog.Logger
}

// NewHandler builds the auth HTTP handler.
func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

type issueRequest struct {
	ProviderToken string `json:"providerToken"`
}

type setPinRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	PinHash     string `json:"pinHash"`
	Salt        string `json:"salt"`
	Iterations  int    `json:"iterations"`
}

type loginRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	PinHash     string `json:"pinHash"`
}

type fetchProfileRequest struct {
	Token string `json:"token"`
}

type issueResponse struct {
	Token     string  `json:"token"`
	ExpiresAt string  `json:"expiresAt"`
	Profile   Profile `json:"profile"`
}

type loginResponse struct {
	issueResponse
	ProviderCredential string `json:"providerCredential"`
}

// IssueAfterOtp exchanges a verified provider token for a session token.
func (h *Handler) IssueAfterOtp(c *fiber.Ctx) error {
	var req issueRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fail(KindInvalidArgument, "invalid request body"))
	}
	res, err := h.svc.IssueAfterOtp(c.UserContext(), req.ProviderToken)
	if err != nil {
		return h.respondFailure(c, "auth.issue", err)
	}
	return c.Status(http.StatusOK).JSON(issueResponse{
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt.Format(time.RFC3339),
		Profile:   res.Profile,
	})
}

// SetPin enrolls a PIN credential and returns a fresh session token.
func (h *Handler) SetPin(c *fiber.Ctx) error {
	var req setPinRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fail(KindInvalidArgument, "invalid request body"))
	}
	res, err := h.svc.SetPin(c.UserContext(), SetPinInput{
		PhoneNumber: req.PhoneNumber,
		PinHash:     req.PinHash,
		Salt:        req.Salt,
		Iterations:  req.Iterations,
	})
	if err != nil {
		return h.respondFailure(c, "auth.set_pin", err)
	}
	return c.Status(http.StatusOK).JSON(issueResponse{
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt.Format(time.RFC3339),
		Profile:   res.Profile,
	})
}

// LoginWithPin authenticates by phone and PIN hash.
func (h *Handler) LoginWithPin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fail(KindInvalidArgument, "invalid request body"))
	}
	res, err := h.svc.LoginWithPin(c.UserContext(), req.PhoneNumber, req.PinHash)
	if err != nil {
		return h.respondFailure(c, "auth.pin_login", err)
	}
	return c.Status(http.StatusOK).JSON(loginResponse{
		issueResponse: issueResponse{
			Token:     res.Token,
			ExpiresAt: res.ExpiresAt.Format(time.RFC3339),
			Profile:   res.Profile,
		},
		ProviderCredential: res.ProviderCredential,
	})
}

// FetchProfile verifies a session token from the request body and returns
// the projected profile.
func (h *Handler) FetchProfile(c *fiber.Ctx) error {
	var req fetchProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fail(KindInvalidArgument, "invalid request body"))
	}
	prof, err := h.svc.FetchProfile(c.UserContext(), req.Token)
	if err != nil {
		return h.respondFailure(c, "auth.fetch_profile", err)
	}
	return c.Status(http.StatusOK).JSON(prof)
}

// Me returns the profile for the bearer session token extracted by the
// session middleware.
func (h *Handler) Me(c *fiber.Ctx) error {
	tok, _ := c.Locals("session_token").(string)
	prof, err := h.svc.FetchProfile(c.UserContext(), tok)
	if err != nil {
		return h.respondFailure(c, "auth.me", err)
	}
	return c.Status(http.StatusOK).JSON(prof)
}

// respondFailure logs the full error internally and sends only kind and
// message to the caller.
func (h *Handler) respondFailure(c *fiber.Ctx, op string, err error) error {
	kind := KindOf(err)
	if h.logger != nil {
		attrs := []any{slog.String("op", op), slog.String("kind", string(kind)), slog.Any("error", err)}
		if kind == KindInternal {
			h.logger.Error("operation failed", attrs...)
		} else {
			h.logger.Info("operation rejected", attrs...)
		}
	}
	return respondError(c, err)
}

func respondError(c *fiber.Ctx, err error) error {
	kind := KindOf(err)
	return c.Status(statusFor(kind)).JSON(fiber.Map{
		"error": fiber.Map{"kind": kind, "message": MessageOf(err)},
	})
}

func statusFor(kind Kind) int {
	switch kind {
	case KindInvalidArgument:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindPermissionDenied:
		return http.StatusForbidden
	case KindFailedPrecondition:
		return http.StatusPreconditionFailed
	default:
		return http.StatusInternalServerError
	}
}
