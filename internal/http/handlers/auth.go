package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/solthron/assist-api/internal/authbridge"
	"github.com/solthron/assist-api/internal/credits"
	"github.com/solthron/assist-api/internal/service"
)

// AuthHandler handles token intake, credential login and account status.
type AuthHandler struct {
	auth   *service.AuthService
	bridge *authbridge.Bridge
	gate   *credits.Gate
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(auth *service.AuthService, bridge *authbridge.Bridge, gate *credits.Gate) *AuthHandler {
	return &AuthHandler{auth: auth, bridge: bridge, gate: gate}
}

// SubmitTokenInput represents a captured token. Either the token itself or
// a page URL whose query string may carry one. The route registering this
// handler sits behind the origin allow-list middleware.
type SubmitTokenInput struct {
	Body struct {
		Token  string `json:"token,omitempty" doc:"Captured auth token"`
		URL    string `json:"url,omitempty" doc:"Page URL to scan for a token query parameter"`
		Source string `json:"source,omitempty" enum:"url_parameter,post_message,firebase_storage" doc:"Where the token was captured"`
	}
}

// SubmitTokenOutput acknowledges a stored token.
type SubmitTokenOutput struct {
	Body struct {
		Accepted bool   `json:"accepted"`
		Source   string `json:"source"`
	}
}

// SubmitToken validates and stores a captured token. URL submissions are
// scanned for the known token query parameters.
func (h *AuthHandler) SubmitToken(ctx context.Context, input *SubmitTokenInput) (*SubmitTokenOutput, error) {
	token := input.Body.Token
	source := input.Body.Source
	if source == "" {
		source = authbridge.SourcePostMessage
	}

	if token == "" && input.Body.URL != "" {
		found, ok := authbridge.TokenFromURL(input.Body.URL)
		if !ok {
			return nil, huma.Error422UnprocessableEntity("no token parameter in URL")
		}
		token = found
		source = authbridge.SourceURLParameter
	}

	if err := h.bridge.Accept(ctx, token, source); err != nil {
		if errors.Is(err, authbridge.ErrInvalidToken) {
			return nil, huma.Error422UnprocessableEntity("token failed validation")
		}
		return nil, huma.Error500InternalServerError("failed to store token")
	}

	out := &SubmitTokenOutput{}
	out.Body.Accepted = true
	out.Body.Source = source
	return out, nil
}

// ScanOutput reports whether a startup-style storage scan found a token.
type ScanOutput struct {
	Body struct {
		Found bool `json:"found"`
	}
}

// ScanStorage runs one pass over the KV scopes looking for a token, the
// same walk the startup schedule performs.
func (h *AuthHandler) ScanStorage(ctx context.Context, input *struct{}) (*ScanOutput, error) {
	out := &ScanOutput{}
	out.Body.Found = h.bridge.ScanOnce(ctx)
	return out, nil
}

// LoginInput represents a credential login request.
type LoginInput struct {
	Body struct {
		Email    string `json:"email" format:"email"`
		Password string `json:"password" minLength:"1"`
	}
}

// LoginOutput wraps the login outcome.
type LoginOutput struct {
	Body service.LoginOutcome
}

// Login exchanges credentials for a token via the upstream backend.
func (h *AuthHandler) Login(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	outcome, err := h.auth.Login(ctx, input.Body.Email, input.Body.Password)
	if err != nil {
		return nil, huma.Error502BadGateway("login request failed")
	}
	return &LoginOutput{Body: outcome}, nil
}

// Logout clears the stored token and cached balance.
func (h *AuthHandler) Logout(ctx context.Context, input *struct{}) (*struct{}, error) {
	if err := h.auth.Logout(ctx); err != nil {
		return nil, huma.Error500InternalServerError("failed to clear token")
	}
	return &struct{}{}, nil
}

// ProfileOutput wraps the account status view.
type ProfileOutput struct {
	Body service.Profile
}

// GetProfile reports authentication state and the live credit balance when
// the backend is reachable.
func (h *AuthHandler) GetProfile(ctx context.Context, input *struct{}) (*ProfileOutput, error) {
	profile, err := h.auth.GetProfile(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to load profile")
	}
	return &ProfileOutput{Body: *profile}, nil
}

// CreditsOutput reports the cached credit balance.
type CreditsOutput struct {
	Body struct {
		// Balance is the gate's cached balance; null until a gated feature
		// has fetched it.
		Balance *int `json:"balance"`
	}
}

// GetCredits returns the locally cached balance without backend traffic.
func (h *AuthHandler) GetCredits(ctx context.Context, input *struct{}) (*CreditsOutput, error) {
	out := &CreditsOutput{}
	if balance, ok := h.gate.CachedBalance(); ok {
		out.Body.Balance = &balance
	}
	return out, nil
}
