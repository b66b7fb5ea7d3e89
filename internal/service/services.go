// Package service contains the business logic layer. The engine serves a
// single extension profile; there are no user ids anywhere in here.
package service

import (
	"context"
	"log/slog"

	"github.com/solthron/assist-api/internal/authbridge"
	"github.com/solthron/assist-api/internal/backend"
	"github.com/solthron/assist-api/internal/config"
	"github.com/solthron/assist-api/internal/constants"
	"github.com/solthron/assist-api/internal/conversation"
	"github.com/solthron/assist-api/internal/credits"
	"github.com/solthron/assist-api/internal/repository"
)

// Services holds all service instances.
type Services struct {
	Auth    *AuthService
	Assist  *AssistService
	Library *LibraryService
	Session *SessionService

	Gate      *credits.Gate
	Bridge    *authbridge.Bridge
	Extractor *conversation.Extractor
}

// gateAPI adapts the auth service and backend client to the credit gate.
type gateAPI struct {
	auth   *AuthService
	client *backend.Client
}

func (g *gateAPI) IsAuthenticated(ctx context.Context) bool { return g.auth.IsAuthenticated(ctx) }

func (g *gateAPI) GetCredits(ctx context.Context) (int, error) { return g.client.GetCredits(ctx) }

func (g *gateAPI) Deduct(ctx context.Context, feature constants.Feature) (backend.DeductResult, error) {
	return g.client.Deduct(ctx, feature)
}

// NewServices creates all service instances. The auth service comes first:
// the backend client reads tokens through it, and the gate asks it who is
// authenticated.
func NewServices(cfg *config.Config, repos *repository.Repositories, logger *slog.Logger) (*Services, error) {
	authSvc := NewAuthService(repos.Token, logger)

	client := backend.NewClient(cfg.BackendURL, cfg.BackendTimeout, authSvc, logger)
	gate := credits.NewGate(&gateAPI{auth: authSvc, client: client}, logger)
	bridge := authbridge.New(repos.KV, repos.Token, gate, cfg.TokenScanDelays, logger)

	authSvc.client = client
	authSvc.gate = gate
	authSvc.bridge = bridge

	sessionSvc := NewSessionService(repos.KV, logger)
	librarySvc := NewLibraryService(repos, sessionSvc, logger)

	extractor := conversation.NewExtractor(logger)
	assistSvc := NewAssistService(client, gate, extractor, sessionSvc, logger)

	return &Services{
		Auth:      authSvc,
		Assist:    assistSvc,
		Library:   librarySvc,
		Session:   sessionSvc,
		Gate:      gate,
		Bridge:    bridge,
		Extractor: extractor,
	}, nil
}
