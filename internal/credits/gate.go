// Package credits implements the credit gate that runs before every paid
// feature. The gate owns the cached balance: it is fetched lazily on the
// first paid authorization and thereafter only updated from authoritative
// deduction responses or invalidated outright.
package credits

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/solthron/assist-api/internal/backend"
	"github.com/solthron/assist-api/internal/constants"
)

// API is the slice of the backend the gate needs.
type API interface {
	// IsAuthenticated reports whether a usable auth token exists.
	IsAuthenticated(ctx context.Context) bool
	GetCredits(ctx context.Context) (int, error)
	Deduct(ctx context.Context, feature constants.Feature) (backend.DeductResult, error)
}

// Decision is the outcome of an authorization.
type Decision struct {
	Allowed bool `json:"allowed"`
	// Message is set on denial and is safe to show to the user.
	Message string `json:"message,omitempty"`
	// Required is the feature's cost.
	Required int `json:"required_credits"`
	// Remaining is the post-deduction balance; only meaningful when a
	// deduction actually happened (CreditsUsed > 0).
	Remaining   int `json:"remaining,omitempty"`
	CreditsUsed int `json:"credits_used,omitempty"`
}

// Gate authorizes feature invocations against the user's credit balance.
type Gate struct {
	api    API
	logger *slog.Logger

	mu      sync.Mutex
	balance *int
}

// NewGate creates a credit gate. The balance cache starts unset.
func NewGate(api API, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{api: api, logger: logger}
}

// Authorize decides whether a feature may run, deducting its cost on the
// way through. The checks run in a fixed order:
//
//  1. free features pass without any remote traffic
//  2. unauthenticated users pass (payment is enforced upstream)
//  3. insufficient balance denies without touching the cache
//  4. the deduction response is authoritative for the new balance
//
// Any transport failure fails open: the feature runs rather than locking
// out a paying user over a flaky connection.
func (g *Gate) Authorize(ctx context.Context, feature constants.Feature) Decision {
	cost := constants.CreditCost(feature)
	if cost == 0 {
		return Decision{Allowed: true, Required: 0}
	}

	if !g.api.IsAuthenticated(ctx) {
		return Decision{Allowed: true, Required: cost}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.balance == nil {
		fetched, err := g.api.GetCredits(ctx)
		if err != nil {
			g.logger.Warn("credit check failed, allowing feature", "feature", feature, "error", err)
			return Decision{Allowed: true, Required: cost}
		}
		g.balance = &fetched
	}

	if *g.balance < cost {
		return Decision{
			Allowed:  false,
			Required: cost,
			Message:  fmt.Sprintf(constants.MsgInsufficientCredits, cost, *g.balance),
		}
	}

	result, err := g.api.Deduct(ctx, feature)
	if err != nil {
		g.logger.Warn("credit deduction failed, allowing feature", "feature", feature, "error", err)
		return Decision{Allowed: true, Required: cost}
	}
	if !result.OK {
		message := result.Message
		if message == "" {
			message = constants.MsgDeductFailed
		}
		// Denied by the backend: the cached balance stays as-is, the
		// backend did not charge anything.
		return Decision{Allowed: false, Required: cost, Message: message}
	}

	remaining := result.Remaining
	g.balance = &remaining

	return Decision{
		Allowed:     true,
		Required:    cost,
		Remaining:   remaining,
		CreditsUsed: cost,
	}
}

// CachedBalance returns the cached balance, if one is set.
func (g *Gate) CachedBalance() (int, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.balance == nil {
		return 0, false
	}
	return *g.balance, true
}

// InvalidateBalance clears the cached balance so the next paid
// authorization fetches fresh. Called on login, logout and token changes.
func (g *Gate) InvalidateBalance() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.balance = nil
}
