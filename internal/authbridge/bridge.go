// Package authbridge captures auth tokens from the website session and
// promotes them into the encrypted token store. Tokens arrive three ways:
// pulled out of a page URL's query parameters, found during a scan of the
// synced browser storage (including Firebase auth blobs), or posted
// directly by an allowed origin.
package authbridge

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tidwall/gjson"

	"github.com/solthron/assist-api/internal/models"
	"github.com/solthron/assist-api/internal/repository"
)

// MinTokenLength is the shortest plausible token. Anything shorter is
// page noise, not a credential.
const MinTokenLength = 20

// ErrInvalidToken rejects values that cannot be real tokens.
var ErrInvalidToken = errors.New("invalid auth token")

// Token sources, recorded alongside the stored token.
const (
	SourceURLParameter = "url_parameter"
	SourcePostMessage  = "post_message"
	SourceFirebase     = "firebase_storage"
	SourceLogin        = "credential_login"
)

// storageKeys are the well-known token keys scanned in both KV scopes.
var storageKeys = []string{"authToken", "auth_token", "jwt_token", "solthron_token"}

// urlParams are the query parameters checked for a token, in order.
var urlParams = []string{"token", "auth_token", "jwt"}

// BalanceInvalidator clears a cached credit balance. A fresh token means
// the old balance may belong to a different account.
type BalanceInvalidator interface {
	InvalidateBalance()
}

// Bridge wires token detection to the encrypted token store.
type Bridge struct {
	kv      repository.KVRepository
	tokens  repository.TokenRepository
	balance BalanceInvalidator
	logger  *slog.Logger
	delays  []time.Duration
}

// New creates a bridge. delays is the startup scan schedule; the zero-delay
// first entry is the immediate scan.
func New(kv repository.KVRepository, tokens repository.TokenRepository, balance BalanceInvalidator, delays []time.Duration, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	if len(delays) == 0 {
		delays = []time.Duration{0, 2 * time.Second, 5 * time.Second}
	}
	return &Bridge{
		kv:      kv,
		tokens:  tokens,
		balance: balance,
		logger:  logger,
		delays:  delays,
	}
}

// Start registers storage watchers and kicks off the startup scan
// schedule. The scan stops early once a token is found; watchers stay
// active for the process lifetime.
func (b *Bridge) Start(ctx context.Context) {
	for _, key := range storageKeys {
		key := key
		b.kv.Watch(key, func(scope repository.Scope, value string) {
			if err := b.Accept(context.Background(), value, "storage_"+key); err != nil {
				b.logger.Debug("watched token key write rejected", "key", key, "error", err)
			}
		})
	}

	go func() {
		for _, delay := range b.delays {
			if delay > 0 {
				select {
				case <-ctx.Done():
					return
				case <-time.After(delay):
				}
			}
			if b.ScanOnce(ctx) {
				return
			}
		}
	}()
}

// Validate rejects values that cannot be real tokens: empty strings, the
// literal "undefined" a page script serializes from a missing value, and
// anything shorter than MinTokenLength.
func Validate(token string) error {
	if token == "" || token == "undefined" || len(token) < MinTokenLength {
		return ErrInvalidToken
	}
	return nil
}

// TokenFromURL extracts a candidate token from a page URL's query
// parameters. Returns false when no parameter carries a valid token.
func TokenFromURL(rawURL string) (string, bool) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	query := parsed.Query()
	for _, param := range urlParams {
		if token := query.Get(param); Validate(token) == nil {
			return token, true
		}
	}
	return "", false
}

// Accept validates and persists a token, invalidating the cached credit
// balance so the next paid feature refetches under the new identity.
func (b *Bridge) Accept(ctx context.Context, token, source string) error {
	if err := Validate(token); err != nil {
		return err
	}

	b.warnIfExpired(token, source)

	stored := &models.StoredToken{Token: token, Source: source, AcquiredAt: time.Now()}
	if err := b.tokens.Save(ctx, stored); err != nil {
		return err
	}

	if b.balance != nil {
		b.balance.InvalidateBalance()
	}

	b.logger.Info("auth token accepted", "source", source)
	return nil
}

// ScanOnce sweeps both KV scopes for a token, well-known keys first and
// Firebase auth blobs second. Returns true when a token was accepted.
func (b *Bridge) ScanOnce(ctx context.Context) bool {
	for _, scope := range []repository.Scope{repository.ScopeLocal, repository.ScopeSync} {
		for _, key := range storageKeys {
			value, ok, err := b.kv.Get(ctx, scope, key)
			if err != nil || !ok {
				continue
			}
			if b.Accept(ctx, value, "storage_"+key) == nil {
				return true
			}
		}

		if b.scanFirebase(ctx, scope) {
			return true
		}
	}
	return false
}

// scanFirebase looks for Firebase auth session blobs and pulls the access
// token out of the stsTokenManager structure.
func (b *Bridge) scanFirebase(ctx context.Context, scope repository.Scope) bool {
	keys, err := b.kv.Keys(ctx, scope)
	if err != nil {
		return false
	}

	for _, key := range keys {
		if !strings.Contains(key, "firebase") && !strings.Contains(key, "Auth") {
			continue
		}
		value, ok, err := b.kv.Get(ctx, scope, key)
		if err != nil || !ok || !strings.HasPrefix(value, "{") {
			continue
		}
		token := gjson.Get(value, "stsTokenManager.accessToken").String()
		if token == "" {
			continue
		}
		if b.Accept(ctx, token, SourceFirebase) == nil {
			return true
		}
	}
	return false
}

// warnIfExpired peeks at a JWT's expiry without verifying the signature.
// The backend is the authority on validity; this only improves the log.
func (b *Bridge) warnIfExpired(token, source string) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return
	}
	if exp.Before(time.Now()) {
		b.logger.Warn("accepted token is already expired", "source", source, "expired_at", exp.Time)
	}
}
