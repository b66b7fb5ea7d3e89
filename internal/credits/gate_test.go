package credits

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/solthron/assist-api/internal/backend"
	"github.com/solthron/assist-api/internal/constants"
)

// fakeAPI scripts the backend's answers and records traffic.
type fakeAPI struct {
	authenticated bool
	credits       int
	creditsErr    error
	deduct        backend.DeductResult
	deductErr     error

	getCreditsCalls int
	deductCalls     int
}

func (f *fakeAPI) IsAuthenticated(ctx context.Context) bool { return f.authenticated }

func (f *fakeAPI) GetCredits(ctx context.Context) (int, error) {
	f.getCreditsCalls++
	return f.credits, f.creditsErr
}

func (f *fakeAPI) Deduct(ctx context.Context, feature constants.Feature) (backend.DeductResult, error) {
	f.deductCalls++
	return f.deduct, f.deductErr
}

func newTestGate(api API) *Gate {
	return NewGate(api, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestAuthorizeFreeFeatureSkipsBackend(t *testing.T) {
	api := &fakeAPI{authenticated: true, credits: 0}
	gate := newTestGate(api)

	d := gate.Authorize(context.Background(), constants.FeatureSaveNote)
	if !d.Allowed {
		t.Error("free feature denied")
	}
	if d.Required != 0 {
		t.Errorf("Required = %d, want 0", d.Required)
	}
	if api.getCreditsCalls != 0 || api.deductCalls != 0 {
		t.Error("free feature must not produce remote traffic")
	}
}

func TestAuthorizeUnauthenticatedAllowed(t *testing.T) {
	api := &fakeAPI{authenticated: false}
	gate := newTestGate(api)

	d := gate.Authorize(context.Background(), constants.FeatureImagePrompt)
	if !d.Allowed {
		t.Error("unauthenticated user denied")
	}
	if api.getCreditsCalls != 0 || api.deductCalls != 0 {
		t.Error("unauthenticated path must not hit the credits API")
	}
}

func TestAuthorizeInsufficientCredits(t *testing.T) {
	api := &fakeAPI{authenticated: true, credits: 10}
	gate := newTestGate(api)

	d := gate.Authorize(context.Background(), constants.FeatureImagePrompt) // costs 12
	if d.Allowed {
		t.Fatal("expected denial")
	}
	want := "Insufficient credits. This feature requires 12 credits, but you have 10."
	if d.Message != want {
		t.Errorf("Message = %q, want %q", d.Message, want)
	}
	if api.deductCalls != 0 {
		t.Error("denial must not attempt deduction")
	}

	// The cache survives the denial untouched.
	if balance, ok := gate.CachedBalance(); !ok || balance != 10 {
		t.Errorf("CachedBalance() = %d, %v; want 10, true", balance, ok)
	}
}

func TestAuthorizeDeductsAndCachesRemaining(t *testing.T) {
	api := &fakeAPI{
		authenticated: true,
		credits:       20,
		deduct:        backend.DeductResult{OK: true, Remaining: 15},
	}
	gate := newTestGate(api)

	d := gate.Authorize(context.Background(), constants.FeatureExplainStory) // costs 5
	if !d.Allowed {
		t.Fatalf("expected allow, got %+v", d)
	}
	if d.Remaining != 15 || d.CreditsUsed != 5 {
		t.Errorf("Remaining = %d, CreditsUsed = %d", d.Remaining, d.CreditsUsed)
	}
	if balance, _ := gate.CachedBalance(); balance != 15 {
		t.Errorf("cache = %d, want backend's remaining 15", balance)
	}
}

func TestAuthorizeBalanceFetchedOncePerSession(t *testing.T) {
	api := &fakeAPI{
		authenticated: true,
		credits:       100,
		deduct:        backend.DeductResult{OK: true, Remaining: 94},
	}
	gate := newTestGate(api)
	ctx := context.Background()

	gate.Authorize(ctx, constants.FeatureReframeCasual)
	api.deduct = backend.DeductResult{OK: true, Remaining: 88}
	gate.Authorize(ctx, constants.FeatureReframeCasual)

	if api.getCreditsCalls != 1 {
		t.Errorf("GetCredits called %d times, want 1 (cache after deduction)", api.getCreditsCalls)
	}
	if balance, _ := gate.CachedBalance(); balance != 88 {
		t.Errorf("cache = %d, want 88", balance)
	}
}

func TestAuthorizeDeductionDeniedKeepsCache(t *testing.T) {
	api := &fakeAPI{
		authenticated: true,
		credits:       50,
		deduct:        backend.DeductResult{OK: false, Message: "account suspended"},
	}
	gate := newTestGate(api)

	d := gate.Authorize(context.Background(), constants.FeatureReframeCasual)
	if d.Allowed {
		t.Fatal("expected denial")
	}
	if d.Message != "account suspended" {
		t.Errorf("Message = %q", d.Message)
	}
	if balance, _ := gate.CachedBalance(); balance != 50 {
		t.Errorf("cache = %d, want unchanged 50", balance)
	}
}

func TestAuthorizeDeductionDeniedDefaultMessage(t *testing.T) {
	api := &fakeAPI{
		authenticated: true,
		credits:       50,
		deduct:        backend.DeductResult{OK: false},
	}
	gate := newTestGate(api)

	d := gate.Authorize(context.Background(), constants.FeatureReframeCasual)
	if d.Message != "Credit deduction failed" {
		t.Errorf("Message = %q", d.Message)
	}
}

func TestAuthorizeFailsOpenOnBalanceFetchError(t *testing.T) {
	api := &fakeAPI{
		authenticated: true,
		creditsErr:    &backend.TransportError{Op: "user-credits", Err: errors.New("connection refused")},
	}
	gate := newTestGate(api)

	d := gate.Authorize(context.Background(), constants.FeatureImagePrompt)
	if !d.Allowed {
		t.Error("transport failure must fail open")
	}
	if _, ok := gate.CachedBalance(); ok {
		t.Error("failed fetch must not populate the cache")
	}
}

func TestAuthorizeFailsOpenOnDeductError(t *testing.T) {
	api := &fakeAPI{
		authenticated: true,
		credits:       30,
		deductErr:     &backend.TransportError{Op: "deduct-credits", Err: errors.New("timeout"), Timeout: true},
	}
	gate := newTestGate(api)

	d := gate.Authorize(context.Background(), constants.FeatureReframeCasual)
	if !d.Allowed {
		t.Error("deduction transport failure must fail open")
	}
	// The fetched balance stays cached; nothing was deducted.
	if balance, _ := gate.CachedBalance(); balance != 30 {
		t.Errorf("cache = %d, want 30", balance)
	}
}

func TestInvalidateBalanceForcesRefetch(t *testing.T) {
	api := &fakeAPI{
		authenticated: true,
		credits:       20,
		deduct:        backend.DeductResult{OK: true, Remaining: 14},
	}
	gate := newTestGate(api)
	ctx := context.Background()

	gate.Authorize(ctx, constants.FeatureReframeCasual)
	gate.InvalidateBalance()

	api.credits = 99
	gate.Authorize(ctx, constants.FeatureReframeCasual)

	if api.getCreditsCalls != 2 {
		t.Errorf("GetCredits called %d times, want 2 after invalidation", api.getCreditsCalls)
	}
}

func TestAuthorizeUnsetCacheScenario(t *testing.T) {
	// Balance unset, backend reports 20, explain_story costs 5: the gate
	// fetches, checks, deducts and caches the authoritative remainder.
	api := &fakeAPI{
		authenticated: true,
		credits:       20,
		deduct:        backend.DeductResult{OK: true, Remaining: 15},
	}
	gate := newTestGate(api)

	if _, ok := gate.CachedBalance(); ok {
		t.Fatal("cache must start unset")
	}

	d := gate.Authorize(context.Background(), constants.FeatureExplainStory)
	if !d.Allowed || d.Remaining != 15 || d.CreditsUsed != 5 {
		t.Errorf("Decision = %+v", d)
	}
	if api.getCreditsCalls != 1 || api.deductCalls != 1 {
		t.Errorf("calls: get=%d deduct=%d", api.getCreditsCalls, api.deductCalls)
	}
}
