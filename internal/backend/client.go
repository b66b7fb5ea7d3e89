// Package backend is the HTTP client for the Solthron credits and AI
// service. Every method classifies failures into one of three kinds:
// TransportError (no usable response), APIError (backend said no) or
// ShapeError (2xx with an unusable payload). Callers map each kind to its
// own user-facing message.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/solthron/assist-api/internal/constants"
)

// TokenProvider supplies the current auth token. An empty token means the
// user is not authenticated; requests then go out without Authorization.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// Client talks to the Solthron backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenProvider
	logger     *slog.Logger
}

// NewClient creates a backend client. The timeout bounds every request;
// pass the long backend timeout since generation calls are slow.
func NewClient(baseURL string, timeout time.Duration, tokens TokenProvider, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
		logger:     logger,
	}
}

// envelope is the backend's standard response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// EnhanceRequest is the payload for text-based generation features.
type EnhanceRequest struct {
	Topic  string            `json:"topic"`
	Tone   string            `json:"tone,omitempty"`
	Length string            `json:"length,omitempty"`
	Mode   constants.Feature `json:"mode"`
}

// EnhanceText runs a text generation feature and returns the produced prompt.
func (c *Client) EnhanceText(ctx context.Context, req EnhanceRequest) (string, error) {
	const op = "enhance-text"
	var data struct {
		Prompt string `json:"prompt"`
	}
	if err := c.post(ctx, op, "/enhance-text", req, &data); err != nil {
		return "", err
	}
	if data.Prompt == "" {
		return "", &ShapeError{Op: op, Field: "data.prompt"}
	}
	return data.Prompt, nil
}

// ImageRequest is the payload for image features. ImageURL carries a data
// URL with the base64-encoded image.
type ImageRequest struct {
	ImageURL string            `json:"imageUrl"`
	Mode     constants.Feature `json:"mode"`
}

// ProcessImage runs an image feature and returns the produced prompt.
func (c *Client) ProcessImage(ctx context.Context, req ImageRequest) (string, error) {
	const op = "process-image"
	var data struct {
		Prompt string `json:"prompt"`
	}
	if err := c.post(ctx, op, "/process-image", req, &data); err != nil {
		return "", err
	}
	if data.Prompt == "" {
		return "", &ShapeError{Op: op, Field: "data.prompt"}
	}
	return data.Prompt, nil
}

// ConversationRequest carries an extracted conversation sample.
type ConversationRequest struct {
	Conversation string `json:"conversation"`
	Platform     string `json:"platform"`
}

// SmartFollowups generates follow-up questions for a conversation.
func (c *Client) SmartFollowups(ctx context.Context, req ConversationRequest) ([]string, error) {
	const op = "smart-followups"
	var data struct {
		Questions []string `json:"questions"`
	}
	if err := c.post(ctx, op, "/smart-followups", req, &data); err != nil {
		return nil, err
	}
	if data.Questions == nil {
		return nil, &ShapeError{Op: op, Field: "data.questions"}
	}
	return data.Questions, nil
}

// SmartActions generates actionable next-step prompts for a conversation.
func (c *Client) SmartActions(ctx context.Context, req ConversationRequest) ([]string, error) {
	const op = "smart-actions"
	var data struct {
		ActionPrompts []string `json:"action_prompts"`
	}
	if err := c.post(ctx, op, "/smart-actions", req, &data); err != nil {
		return nil, err
	}
	if data.ActionPrompts == nil {
		return nil, &ShapeError{Op: op, Field: "data.action_prompts"}
	}
	return data.ActionPrompts, nil
}

// SmartEnhancements generates enhancement suggestions for selected text.
func (c *Client) SmartEnhancements(ctx context.Context, text string) ([]string, error) {
	const op = "smart-enhancements"
	var data struct {
		EnhancementPrompts []string `json:"enhancement_prompts"`
	}
	body := map[string]string{"text": text}
	if err := c.post(ctx, op, "/smart-enhancements", body, &data); err != nil {
		return nil, err
	}
	if data.EnhancementPrompts == nil {
		return nil, &ShapeError{Op: op, Field: "data.enhancement_prompts"}
	}
	return data.EnhancementPrompts, nil
}

// GetCredits fetches the user's current credit balance.
func (c *Client) GetCredits(ctx context.Context) (int, error) {
	const op = "user-credits"

	req, err := c.newRequest(ctx, http.MethodGet, "/user-credits", nil)
	if err != nil {
		return 0, err
	}

	body, status, err := c.do(op, req)
	if err != nil {
		return 0, err
	}
	if status != http.StatusOK {
		return 0, &APIError{Op: op, Status: status}
	}

	var result struct {
		Credits int `json:"credits"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return 0, &ShapeError{Op: op, Field: "credits"}
	}
	return result.Credits, nil
}

// DeductResult is the backend's answer to a deduction attempt. OK=false is
// an application denial, not an error.
type DeductResult struct {
	OK        bool
	Remaining int
	Message   string
}

// Deduct charges the feature's cost against the user's balance.
func (c *Client) Deduct(ctx context.Context, feature constants.Feature) (DeductResult, error) {
	const op = "deduct-credits"

	payload := map[string]string{"feature": string(feature)}
	req, err := c.newRequest(ctx, http.MethodPost, "/deduct-credits", payload)
	if err != nil {
		return DeductResult{}, err
	}

	body, _, err := c.do(op, req)
	if err != nil {
		return DeductResult{}, err
	}

	// The backend reports denial inside the body, regardless of status.
	var result struct {
		Success   bool   `json:"success"`
		Remaining int    `json:"remaining"`
		Message   string `json:"message"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return DeductResult{}, &ShapeError{Op: op, Field: "success"}
	}
	return DeductResult{OK: result.Success, Remaining: result.Remaining, Message: result.Message}, nil
}

// LoginResult is the outcome of a credential login.
type LoginResult struct {
	OK    bool
	Token string
	Error string
}

// Login exchanges credentials for an auth token.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	const op = "auth-login"

	payload := map[string]string{"email": email, "password": password}
	req, err := c.newRequest(ctx, http.MethodPost, "/auth/login", payload)
	if err != nil {
		return LoginResult{}, err
	}

	body, _, err := c.do(op, req)
	if err != nil {
		return LoginResult{}, err
	}

	var result struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return LoginResult{}, &ShapeError{Op: op, Field: "success"}
	}
	if result.Success && result.Token == "" {
		return LoginResult{}, &ShapeError{Op: op, Field: "token"}
	}
	return LoginResult{OK: result.Success, Token: result.Token, Error: result.Error}, nil
}

// VerifyToken checks whether the stored token is accepted by the backend.
func (c *Client) VerifyToken(ctx context.Context) (bool, error) {
	const op = "verify-token"

	req, err := c.newRequest(ctx, http.MethodGet, "/user-credits", nil)
	if err != nil {
		return false, err
	}

	_, status, err := c.do(op, req)
	if err != nil {
		return false, err
	}
	return status == http.StatusOK, nil
}

// post sends a JSON request and decodes the success envelope's data field
// into out.
func (c *Client) post(ctx context.Context, op, path string, payload, out any) error {
	req, err := c.newRequest(ctx, http.MethodPost, path, payload)
	if err != nil {
		return err
	}

	body, status, err := c.do(op, req)
	if err != nil {
		return err
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return &ShapeError{Op: op, Field: "envelope"}
	}
	if status != http.StatusOK || !env.Success {
		return &APIError{Op: op, Status: status, Message: env.Error}
	}
	if env.Data == nil {
		return &ShapeError{Op: op, Field: "data"}
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &ShapeError{Op: op, Field: "data"}
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, payload any) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err == nil && token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}

// do executes the request and reads the body, classifying low-level
// failures as TransportError.
func (c *Client) do(op string, req *http.Request) ([]byte, int, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("backend request failed", "op", op, "error", err)
		return nil, 0, &TransportError{Op: op, Err: err, Timeout: isTimeout(err)}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, &TransportError{Op: op, Err: err, Timeout: isTimeout(err)}
	}
	return body, resp.StatusCode, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne interface{ Timeout() bool }
	return errors.As(err, &ne) && ne.Timeout()
}
