package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"matchday/internal/types"
)

// resendAPIBase is the default Resend API base URL.
// Overridable in tests via ResendClientConfig.BaseURL.
const resendAPIBase = "https://api.resend.com"

// ResendClientConfig holds the configuration for creating a ResendClient.
type ResendClientConfig struct {
	APIKey  types.SecretString
	BaseURL string // Override for testing; defaults to resendAPIBase
	Logger  *slog.Logger
}

// ResendClient implements EmailProvider by calling the Resend /emails API
// through BaseClient. Sends use a no-retry policy: each digest email gets
// exactly one attempt per run, and failures are counted by the dispatcher
// rather than retried. The circuit breaker still protects against a dead
// upstream taking the whole run hostage.
type ResendClient struct {
	base    *BaseClient
	apiKey  types.SecretString
	baseURL string
	logger  *slog.Logger
}

// NewResendClient creates a new ResendClient. The httpClient timeout bounds
// each send attempt.
func NewResendClient(httpClient *http.Client, cfg ResendClientConfig) *ResendClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = resendAPIBase
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	base := NewBaseClient(
		httpClient,
		"resend",
		NoRetryPolicy(),
		"Matchday/1.0",
	)

	return &ResendClient{
		base:    base,
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
	}
}

// NewResendClientWithBase creates a ResendClient with a pre-configured
// BaseClient, for tests that need to control the breaker or sleep behavior.
func NewResendClientWithBase(base *BaseClient, cfg ResendClientConfig) *ResendClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = resendAPIBase
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &ResendClient{
		base:    base,
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
	}
}

// resendSendPayload is the JSON body for POST /emails.
type resendSendPayload struct {
	From    string            `json:"from"`
	To      []string          `json:"to"`
	Subject string            `json:"subject"`
	HTML    string            `json:"html"`
	Text    string            `json:"text,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
}

// resendSendResponse is the JSON body returned on a successful send.
type resendSendResponse struct {
	ID string `json:"id"`
}

// resendErrorResponse is the JSON error body returned by Resend.
type resendErrorResponse struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// Send transmits an email via the Resend /emails endpoint and returns the
// provider message ID on success.
//
// Error mapping:
//   - 403 -> types.ErrCodeEmailBlocked (recipient suppressed)
//   - 429 -> types.ErrCodeUpstreamRateLimited (via BaseClient)
//   - 5xx -> types.ErrCodeUpstreamUnavailable (via BaseClient)
//   - other 4xx -> types.ErrCodeUpstreamEmailProvider
func (c *ResendClient) Send(ctx context.Context, input types.SendInput) (string, error) {
	payload := resendSendPayload{
		From:    formatFromHeader(input.From),
		To:      []string{input.To},
		Subject: input.Subject,
		HTML:    input.BodyHTML,
		Text:    input.BodyText,
	}
	if input.ReferenceID != "" {
		payload.Headers = map[string]string{"X-Entity-Ref-ID": input.ReferenceID}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"failed to marshal Resend send payload",
			err,
		)
	}

	reqURL := c.baseURL + "/emails"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return "", types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"failed to create Resend send request",
			err,
		)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey.Unmask())

	resp, err := c.base.Do(req)
	if err != nil {
		// BaseClient errors are already AppErrors with the right code.
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
		var out resendSendResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			// The send went through; a malformed body only loses the ID.
			c.logger.Warn("failed to decode Resend response body", "error", err)
			return "", nil
		}
		return out.ID, nil
	}

	return "", c.handleErrorResponse(resp)
}

// handleErrorResponse reads a Resend error body and maps it to an AppError.
func (c *ResendClient) handleErrorResponse(resp *http.Response) error {
	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return types.NewAppError(
			types.ErrCodeUpstreamEmailProvider,
			fmt.Sprintf("Resend returned status %d and the response body was unreadable", resp.StatusCode),
			readErr,
		)
	}

	var rErr resendErrorResponse
	msg := string(body)
	if jsonErr := json.Unmarshal(body, &rErr); jsonErr == nil && rErr.Message != "" {
		msg = rErr.Message
	}

	if resp.StatusCode == http.StatusForbidden {
		return types.NewAppError(
			types.ErrCodeEmailBlocked,
			fmt.Sprintf("Resend blocked delivery: %s", msg),
			nil,
		)
	}

	return types.NewAppError(
		types.ErrCodeUpstreamEmailProvider,
		fmt.Sprintf("Resend error (%d): %s", resp.StatusCode, msg),
		nil,
	)
}

// formatFromHeader renders a SenderIdentity as an RFC 5322 From value.
func formatFromHeader(from types.SenderIdentity) string {
	if from.Name == "" {
		return from.Address
	}
	return fmt.Sprintf("%s <%s>", from.Name, from.Address)
}

// Compile-time assertion that ResendClient satisfies EmailProvider.
var _ EmailProvider = (*ResendClient)(nil)
