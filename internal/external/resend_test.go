package external

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchday/internal/types"
)

type testLogger struct{}

func (testLogger) Info(string, ...any)      {}
func (testLogger) Error(string, ...any)     {}
func (testLogger) Warn(string, ...any)      {}
func (testLogger) With(...any) types.Logger { return testLogger{} }

func sampleSendInput() types.SendInput {
	return types.SendInput{
		From:        types.SenderIdentity{Address: "alerts@matchday.app", Name: "Matchday"},
		To:          "a@b.com",
		Subject:     "Your events for today",
		BodyHTML:    "<html><body>hi</body></html>",
		BodyText:    "hi",
		ReferenceID: "run-123",
	}
}

func newTestResendClient(serverURL string) *ResendClient {
	return NewResendClient(
		&http.Client{Timeout: 5 * time.Second},
		ResendClientConfig{
			APIKey:  types.SecretString("re_test_key"),
			BaseURL: serverURL,
		},
	)
}

func TestResendClient_Send_Success(t *testing.T) {
	var gotAuth string
	var gotPayload resendSendPayload

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/emails", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(resendSendResponse{ID: "msg-42"})
	}))
	defer server.Close()

	client := newTestResendClient(server.URL)
	id, err := client.Send(context.Background(), sampleSendInput())

	require.NoError(t, err)
	assert.Equal(t, "msg-42", id)
	assert.Equal(t, "Bearer re_test_key", gotAuth)
	assert.Equal(t, "Matchday <alerts@matchday.app>", gotPayload.From)
	assert.Equal(t, []string{"a@b.com"}, gotPayload.To)
	assert.Equal(t, "Your events for today", gotPayload.Subject)
	assert.Equal(t, "hi", gotPayload.Text)
	assert.Equal(t, "run-123", gotPayload.Headers["X-Entity-Ref-ID"])
}

func TestResendClient_Send_Forbidden(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(resendErrorResponse{
			Name:    "validation_error",
			Message: "recipient is suppressed",
		})
	}))
	defer server.Close()

	client := newTestResendClient(server.URL)
	_, err := client.Send(context.Background(), sampleSendInput())
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeEmailBlocked, appErr.Code)
	assert.Contains(t, appErr.Message, "recipient is suppressed")
}

func TestResendClient_Send_ClientError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(resendErrorResponse{Message: "invalid from address"})
	}))
	defer server.Close()

	client := newTestResendClient(server.URL)
	_, err := client.Send(context.Background(), sampleSendInput())
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeUpstreamEmailProvider, appErr.Code)
}

func TestResendClient_Send_RateLimited_SingleAttempt(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestResendClient(server.URL)
	_, err := client.Send(context.Background(), sampleSendInput())
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeUpstreamRateLimited, appErr.Code)
	assert.Equal(t, 1, attempts, "send must not be retried")
}

func TestResendClient_Send_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestResendClient(server.URL)
	_, err := client.Send(context.Background(), sampleSendInput())
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeUpstreamUnavailable, appErr.Code)
}

func TestResendClient_Send_PropagatesRunID(t *testing.T) {
	var gotRunID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRunID = r.Header.Get("X-Run-Id")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(resendSendResponse{ID: "msg-1"})
	}))
	defer server.Close()

	client := newTestResendClient(server.URL)
	ctx := types.WithRunID(context.Background(), "run-abc")
	_, err := client.Send(ctx, sampleSendInput())

	require.NoError(t, err)
	assert.Equal(t, "run-abc", gotRunID)
}

func TestStubEmailProvider_Send(t *testing.T) {
	stub := NewStubEmailProvider(testLogger{})

	id, err := stub.Send(context.Background(), sampleSendInput())
	require.NoError(t, err)
	assert.Equal(t, "stub-1", id)

	id, err = stub.Send(context.Background(), sampleSendInput())
	require.NoError(t, err)
	assert.Equal(t, "stub-2", id)

	sent := stub.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, "a@b.com", sent[0].To)
}

func TestFormatFromHeader(t *testing.T) {
	assert.Equal(t, "Matchday <alerts@matchday.app>",
		formatFromHeader(types.SenderIdentity{Address: "alerts@matchday.app", Name: "Matchday"}))
	assert.Equal(t, "alerts@matchday.app",
		formatFromHeader(types.SenderIdentity{Address: "alerts@matchday.app"}))
}
