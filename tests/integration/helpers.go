//go:build integration

package integration

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/bytedance/sonic"
)

const (
	ServerKey = "defaultkey"
	Host      = "127.0.0.1"
	Port      = 7350
)

// TestClient talks to a running Nakama server over its HTTP API.
type TestClient struct {
	BaseURL string
	Token   string
	UserID  string
	http    *http.Client
}

func baseURL() string {
	if v := os.Getenv("BLOKTRIS_NAKAMA_URL"); v != "" {
		return v
	}
	return fmt.Sprintf("http://%s:%d", Host, Port)
}

func NewTestClient(t *testing.T) *TestClient {
	t.Helper()
	tc := &TestClient{BaseURL: baseURL(), http: &http.Client{Timeout: 10 * time.Second}}

	// Create unique ID
	deviceID := fmt.Sprintf("test_device_%d", time.Now().UnixNano())
	body, _ := sonic.Marshal(map[string]string{"id": deviceID})

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost,
		tc.BaseURL+"/v2/account/authenticate/device?create=true", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("Failed to build auth request: %v", err)
	}
	req.SetBasicAuth(ServerKey, "")
	req.Header.Set("Content-Type", "application/json")

	var session struct {
		Token string `json:"token"`
	}
	if err := tc.do(req, &session); err != nil {
		t.Fatalf("Failed to authenticate: %v", err)
	}
	tc.Token = session.Token
	return tc
}

// Rpc calls a server RPC with a JSON payload and returns the raw response payload.
func (tc *TestClient) Rpc(ctx context.Context, id string, payload any) (string, error) {
	raw := "{}"
	if payload != nil {
		b, err := sonic.MarshalString(payload)
		if err != nil {
			return "", err
		}
		raw = b
	}
	// The HTTP gateway expects the payload as a JSON string.
	body, err := sonic.Marshal(raw)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tc.BaseURL+"/v2/rpc/"+id, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+tc.Token)
	req.Header.Set("Content-Type", "application/json")

	var out struct {
		Payload string `json:"payload"`
	}
	if err := tc.do(req, &out); err != nil {
		return "", fmt.Errorf("rpc %s: %w", id, err)
	}
	return out.Payload, nil
}

func (tc *TestClient) do(req *http.Request, out any) error {
	resp, err := tc.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(data))
	}
	return sonic.Unmarshal(data, out)
}
