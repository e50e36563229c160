package secrets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"semdex/internal/domain"
)

const defaultVaultTimeout = 10 * time.Second

// VaultSource fetches secrets from a hosted vault service exposing a
// get_secret RPC by logical name. Values live server-side; this
// client is read-only.
type VaultSource struct {
	baseURL    string
	serviceKey string
	client     *http.Client
}

type vaultRequest struct {
	Name string `json:"p_name"`
}

// NewVaultSource creates a vault client against baseURL authenticated
// with serviceKey.
func NewVaultSource(baseURL, serviceKey string, timeout time.Duration) *VaultSource {
	if timeout <= 0 {
		timeout = defaultVaultTimeout
	}
	return &VaultSource{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		client:     &http.Client{Timeout: timeout},
	}
}

// Fetch returns the secret value for a logical name. An absent secret
// surfaces as domain.ErrSecretNotFound; transport and server failures
// surface as plain errors so the resolver can fall back to static
// configuration.
func (s *VaultSource) Fetch(ctx context.Context, name string) (string, error) {
	jsonData, err := json.Marshal(vaultRequest{Name: name})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/rest/v1/rpc/get_secret", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", s.serviceKey)
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("vault request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read vault response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("%w: %s", domain.ErrSecretNotFound, name)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("vault returned status %d", resp.StatusCode)
	}

	// The RPC returns the bare value as a JSON string, or null when
	// the name is unknown.
	var value *string
	if err := json.Unmarshal(body, &value); err != nil {
		return "", fmt.Errorf("parse vault response: %w", err)
	}
	if value == nil || *value == "" {
		return "", fmt.Errorf("%w: %s", domain.ErrSecretNotFound, name)
	}

	return *value, nil
}
