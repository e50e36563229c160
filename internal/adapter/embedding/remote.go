package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"semdex/internal/domain"
	"semdex/internal/port"
)

const defaultRemoteTimeout = 60 * time.Second

// RemoteProvider embeds text through an OpenAI-compatible
// /embeddings endpoint. The API key is resolved by logical name at
// call time, so a rotated credential is picked up without restarting.
type RemoteProvider struct {
	id         string
	model      string
	baseURL    string
	dim        int
	secretName string
	secrets    port.SecretSource
	client     *http.Client
}

type embeddingRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewRemoteProvider creates a remote provider against baseURL using
// model, with the API key resolved from secrets under secretName.
func NewRemoteProvider(id, model, baseURL string, dim int, secretName string, secrets port.SecretSource, timeout time.Duration) *RemoteProvider {
	if timeout <= 0 {
		timeout = defaultRemoteTimeout
	}
	return &RemoteProvider{
		id:         id,
		model:      model,
		baseURL:    baseURL,
		dim:        dim,
		secretName: secretName,
		secrets:    secrets,
		client:     &http.Client{Timeout: timeout},
	}
}

// Embed generates an embedding for the given text via the remote API.
// Transport failures and non-2xx responses surface as errors wrapping
// domain.ErrProviderUnavailable; a missing credential surfaces the
// resolver's domain.ErrSecretNotFound unchanged.
func (p *RemoteProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	apiKey, err := p.secrets.Fetch(ctx, p.secretName)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", p.secretName, err)
	}

	reqBody := embeddingRequest{
		Input: []string{text},
		Model: p.model,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/embeddings", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", domain.ErrProviderUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		preview := string(body)
		if len(preview) > 200 {
			preview = preview[:200]
		}
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrProviderUnavailable, resp.StatusCode, preview)
	}

	var embResp embeddingResponse
	if err := json.Unmarshal(body, &embResp); err != nil {
		return nil, fmt.Errorf("%w: parse response: %v", domain.ErrProviderUnavailable, err)
	}
	if embResp.Error != nil {
		return nil, fmt.Errorf("%w: api error: %s", domain.ErrProviderUnavailable, embResp.Error.Message)
	}
	if len(embResp.Data) == 0 || len(embResp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("%w: empty embedding in response", domain.ErrProviderUnavailable)
	}

	return embResp.Data[0].Embedding, nil
}

// Descriptor returns static metadata about this provider.
func (p *RemoteProvider) Descriptor() domain.ProviderDescriptor {
	return domain.ProviderDescriptor{
		ID:        p.id,
		NativeDim: p.dim,
		Pooling:   "model",
		Normalize: true,
	}
}
