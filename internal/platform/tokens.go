package platform

import (
	"context"
	"fmt"
)

// ConnectionToken supplies provider access tokens from the platform's
// stored connections, falling back to a locally configured token when
// set. An empty token means the provider is not connected.
type ConnectionToken struct {
	client   *Client
	provider string
	fallback string
}

// NewConnectionToken creates a token source for one provider.
func NewConnectionToken(client *Client, provider, fallback string) *ConnectionToken {
	return &ConnectionToken{
		client:   client,
		provider: provider,
		fallback: fallback,
	}
}

// Token returns the provider's current access token. A missing or
// disconnected connection yields the fallback token, or empty when no
// fallback is configured.
func (t *ConnectionToken) Token(ctx context.Context) (string, error) {
	if t.client == nil {
		return t.fallback, nil
	}

	conn, err := t.client.GetConnection(ctx, t.provider)
	if err != nil {
		if t.fallback != "" {
			return t.fallback, nil
		}
		return "", fmt.Errorf("get %s connection: %w", t.provider, err)
	}
	if !conn.Connected || conn.AccessToken == "" {
		return t.fallback, nil
	}
	return conn.AccessToken, nil
}
