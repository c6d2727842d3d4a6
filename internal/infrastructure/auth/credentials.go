package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"openadr/internal/shared/config"
)

// CredentialStore verifies client credentials for the internal token
// endpoint. Clients are configured with bcrypt secret hashes.
type CredentialStore struct {
	clients map[string]config.OAuthClientConfig
}

// NewCredentialStore indexes the configured clients by ID.
func NewCredentialStore(clients []config.OAuthClientConfig) *CredentialStore {
	byID := make(map[string]config.OAuthClientConfig, len(clients))
	for _, c := range clients {
		byID[c.ClientID] = c
	}
	return &CredentialStore{clients: byID}
}

// HashSecret produces a bcrypt hash suitable for the configuration
// file. Used by tooling, not the request path.
func HashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash client secret: %w", err)
	}
	return string(hash), nil
}

// Verify checks the client credentials and returns the granted scopes.
// The error is uniform so callers cannot probe which part failed.
func (s *CredentialStore) Verify(clientID, clientSecret string) ([]Scope, error) {
	client, ok := s.clients[clientID]
	if !ok {
		// Burn comparable time so missing clients are not distinguishable.
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5B0xB09bVY3VbGyxlPq7q8O9G1z1e"), []byte(clientSecret))
		return nil, fmt.Errorf("client authentication failed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(client.SecretHash), []byte(clientSecret)); err != nil {
		return nil, fmt.Errorf("client authentication failed")
	}

	scopes := make([]Scope, 0, len(client.Scopes))
	for _, s := range client.Scopes {
		scopes = append(scopes, Scope(s))
	}
	return scopes, nil
}
