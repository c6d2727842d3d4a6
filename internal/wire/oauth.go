package wire

import "net/http"

// TokenResponse is the success body of the client-credentials token
// endpoint.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// OAuthErrorType enumerates the error codes the token endpoint returns.
type OAuthErrorType string

const (
	OAuthNotEnabled           OAuthErrorType = "oauth_not_enabled"
	OAuthInvalidRequest       OAuthErrorType = "invalid_request"
	OAuthInvalidClient        OAuthErrorType = "invalid_client"
	OAuthInvalidGrant         OAuthErrorType = "invalid_grant"
	OAuthUnsupportedGrantType OAuthErrorType = "unsupported_grant_type"
	OAuthInvalidScope         OAuthErrorType = "invalid_scope"
	OAuthServerError          OAuthErrorType = "server_error"
)

// OAuthError is the RFC 6749 error body of the token endpoint.
type OAuthError struct {
	ErrorCode        OAuthErrorType `json:"error"`
	ErrorDescription string         `json:"error_description,omitempty"`
	ErrorURI         string         `json:"error_uri,omitempty"`
}

// NewOAuthError builds an error body with a description.
func NewOAuthError(code OAuthErrorType, description string) OAuthError {
	return OAuthError{ErrorCode: code, ErrorDescription: description}
}

func (e OAuthError) Error() string {
	if e.ErrorDescription != "" {
		return string(e.ErrorCode) + ": " + e.ErrorDescription
	}
	return string(e.ErrorCode)
}

// HTTPStatus maps the error code to the response status of the token
// endpoint.
func (e OAuthError) HTTPStatus() int {
	switch e.ErrorCode {
	case OAuthInvalidClient:
		return http.StatusUnauthorized
	case OAuthServerError:
		return http.StatusInternalServerError
	case OAuthNotEnabled:
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}
