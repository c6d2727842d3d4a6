package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"openadr/internal/infrastructure/auth"
	"openadr/internal/shared/logger"
	"openadr/internal/wire"
)

// OAuthHandler serves the internal client-credentials token endpoint.
type OAuthHandler struct {
	enabled     bool
	credentials *auth.CredentialStore
	tokens      *auth.TokenService
	logger      logger.Interface
}

// NewOAuthHandler creates the token endpoint handler. When the internal
// OAuth feature is disabled the endpoint answers 404.
func NewOAuthHandler(enabled bool, credentials *auth.CredentialStore, tokens *auth.TokenService, log logger.Interface) *OAuthHandler {
	return &OAuthHandler{enabled: enabled, credentials: credentials, tokens: tokens, logger: log}
}

// tokenForm is the urlencoded body of a token request. Credentials may
// come from the body or from HTTP basic auth, never both.
type tokenForm struct {
	GrantType    string `form:"grant_type"`
	ClientID     string `form:"client_id"`
	ClientSecret string `form:"client_secret"`
	Scope        string `form:"scope"`
}

// Token handles POST /auth/token.
func (h *OAuthHandler) Token(c *gin.Context) {
	if !h.enabled || !h.tokens.CanIssue() {
		h.fail(c, wire.NewOAuthError(wire.OAuthNotEnabled, "token issuance is not enabled on this VTN"))
		return
	}

	var form tokenForm
	if err := c.ShouldBind(&form); err != nil {
		h.fail(c, wire.NewOAuthError(wire.OAuthInvalidRequest, "request body must be application/x-www-form-urlencoded"))
		return
	}
	if form.GrantType != "client_credentials" {
		h.fail(c, wire.NewOAuthError(wire.OAuthUnsupportedGrantType, "only the client_credentials grant is supported"))
		return
	}

	clientID, clientSecret, oauthErr := h.extractCredentials(c, form)
	if oauthErr != nil {
		h.fail(c, *oauthErr)
		return
	}

	scopes, err := h.credentials.Verify(clientID, clientSecret)
	if err != nil {
		h.logger.Warnw("client authentication failed", "client_id", clientID)
		c.Header("WWW-Authenticate", `Basic realm="VTN"`)
		h.fail(c, wire.NewOAuthError(wire.OAuthInvalidClient, "client authentication failed"))
		return
	}

	token, expiresIn, err := h.tokens.Issue(clientID, scopes)
	if err != nil {
		h.logger.Errorw("failed to issue token", "client_id", clientID, "error", err)
		h.fail(c, wire.NewOAuthError(wire.OAuthServerError, "failed to issue token"))
		return
	}

	h.logger.Infow("token issued", "client_id", clientID)
	c.JSON(http.StatusOK, wire.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresIn,
	})
}

// extractCredentials resolves the client credentials from basic auth or
// the form body. Presenting both is an error per RFC 6749.
func (h *OAuthHandler) extractCredentials(c *gin.Context, form tokenForm) (string, string, *wire.OAuthError) {
	basicID, basicSecret, hasBasic := c.Request.BasicAuth()
	hasBody := form.ClientID != "" || form.ClientSecret != ""

	switch {
	case hasBasic && hasBody:
		e := wire.NewOAuthError(wire.OAuthInvalidRequest, "credentials must not appear in both the header and the body")
		return "", "", &e
	case hasBasic:
		return basicID, basicSecret, nil
	case hasBody:
		return form.ClientID, form.ClientSecret, nil
	}
	e := wire.NewOAuthError(wire.OAuthInvalidRequest, "client credentials missing")
	return "", "", &e
}

func (h *OAuthHandler) fail(c *gin.Context, e wire.OAuthError) {
	c.JSON(e.HTTPStatus(), e)
}
