package controller

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"net/url"

	"github.com/kaimonolist/linkd/internal/apperr"
	"github.com/kaimonolist/linkd/internal/assets"
	"github.com/kaimonolist/linkd/internal/config"
	"github.com/kaimonolist/linkd/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/go-querystring/query"
	"github.com/rs/zerolog/log"
)

var requiredAuthParams = []string{"response_type", "client_id", "redirect_uri", "state"}

type OAuthController struct {
	router   *gin.RouterGroup
	links    *service.LinkService
	tokens   *service.TokenService
	template *template.Template
}

func NewOAuthController(router *gin.RouterGroup, links *service.LinkService, tokens *service.TokenService) *OAuthController {
	return &OAuthController{
		router: router,
		links:  links,
		tokens: tokens,
	}
}

func (controller *OAuthController) Init() error {
	tmpl, err := template.ParseFS(assets.Templates, "templates/authorize.html")

	if err != nil {
		return fmt.Errorf("failed to parse authorize template: %w", err)
	}

	controller.template = tmpl
	return nil
}

func (controller *OAuthController) SetupRoutes() {
	controller.router.GET("/authorize", controller.authorizePageHandler)
	controller.router.POST("/authorize", controller.authorizeSubmitHandler)
	controller.router.POST("/token", controller.tokenHandler)
	controller.router.GET("/", controller.rootHandler)
}

type authorizeParams struct {
	ResponseType string
	ClientID     string
	RedirectURI  string
	State        string
}

type authorizePage struct {
	ClientID     string
	RedirectURI  string
	State        string
	ErrorMessage string
}

// validateAuthParams checks the OAuth front-channel parameters from either
// the query or the form body. It returns a human-readable reason on
// failure.
func (controller *OAuthController) validateAuthParams(get func(key string) string) (*authorizeParams, string) {
	values := map[string]string{}

	for _, key := range requiredAuthParams {
		value := get(key)
		if value == "" {
			return nil, fmt.Sprintf("Missing parameter: %s", key)
		}
		values[key] = value
	}

	if values["response_type"] != "code" {
		return nil, "Unsupported response_type"
	}

	if !controller.tokens.ClientAllowed(values["client_id"], "", false) {
		return nil, "Unauthorized client"
	}

	return &authorizeParams{
		ResponseType: values["response_type"],
		ClientID:     values["client_id"],
		RedirectURI:  values["redirect_uri"],
		State:        values["state"],
	}, ""
}

func (controller *OAuthController) renderAuthorizePage(c *gin.Context, status int, page authorizePage) {
	var buf bytes.Buffer

	if err := controller.template.Execute(&buf, page); err != nil {
		log.Error().Err(err).Msg("Failed to render authorize page")
		c.String(http.StatusInternalServerError, "internal error")
		return
	}

	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

func (controller *OAuthController) authorizePageHandler(c *gin.Context) {
	params, reason := controller.validateAuthParams(c.Query)

	if reason != "" {
		c.String(http.StatusBadRequest, reason)
		return
	}

	controller.renderAuthorizePage(c, http.StatusOK, authorizePage{
		ClientID:    params.ClientID,
		RedirectURI: params.RedirectURI,
		State:       params.State,
	})
}

func (controller *OAuthController) authorizeSubmitHandler(c *gin.Context) {
	params, reason := controller.validateAuthParams(c.PostForm)

	if reason != "" {
		controller.renderAuthorizePage(c, http.StatusBadRequest, authorizePage{
			ClientID:     c.PostForm("client_id"),
			RedirectURI:  c.PostForm("redirect_uri"),
			State:        c.PostForm("state"),
			ErrorMessage: reason,
		})
		return
	}

	authCode, err := controller.links.Authorize(c.Request.Context(), c.PostForm("link_code"), params.ClientID)

	if err != nil {
		status := http.StatusBadRequest
		message := apperr.MessageOf(err, "内部エラーが発生しました。しばらくしてからお試しください。")

		if apperr.KindOf(err) == apperr.Internal {
			log.Error().Err(err).Msg("Authorize endpoint failure")
			status = http.StatusInternalServerError
			message = "内部エラーが発生しました。しばらくしてからお試しください。"
		}

		controller.renderAuthorizePage(c, status, authorizePage{
			ClientID:     params.ClientID,
			RedirectURI:  params.RedirectURI,
			State:        params.State,
			ErrorMessage: message,
		})
		return
	}

	redirectURL, err := url.Parse(params.RedirectURI)

	if err != nil {
		controller.renderAuthorizePage(c, http.StatusBadRequest, authorizePage{
			ClientID:     params.ClientID,
			RedirectURI:  params.RedirectURI,
			State:        params.State,
			ErrorMessage: "リダイレクト先のURLが不正です。",
		})
		return
	}

	callback, err := query.Values(config.CallbackQuery{
		Code:  authCode,
		State: params.State,
	})

	if err != nil {
		log.Error().Err(err).Msg("Failed to encode callback query")
		c.String(http.StatusInternalServerError, "internal error")
		return
	}

	existing := redirectURL.Query()
	for key, values := range callback {
		for _, value := range values {
			existing.Set(key, value)
		}
	}
	redirectURL.RawQuery = existing.Encode()

	c.Redirect(http.StatusFound, redirectURL.String())
}

func (controller *OAuthController) tokenHandler(c *gin.Context) {
	grantType := c.PostForm("grant_type")
	clientID := c.PostForm("client_id")
	clientSecret := c.PostForm("client_secret")

	if grantType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "grant_type is required"})
		return
	}

	if clientID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "client_id is required"})
		return
	}

	var response *service.TokenResponse
	var err error

	switch grantType {
	case "authorization_code":
		response, err = controller.tokens.ExchangeAuthorizationCode(c.Request.Context(), c.PostForm("code"), clientID, clientSecret)
	case "refresh_token":
		response, err = controller.tokens.RefreshAccessToken(c.Request.Context(), c.PostForm("refresh_token"), clientID, clientSecret)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported_grant_type"})
		return
	}

	if err != nil {
		controller.tokenError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// tokenError maps the internal error taxonomy onto the OAuth2 error
// response shape. The token endpoint always answers JSON, even on
// unexpected failures.
func (controller *OAuthController) tokenError(c *gin.Context, err error) {
	log.Error().Err(err).Msg("Token endpoint failure")

	status := http.StatusInternalServerError
	oauthError := "server_error"

	switch apperr.KindOf(err) {
	case apperr.PermissionDenied, apperr.Unauthenticated:
		status = http.StatusUnauthorized
		oauthError = "invalid_client"
	case apperr.InvalidArgument:
		status = http.StatusBadRequest
		oauthError = "invalid_request"
	case apperr.NotFound, apperr.DeadlineExceeded:
		status = http.StatusBadRequest
		oauthError = "invalid_grant"
	case apperr.ResourceExhausted:
		status = http.StatusTooManyRequests
		oauthError = "temporarily_unavailable"
	}

	c.JSON(status, gin.H{
		"error":             oauthError,
		"error_description": apperr.MessageOf(err, "Unexpected error"),
	})
}

func (controller *OAuthController) rootHandler(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}
