package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/kaimonolist/linkd/internal/apperr"
	"github.com/kaimonolist/linkd/internal/config"
	"github.com/kaimonolist/linkd/internal/model"
	"github.com/kaimonolist/linkd/internal/utils"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type TokenServiceConfig struct {
	Issuer          string
	ClientID        string
	ClientSecret    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

type TokenService struct {
	config   TokenServiceConfig
	database *gorm.DB
}

func NewTokenService(config TokenServiceConfig, database *gorm.DB) *TokenService {
	return &TokenService{
		config:   config,
		database: database,
	}
}

// AccessTokenPayload is the self-describing access token. It is serialized
// to plain JSON and handed out as an opaque string; it only ever travels
// the server-to-server leg between the assistant platform and this
// service, so it carries no signature.
type AccessTokenPayload struct {
	UID    string `json:"uid"`
	ListID string `json:"listId"`
	Aud    string `json:"aud"`
	Iss    string `json:"iss"`
	Exp    int64  `json:"exp"`
}

type TokenResponse struct {
	TokenType    string `json:"token_type"`
	AccessToken  string `json:"access_token"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
}

// ClientAllowed checks the caller against the configured allow-list. The
// secret is only enforced when one is configured and enforceSecret is set.
func (ts *TokenService) ClientAllowed(clientID string, clientSecret string, enforceSecret bool) bool {
	if ts.config.ClientID != "" && clientID != ts.config.ClientID {
		return false
	}
	if enforceSecret && ts.config.ClientSecret != "" && clientSecret != ts.config.ClientSecret {
		return false
	}
	return true
}

// ExchangeAuthorizationCode implements the authorization_code grant. The
// code is single-use: it is deleted as soon as it has been read, whether or
// not the grant succeeds.
func (ts *TokenService) ExchangeAuthorizationCode(ctx context.Context, code string, clientID string, clientSecret string) (*TokenResponse, error) {
	if code == "" {
		return nil, apperr.New(apperr.InvalidArgument, "Missing authorization code")
	}
	if !ts.ClientAllowed(clientID, clientSecret, ts.config.ClientSecret != "") {
		return nil, apperr.New(apperr.PermissionDenied, "Unauthorized client")
	}

	var authCode model.AuthCode

	err := ts.database.WithContext(ctx).Where("code = ?", code).First(&authCode).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.InvalidArgument, "Authorization code not found")
		}
		return nil, apperr.Wrap(apperr.Internal, "failed to load authorization code", err)
	}

	if authCode.ClientID != "" && authCode.ClientID != clientID {
		return nil, apperr.New(apperr.PermissionDenied, "Authorization code client mismatch")
	}

	now := time.Now()

	if err := ts.database.WithContext(ctx).Delete(&model.AuthCode{}, "code = ?", code).Error; err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to delete authorization code", err)
	}

	if authCode.ExpiresAt < now.UnixMilli() {
		return nil, apperr.New(apperr.DeadlineExceeded, "Authorization code expired")
	}

	accessToken, err := ts.mintAccessToken(authCode.UID, authCode.ListID, now)
	if err != nil {
		return nil, err
	}

	refreshToken, err := utils.CreateUnique(ctx, maxCodeAttempts,
		func() (string, error) {
			return utils.GenerateToken(32)
		},
		func(token string) error {
			return ts.database.WithContext(ctx).Create(&model.RefreshToken{
				Token:           token,
				UID:             authCode.UID,
				ListID:          authCode.ListID,
				ClientID:        clientID,
				CreatedAt:       now.UnixMilli(),
				ExpiresAt:       now.Add(ts.config.RefreshTokenTTL).UnixMilli(),
				LastRefreshedAt: now.UnixMilli(),
			}).Error
		})
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to store refresh token", err)
	}

	log.Info().Str("listId", authCode.ListID).Str("clientId", clientID).Msg("Authorization code exchanged")

	return &TokenResponse{
		TokenType:    "Bearer",
		AccessToken:  accessToken,
		ExpiresIn:    int(ts.config.AccessTokenTTL / time.Second),
		RefreshToken: refreshToken,
	}, nil
}

// RefreshAccessToken implements the refresh_token grant. The refresh token
// value is reused across refreshes; only lastRefreshedAt advances.
func (ts *TokenService) RefreshAccessToken(ctx context.Context, refreshToken string, clientID string, clientSecret string) (*TokenResponse, error) {
	if refreshToken == "" {
		return nil, apperr.New(apperr.InvalidArgument, "Missing refresh token")
	}
	if !ts.ClientAllowed(clientID, clientSecret, ts.config.ClientSecret != "") {
		return nil, apperr.New(apperr.PermissionDenied, "Unauthorized client")
	}

	var token model.RefreshToken

	err := ts.database.WithContext(ctx).Where("token = ?", refreshToken).First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.InvalidArgument, "Refresh token not found")
		}
		return nil, apperr.Wrap(apperr.Internal, "failed to load refresh token", err)
	}

	if token.ClientID != "" && token.ClientID != clientID {
		return nil, apperr.New(apperr.PermissionDenied, "Refresh token client mismatch")
	}

	now := time.Now()

	if token.ExpiresAt < now.UnixMilli() {
		if err := ts.database.WithContext(ctx).Delete(&model.RefreshToken{}, "token = ?", refreshToken).Error; err != nil {
			log.Error().Err(err).Msg("Failed to delete expired refresh token")
		}
		return nil, apperr.New(apperr.DeadlineExceeded, "Refresh token expired")
	}

	accessToken, err := ts.mintAccessToken(token.UID, token.ListID, now)
	if err != nil {
		return nil, err
	}

	err = ts.database.WithContext(ctx).Model(&model.RefreshToken{}).Where("token = ?", refreshToken).Update("last_refreshed_at", now.UnixMilli()).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to update refresh token", err)
	}

	return &TokenResponse{
		TokenType:    "Bearer",
		AccessToken:  accessToken,
		ExpiresIn:    int(ts.config.AccessTokenTTL / time.Second),
		RefreshToken: refreshToken,
	}, nil
}

func (ts *TokenService) mintAccessToken(uid string, listID string, now time.Time) (string, error) {
	payload := AccessTokenPayload{
		UID:    uid,
		ListID: listID,
		Aud:    config.AccessTokenAudience,
		Iss:    ts.config.Issuer,
		Exp:    now.Add(ts.config.AccessTokenTTL).UnixMilli(),
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, "failed to encode access token", err)
	}

	return string(encoded), nil
}

// DecodeAccessToken parses an opaque access token. Malformed or expired
// tokens yield nil rather than an error; callers treat nil as "no linked
// account".
func DecodeAccessToken(token string) *AccessTokenPayload {
	if token == "" {
		return nil
	}

	var payload AccessTokenPayload

	if err := json.Unmarshal([]byte(token), &payload); err != nil {
		log.Warn().Err(err).Msg("Failed to parse access token")
		return nil
	}

	if payload.Exp != 0 && payload.Exp < time.Now().UnixMilli() {
		log.Warn().Int64("exp", payload.Exp).Msg("Access token expired")
		return nil
	}

	return &payload
}
