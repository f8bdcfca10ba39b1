package service_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/kaimonolist/linkd/internal/apperr"
	"github.com/kaimonolist/linkd/internal/config"
	"github.com/kaimonolist/linkd/internal/model"
	"github.com/kaimonolist/linkd/internal/service"

	"gorm.io/gorm"
	"gotest.tools/v3/assert"
)

func setupTokenService(t *testing.T, clientSecret string) (*service.TokenService, *gorm.DB) {
	t.Helper()

	db := setupDatabase(t)

	tokens := service.NewTokenService(service.TokenServiceConfig{
		Issuer:          "linkd-test",
		ClientID:        "alexa-client",
		ClientSecret:    clientSecret,
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 30 * 24 * time.Hour,
	}, db)

	return tokens, db
}

func seedAuthCode(t *testing.T, db *gorm.DB, code string, expiresAt time.Time) {
	t.Helper()

	err := db.Create(&model.AuthCode{
		Code:      code,
		UID:       "user-1",
		ListID:    "list-1",
		ClientID:  "alexa-client",
		CreatedAt: time.Now().UnixMilli(),
		ExpiresAt: expiresAt.UnixMilli(),
	}).Error

	assert.NilError(t, err)
}

func TestExchangeAuthorizationCode(t *testing.T) {
	tokens, db := setupTokenService(t, "")

	seedAuthCode(t, db, "code-1", time.Now().Add(5*time.Minute))

	response, err := tokens.ExchangeAuthorizationCode(context.Background(), "code-1", "alexa-client", "")

	assert.NilError(t, err)
	assert.Equal(t, "Bearer", response.TokenType)
	assert.Equal(t, 3600, response.ExpiresIn)
	assert.Assert(t, response.RefreshToken != "")

	var payload service.AccessTokenPayload

	err = json.Unmarshal([]byte(response.AccessToken), &payload)

	assert.NilError(t, err)
	assert.Equal(t, "user-1", payload.UID)
	assert.Equal(t, "list-1", payload.ListID)
	assert.Equal(t, config.AccessTokenAudience, payload.Aud)
	assert.Equal(t, "linkd-test", payload.Iss)
	assert.Assert(t, payload.Exp > time.Now().UnixMilli())

	// The code is single-use.
	var count int64

	err = db.Model(&model.AuthCode{}).Where("code = ?", "code-1").Count(&count).Error

	assert.NilError(t, err)
	assert.Equal(t, int64(0), count)

	_, err = tokens.ExchangeAuthorizationCode(context.Background(), "code-1", "alexa-client", "")

	assert.Assert(t, apperr.IsKind(err, apperr.InvalidArgument))
}

func TestExchangeAuthorizationCodeClientChecks(t *testing.T) {
	tokens, db := setupTokenService(t, "hunter2")

	seedAuthCode(t, db, "code-1", time.Now().Add(5*time.Minute))

	_, err := tokens.ExchangeAuthorizationCode(context.Background(), "code-1", "other-client", "hunter2")

	assert.Assert(t, apperr.IsKind(err, apperr.PermissionDenied))

	_, err = tokens.ExchangeAuthorizationCode(context.Background(), "code-1", "alexa-client", "wrong")

	assert.Assert(t, apperr.IsKind(err, apperr.PermissionDenied))

	_, err = tokens.ExchangeAuthorizationCode(context.Background(), "", "alexa-client", "hunter2")

	assert.Assert(t, apperr.IsKind(err, apperr.InvalidArgument))

	// Failed attempts must not burn the code.
	response, err := tokens.ExchangeAuthorizationCode(context.Background(), "code-1", "alexa-client", "hunter2")

	assert.NilError(t, err)
	assert.Assert(t, response.AccessToken != "")
}

func TestExchangeExpiredAuthorizationCode(t *testing.T) {
	tokens, db := setupTokenService(t, "")

	seedAuthCode(t, db, "code-1", time.Now().Add(-time.Minute))

	_, err := tokens.ExchangeAuthorizationCode(context.Background(), "code-1", "alexa-client", "")

	assert.Assert(t, apperr.IsKind(err, apperr.DeadlineExceeded))

	// Expired codes are deleted on redemption.
	var count int64

	err = db.Model(&model.AuthCode{}).Where("code = ?", "code-1").Count(&count).Error

	assert.NilError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestRefreshAccessToken(t *testing.T) {
	tokens, db := setupTokenService(t, "")

	seedAuthCode(t, db, "code-1", time.Now().Add(5*time.Minute))

	granted, err := tokens.ExchangeAuthorizationCode(context.Background(), "code-1", "alexa-client", "")

	assert.NilError(t, err)

	var before model.RefreshToken

	err = db.Where("token = ?", granted.RefreshToken).First(&before).Error

	assert.NilError(t, err)

	time.Sleep(5 * time.Millisecond)

	refreshed, err := tokens.RefreshAccessToken(context.Background(), granted.RefreshToken, "alexa-client", "")

	assert.NilError(t, err)
	assert.Equal(t, granted.RefreshToken, refreshed.RefreshToken)
	assert.Assert(t, refreshed.AccessToken != "")

	var after model.RefreshToken

	err = db.Where("token = ?", granted.RefreshToken).First(&after).Error

	assert.NilError(t, err)
	assert.Assert(t, after.LastRefreshedAt > before.LastRefreshedAt)
	assert.Equal(t, before.ExpiresAt, after.ExpiresAt)
}

func TestRefreshAccessTokenFailures(t *testing.T) {
	tokens, db := setupTokenService(t, "")

	_, err := tokens.RefreshAccessToken(context.Background(), "no-such-token", "alexa-client", "")

	assert.Assert(t, apperr.IsKind(err, apperr.InvalidArgument))

	_, err = tokens.RefreshAccessToken(context.Background(), "", "alexa-client", "")

	assert.Assert(t, apperr.IsKind(err, apperr.InvalidArgument))

	err = db.Create(&model.RefreshToken{
		Token:     "stale",
		UID:       "user-1",
		ListID:    "list-1",
		ClientID:  "alexa-client",
		CreatedAt: time.Now().Add(-31 * 24 * time.Hour).UnixMilli(),
		ExpiresAt: time.Now().Add(-time.Hour).UnixMilli(),
	}).Error

	assert.NilError(t, err)

	_, err = tokens.RefreshAccessToken(context.Background(), "stale", "alexa-client", "")

	assert.Assert(t, apperr.IsKind(err, apperr.DeadlineExceeded))

	// An expired refresh token is removed so later attempts report it
	// missing instead of expired.
	var count int64

	err = db.Model(&model.RefreshToken{}).Where("token = ?", "stale").Count(&count).Error

	assert.NilError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestDecodeAccessToken(t *testing.T) {
	payload := service.AccessTokenPayload{
		UID:    "user-1",
		ListID: "list-1",
		Aud:    config.AccessTokenAudience,
		Iss:    "linkd-test",
		Exp:    time.Now().Add(time.Hour).UnixMilli(),
	}

	encoded, err := json.Marshal(payload)

	assert.NilError(t, err)

	decoded := service.DecodeAccessToken(string(encoded))

	assert.Assert(t, decoded != nil)
	assert.Equal(t, "user-1", decoded.UID)
	assert.Equal(t, "list-1", decoded.ListID)

	payload.Exp = time.Now().Add(-time.Hour).UnixMilli()
	encoded, err = json.Marshal(payload)

	assert.NilError(t, err)
	assert.Assert(t, service.DecodeAccessToken(string(encoded)) == nil)

	assert.Assert(t, service.DecodeAccessToken("") == nil)
	assert.Assert(t, service.DecodeAccessToken("not json") == nil)
}
