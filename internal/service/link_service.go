package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/kaimonolist/linkd/internal/apperr"
	"github.com/kaimonolist/linkd/internal/model"
	"github.com/kaimonolist/linkd/internal/utils"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	linkCodeLength  = 6
	maxCodeAttempts = 5
)

type LinkServiceConfig struct {
	LinkCodeTTL time.Duration
	AuthCodeTTL time.Duration
}

type LinkService struct {
	config   LinkServiceConfig
	database *gorm.DB
	lists    *ListService
}

func NewLinkService(config LinkServiceConfig, database *gorm.DB, lists *ListService) *LinkService {
	return &LinkService{
		config:   config,
		database: database,
		lists:    lists,
	}
}

type CreateLinkCodeResult struct {
	Code       string    `json:"code"`
	ExpiresAt  time.Time `json:"expiresAt"`
	TTLMinutes int       `json:"ttlMinutes"`
}

// CreateLinkCode issues a short human-typable code tied to the caller's
// list. Creation is atomic on the code key so a collision surfaces as a
// duplicate instead of overwriting someone else's pending code.
func (s *LinkService) CreateLinkCode(ctx context.Context, uid string, listID string) (*CreateLinkCodeResult, error) {
	if listID == "" {
		return nil, apperr.New(apperr.InvalidArgument, "有効なリストIDを指定してください。")
	}

	if _, err := s.lists.RequireMembership(listID, uid); err != nil {
		return nil, err
	}

	now := time.Now()
	expiresAt := now.Add(s.config.LinkCodeTTL)

	code, err := utils.CreateUnique(ctx, maxCodeAttempts,
		func() (string, error) {
			return utils.GenerateLinkCode(linkCodeLength)
		},
		func(code string) error {
			return s.database.WithContext(ctx).Create(&model.LinkCode{
				Code:      code,
				UID:       uid,
				ListID:    listID,
				Status:    model.LinkCodeStatusPending,
				CreatedAt: now.UnixMilli(),
				ExpiresAt: expiresAt.UnixMilli(),
			}).Error
		})
	if err != nil {
		if apperr.IsKind(err, apperr.ResourceExhausted) {
			return nil, apperr.New(apperr.ResourceExhausted, "リンクコードを生成できませんでした。時間をおいて再試行してください。")
		}
		return nil, apperr.Wrap(apperr.Internal, "リンクコードの生成に失敗しました。", err)
	}

	log.Info().Str("listId", listID).Str("uid", uid).Msg("Link code issued")

	return &CreateLinkCodeResult{
		Code:       code,
		ExpiresAt:  expiresAt,
		TTLMinutes: int(s.config.LinkCodeTTL / time.Minute),
	}, nil
}

// Authorize validates and consumes a submitted link code, returning a fresh
// single-use authorization code for the given client. The link code is
// flipped to expired as a side effect when it has lapsed, so a retried
// submission reports the same failure without re-checking timestamps.
func (s *LinkService) Authorize(ctx context.Context, rawCode string, clientID string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(rawCode))
	if len(code) != linkCodeLength {
		return "", apperr.New(apperr.InvalidArgument, "リンクコードを正しく入力してください。")
	}

	var linkCode model.LinkCode

	err := s.database.WithContext(ctx).Where("code = ?", code).First(&linkCode).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperr.New(apperr.NotFound, "無効なリンクコードです。")
		}
		return "", apperr.Wrap(apperr.Internal, "failed to load link code", err)
	}

	if linkCode.Status == model.LinkCodeStatusConsumed || linkCode.Status == model.LinkCodeStatusExpired {
		return "", apperr.New(apperr.FailedPrecondition, "このコードは既に使用されています。")
	}

	now := time.Now()

	if linkCode.ExpiresAt < now.UnixMilli() {
		err := s.database.WithContext(ctx).Model(&model.LinkCode{}).Where("code = ?", code).Updates(map[string]any{
			"status":     model.LinkCodeStatusExpired,
			"expired_at": now.UnixMilli(),
		}).Error
		if err != nil {
			log.Error().Err(err).Str("code", code).Msg("Failed to mark link code expired")
		}
		return "", apperr.New(apperr.DeadlineExceeded, "コードの有効期限が切れています。")
	}

	authCode, err := utils.GenerateToken(24)
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, "failed to generate authorization code", err)
	}

	err = s.database.WithContext(ctx).Create(&model.AuthCode{
		Code:      authCode,
		UID:       linkCode.UID,
		ListID:    linkCode.ListID,
		ClientID:  clientID,
		CreatedAt: now.UnixMilli(),
		ExpiresAt: now.Add(s.config.AuthCodeTTL).UnixMilli(),
	}).Error
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, "failed to store authorization code", err)
	}

	// The link code was confirmed valid by the read above; the two writes
	// do not need to be transactional.
	err = s.database.WithContext(ctx).Model(&model.LinkCode{}).Where("code = ?", code).Updates(map[string]any{
		"status":                model.LinkCodeStatusConsumed,
		"consumed_at":           now.UnixMilli(),
		"consumed_by_client_id": clientID,
	}).Error
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, "failed to consume link code", err)
	}

	log.Info().Str("listId", linkCode.ListID).Str("clientId", clientID).Msg("Link code consumed")

	return authCode, nil
}
