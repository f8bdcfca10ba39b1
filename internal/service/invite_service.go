package service

import (
	"context"
	"errors"
	"time"

	"github.com/kaimonolist/linkd/internal/apperr"
	"github.com/kaimonolist/linkd/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type InviteServiceConfig struct {
	InviteTTL time.Duration
}

type InviteService struct {
	config   InviteServiceConfig
	database *gorm.DB
	lists    *ListService
}

func NewInviteService(config InviteServiceConfig, database *gorm.DB, lists *ListService) *InviteService {
	return &InviteService{
		config:   config,
		database: database,
		lists:    lists,
	}
}

type CreateInviteResult struct {
	InviteCode string    `json:"inviteCode"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

type AcceptInviteResult struct {
	ListID        string `json:"listId"`
	AlreadyMember bool   `json:"alreadyMember"`
}

func (is *InviteService) CreateInvite(ctx context.Context, uid string, listID string) (*CreateInviteResult, error) {
	if listID == "" {
		return nil, apperr.New(apperr.InvalidArgument, "有効なリストIDを指定してください。")
	}

	if _, err := is.lists.RequireMembership(listID, uid); err != nil {
		return nil, err
	}

	now := time.Now()
	expiresAt := now.Add(is.config.InviteTTL)

	invite := model.Invite{
		Code:      uuid.New().String(),
		ListID:    listID,
		Status:    model.InviteStatusActive,
		CreatedBy: uid,
		CreatedAt: now.UnixMilli(),
		ExpiresAt: expiresAt.UnixMilli(),
	}

	if err := is.database.WithContext(ctx).Create(&invite).Error; err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to create invite", err)
	}

	log.Info().Str("listId", listID).Str("uid", uid).Msg("Invite created")

	return &CreateInviteResult{InviteCode: invite.Code, ExpiresAt: expiresAt}, nil
}

// AcceptInvite redeems an invite code for the caller. The membership read
// and write happen in one transaction to avoid racing concurrent claims.
func (is *InviteService) AcceptInvite(ctx context.Context, uid string, inviteCode string) (*AcceptInviteResult, error) {
	if inviteCode == "" {
		return nil, apperr.New(apperr.InvalidArgument, "有効な招待コードを指定してください。")
	}

	var invite model.Invite

	err := is.database.WithContext(ctx).Where("code = ?", inviteCode).First(&invite).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "招待コードが見つかりませんでした。")
		}
		return nil, apperr.Wrap(apperr.Internal, "failed to load invite", err)
	}

	if invite.ListID == "" {
		return nil, apperr.New(apperr.FailedPrecondition, "招待先のリスト情報が無効です。")
	}

	if invite.Status != "" && invite.Status != model.InviteStatusActive {
		return nil, apperr.New(apperr.FailedPrecondition, "この招待リンクは使用できません。")
	}

	now := time.Now()

	if invite.ExpiresAt != 0 && invite.ExpiresAt < now.UnixMilli() {
		err := is.database.WithContext(ctx).Model(&model.Invite{}).Where("code = ?", inviteCode).Updates(map[string]any{
			"status":     model.InviteStatusExpired,
			"expired_at": now.UnixMilli(),
		}).Error
		if err != nil {
			log.Error().Err(err).Str("inviteCode", inviteCode).Msg("Failed to mark invite expired")
		}
		return nil, apperr.New(apperr.DeadlineExceeded, "招待リンクの有効期限が切れています。")
	}

	var result AcceptInviteResult

	err = is.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var list model.List

		err := tx.Where("id = ?", invite.ListID).First(&list).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.New(apperr.NotFound, "招待先のリストが存在しません。")
			}
			return apperr.Wrap(apperr.Internal, "failed to load list", err)
		}

		alreadyMember, err := is.lists.AddMember(tx, &list, uid)
		if err != nil {
			return err
		}

		err = tx.Model(&model.Invite{}).Where("code = ?", inviteCode).Updates(map[string]any{
			"status":  model.InviteStatusUsed,
			"used_at": now.UnixMilli(),
			"used_by": uid,
		}).Error
		if err != nil {
			return apperr.Wrap(apperr.Internal, "failed to mark invite used", err)
		}

		result = AcceptInviteResult{ListID: invite.ListID, AlreadyMember: alreadyMember}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("inviteCode", inviteCode).Str("uid", uid).Str("listId", result.ListID).Msg("Invite accepted")

	return &result, nil
}
