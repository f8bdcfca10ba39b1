package service

import (
	"context"
	"errors"
	"time"

	"github.com/kaimonolist/linkd/internal/apperr"
	"github.com/kaimonolist/linkd/internal/model"
	"github.com/kaimonolist/linkd/internal/utils"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const recoverySecretBytes = 32

type RecoveryService struct {
	database *gorm.DB
	lists    *ListService
}

func NewRecoveryService(database *gorm.DB, lists *ListService) *RecoveryService {
	return &RecoveryService{
		database: database,
		lists:    lists,
	}
}

type RegisterRecoveryResult struct {
	ListID      string `json:"listId"`
	RecoveryKey string `json:"recoveryKey"`
}

type ClaimRecoveryResult struct {
	ListID        string `json:"listId"`
	ListName      string `json:"listName"`
	AlreadyMember bool   `json:"alreadyMember"`
}

// Register mints or refreshes a device recovery secret for the caller's
// list. The plaintext secret is returned here and never again; at rest
// only its sha256 digest exists.
func (rs *RecoveryService) Register(ctx context.Context, uid string, listID string, existingKey string) (*RegisterRecoveryResult, error) {
	if listID == "" {
		return nil, apperr.New(apperr.InvalidArgument, "有効なリストIDを指定してください。")
	}

	if _, err := rs.lists.RequireMembership(listID, uid); err != nil {
		return nil, err
	}

	now := time.Now().UnixMilli()

	if existingKey != "" {
		hash := utils.HashRecoveryKey(existingKey)

		var record model.RecoveryKey

		err := rs.database.WithContext(ctx).Where("key_hash = ?", hash).First(&record).Error
		if err == nil && !record.Disabled && record.ListID == listID {
			err = rs.database.WithContext(ctx).Model(&model.RecoveryKey{}).Where("key_hash = ?", hash).Updates(map[string]any{
				"last_registered_by": uid,
				"last_registered_at": now,
			}).Error
			if err != nil {
				return nil, apperr.Wrap(apperr.Internal, "failed to refresh recovery key", err)
			}

			return &RegisterRecoveryResult{ListID: listID, RecoveryKey: existingKey}, nil
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Wrap(apperr.Internal, "failed to load recovery key", err)
		}
	}

	var secret string

	_, err := utils.CreateUnique(ctx, maxCodeAttempts,
		func() (string, error) {
			generated, err := utils.GenerateToken(recoverySecretBytes)
			if err != nil {
				return "", err
			}
			secret = generated
			return utils.HashRecoveryKey(generated), nil
		},
		func(hash string) error {
			return rs.database.WithContext(ctx).Create(&model.RecoveryKey{
				KeyHash:          hash,
				ListID:           listID,
				LastRegisteredBy: uid,
				LastRegisteredAt: now,
				CreatedAt:        now,
				Disabled:         false,
			}).Error
		})
	if err != nil {
		if apperr.IsKind(err, apperr.ResourceExhausted) {
			return nil, err
		}
		return nil, apperr.Wrap(apperr.Internal, "failed to store recovery key", err)
	}

	log.Info().Str("listId", listID).Str("uid", uid).Msg("Recovery key registered")

	return &RegisterRecoveryResult{ListID: listID, RecoveryKey: secret}, nil
}

// Claim reclaims list membership for a new device instance. The record
// read, the list membership read and the membership write run in one
// transaction so concurrent claims cannot race. A key whose list is gone
// is permanently disabled, which self-heals orphaned records.
func (rs *RecoveryService) Claim(ctx context.Context, uid string, recoveryKey string) (*ClaimRecoveryResult, error) {
	if recoveryKey == "" {
		return nil, apperr.New(apperr.InvalidArgument, "有効なリカバリーキーを指定してください。")
	}

	hash := utils.HashRecoveryKey(recoveryKey)
	now := time.Now().UnixMilli()

	var result ClaimRecoveryResult
	var orphaned bool

	err := rs.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record model.RecoveryKey

		err := tx.Where("key_hash = ?", hash).First(&record).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.New(apperr.NotFound, "リカバリーキーが見つかりませんでした。")
			}
			return apperr.Wrap(apperr.Internal, "failed to load recovery key", err)
		}

		if record.Disabled {
			return apperr.New(apperr.FailedPrecondition, "このリカバリーキーは無効化されています。")
		}

		var list model.List

		err = tx.Where("id = ?", record.ListID).First(&list).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Commit the disable so the orphaned key stays dead.
				orphaned = true
				return tx.Model(&model.RecoveryKey{}).Where("key_hash = ?", hash).Updates(map[string]any{
					"disabled":        true,
					"disabled_reason": model.RecoveryDisabledListNotFound,
				}).Error
			}
			return apperr.Wrap(apperr.Internal, "failed to load list", err)
		}

		alreadyMember, err := rs.lists.AddMember(tx, &list, uid)
		if err != nil {
			return err
		}

		err = tx.Model(&model.RecoveryKey{}).Where("key_hash = ?", hash).Updates(map[string]any{
			"last_claimed_by": uid,
			"last_claimed_at": now,
		}).Error
		if err != nil {
			return apperr.Wrap(apperr.Internal, "failed to update recovery key", err)
		}

		result = ClaimRecoveryResult{
			ListID:        list.ID,
			ListName:      list.Name,
			AlreadyMember: alreadyMember,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if orphaned {
		return nil, apperr.New(apperr.NotFound, "リカバリー先のリストが存在しません。")
	}

	log.Info().Str("listId", result.ListID).Str("uid", uid).Bool("alreadyMember", result.AlreadyMember).Msg("Recovery key claimed")

	return &result, nil
}
