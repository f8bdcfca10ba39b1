package service

import (
	"context"
	"time"

	"github.com/kaimonolist/linkd/internal/apperr"
	"github.com/kaimonolist/linkd/internal/model"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const cleanupBatchSize = 200

type CleanupServiceConfig struct {
	Grace           time.Duration
	InviteRetention time.Duration
}

// CleanupService prunes expired credentials and invites. Runs are
// idempotent and page through bounded batches so they can interleave with
// normal traffic.
type CleanupService struct {
	config   CleanupServiceConfig
	database *gorm.DB
}

func NewCleanupService(config CleanupServiceConfig, database *gorm.DB) *CleanupService {
	return &CleanupService{
		config:   config,
		database: database,
	}
}

type CleanupSummary struct {
	LinkCodes      int `json:"linkCodes"`
	AuthCodes      int `json:"authCodes"`
	RefreshTokens  int `json:"refreshTokens"`
	InvitesExpired int `json:"invitesExpired"`
	InvitesDeleted int `json:"invitesDeleted"`
}

func (cs *CleanupService) PerformCleanup(ctx context.Context) (*CleanupSummary, error) {
	now := time.Now()
	summary := &CleanupSummary{}

	// Credentials get a grace period beyond their expiry to tolerate
	// clock skew between writers.
	credentialCutoff := now.Add(-cs.config.Grace).UnixMilli()

	var err error

	summary.LinkCodes, err = cs.purgeExpired(ctx, &model.LinkCode{}, "code", credentialCutoff)
	if err != nil {
		return summary, err
	}

	summary.AuthCodes, err = cs.purgeExpired(ctx, &model.AuthCode{}, "code", credentialCutoff)
	if err != nil {
		return summary, err
	}

	summary.RefreshTokens, err = cs.purgeExpired(ctx, &model.RefreshToken{}, "token", credentialCutoff)
	if err != nil {
		return summary, err
	}

	if err := cs.cleanupInvites(ctx, now, summary); err != nil {
		return summary, err
	}

	log.Info().
		Int("linkCodes", summary.LinkCodes).
		Int("authCodes", summary.AuthCodes).
		Int("refreshTokens", summary.RefreshTokens).
		Int("invitesExpired", summary.InvitesExpired).
		Int("invitesDeleted", summary.InvitesDeleted).
		Msg("Cleanup finished")

	return summary, nil
}

// purgeExpired deletes records whose expiry precedes cutoff, paging by
// expiry so each batch stays bounded.
func (cs *CleanupService) purgeExpired(ctx context.Context, record any, keyColumn string, cutoff int64) (int, error) {
	total := 0

	for {
		var keys []string

		err := cs.database.WithContext(ctx).Model(record).
			Where("expires_at < ?", cutoff).
			Order("expires_at").
			Limit(cleanupBatchSize).
			Pluck(keyColumn, &keys).Error
		if err != nil {
			return total, apperr.Wrap(apperr.Internal, "failed to query expiring records", err)
		}

		if len(keys) == 0 {
			return total, nil
		}

		result := cs.database.WithContext(ctx).Where(keyColumn+" IN ?", keys).Delete(record)
		if result.Error != nil {
			return total, apperr.Wrap(apperr.Internal, "failed to delete expired records", result.Error)
		}

		total += int(result.RowsAffected)

		if len(keys) < cleanupBatchSize {
			return total, nil
		}
	}
}

// cleanupInvites walks invites past their expiry: within the retention
// window an active invite is flipped to expired, beyond it the invite is
// deleted. A second pass removes non-active invites past retention whose
// expiry never lapsed (e.g. used ones).
func (cs *CleanupService) cleanupInvites(ctx context.Context, now time.Time, summary *CleanupSummary) error {
	nowMillis := now.UnixMilli()
	retentionCutoff := now.Add(-cs.config.InviteRetention).UnixMilli()

	cursor := int64(-1)

	for {
		var invites []model.Invite

		err := cs.database.WithContext(ctx).
			Where("expires_at < ? AND expires_at > ?", nowMillis, cursor).
			Order("expires_at").
			Limit(cleanupBatchSize).
			Find(&invites).Error
		if err != nil {
			return apperr.Wrap(apperr.Internal, "failed to query invites", err)
		}

		if len(invites) == 0 {
			break
		}

		for _, invite := range invites {
			if invite.ExpiresAt < retentionCutoff {
				err := cs.database.WithContext(ctx).Delete(&model.Invite{}, "code = ?", invite.Code).Error
				if err != nil {
					return apperr.Wrap(apperr.Internal, "failed to delete invite", err)
				}
				summary.InvitesDeleted++
				continue
			}

			if invite.Status == model.InviteStatusActive {
				err := cs.database.WithContext(ctx).Model(&model.Invite{}).Where("code = ? AND status = ?", invite.Code, model.InviteStatusActive).Updates(map[string]any{
					"status":     model.InviteStatusExpired,
					"expired_at": nowMillis,
				}).Error
				if err != nil {
					return apperr.Wrap(apperr.Internal, "failed to expire invite", err)
				}
				summary.InvitesExpired++
			}
		}

		cursor = invites[len(invites)-1].ExpiresAt

		if len(invites) < cleanupBatchSize {
			break
		}
	}

	// Used or expired invites linger until the retention window has
	// passed since they stopped being active.
	for {
		var codes []string

		err := cs.database.WithContext(ctx).Model(&model.Invite{}).
			Where("status <> ? AND expires_at < ?", model.InviteStatusActive, retentionCutoff).
			Order("expires_at").
			Limit(cleanupBatchSize).
			Pluck("code", &codes).Error
		if err != nil {
			return apperr.Wrap(apperr.Internal, "failed to query stale invites", err)
		}

		if len(codes) == 0 {
			break
		}

		result := cs.database.WithContext(ctx).Where("code IN ?", codes).Delete(&model.Invite{})
		if result.Error != nil {
			return apperr.Wrap(apperr.Internal, "failed to delete stale invites", result.Error)
		}

		summary.InvitesDeleted += int(result.RowsAffected)

		if len(codes) < cleanupBatchSize {
			break
		}
	}

	return nil
}
