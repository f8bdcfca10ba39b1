package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/kaimonolist/linkd/internal/model"
	"github.com/kaimonolist/linkd/internal/service"

	"gorm.io/gorm"
	"gotest.tools/v3/assert"
)

func setupCleanupService(t *testing.T) (*service.CleanupService, *gorm.DB) {
	t.Helper()

	db := setupDatabase(t)

	cleanup := service.NewCleanupService(service.CleanupServiceConfig{
		Grace:           5 * time.Minute,
		InviteRetention: 30 * 24 * time.Hour,
	}, db)

	return cleanup, db
}

func TestPerformCleanup(t *testing.T) {
	cleanup, db := setupCleanupService(t)

	now := time.Now()
	stale := now.Add(-time.Hour).UnixMilli()
	fresh := now.Add(time.Hour).UnixMilli()

	// Expired but within the grace window, must survive.
	graced := now.Add(-time.Minute).UnixMilli()

	assert.NilError(t, db.Create(&model.LinkCode{Code: "STALE1", UID: "u", ListID: "l", Status: model.LinkCodeStatusPending, CreatedAt: stale, ExpiresAt: stale}).Error)
	assert.NilError(t, db.Create(&model.LinkCode{Code: "GRACE1", UID: "u", ListID: "l", Status: model.LinkCodeStatusPending, CreatedAt: graced, ExpiresAt: graced}).Error)
	assert.NilError(t, db.Create(&model.LinkCode{Code: "FRESH1", UID: "u", ListID: "l", Status: model.LinkCodeStatusPending, CreatedAt: fresh, ExpiresAt: fresh}).Error)

	assert.NilError(t, db.Create(&model.AuthCode{Code: "ac-stale", UID: "u", ListID: "l", ClientID: "c", CreatedAt: stale, ExpiresAt: stale}).Error)
	assert.NilError(t, db.Create(&model.AuthCode{Code: "ac-fresh", UID: "u", ListID: "l", ClientID: "c", CreatedAt: fresh, ExpiresAt: fresh}).Error)

	assert.NilError(t, db.Create(&model.RefreshToken{Token: "rt-stale", UID: "u", ListID: "l", ClientID: "c", CreatedAt: stale, ExpiresAt: stale}).Error)
	assert.NilError(t, db.Create(&model.RefreshToken{Token: "rt-fresh", UID: "u", ListID: "l", ClientID: "c", CreatedAt: fresh, ExpiresAt: fresh}).Error)

	summary, err := cleanup.PerformCleanup(context.Background())

	assert.NilError(t, err)
	assert.Equal(t, 1, summary.LinkCodes)
	assert.Equal(t, 1, summary.AuthCodes)
	assert.Equal(t, 1, summary.RefreshTokens)

	var codes []string

	assert.NilError(t, db.Model(&model.LinkCode{}).Order("code").Pluck("code", &codes).Error)
	assert.DeepEqual(t, []string{"FRESH1", "GRACE1"}, codes)

	// Second run touches nothing.
	summary, err = cleanup.PerformCleanup(context.Background())

	assert.NilError(t, err)
	assert.Equal(t, 0, summary.LinkCodes)
	assert.Equal(t, 0, summary.AuthCodes)
	assert.Equal(t, 0, summary.RefreshTokens)
}

func TestPerformCleanupInvites(t *testing.T) {
	cleanup, db := setupCleanupService(t)

	now := time.Now()

	// Active and expired within retention: flipped, not deleted.
	assert.NilError(t, db.Create(&model.Invite{Code: "recent", ListID: "l", Status: model.InviteStatusActive, CreatedAt: now.Add(-48 * time.Hour).UnixMilli(), ExpiresAt: now.Add(-time.Hour).UnixMilli()}).Error)

	// Expired past retention: deleted outright.
	old := now.Add(-40 * 24 * time.Hour).UnixMilli()
	assert.NilError(t, db.Create(&model.Invite{Code: "ancient", ListID: "l", Status: model.InviteStatusActive, CreatedAt: old, ExpiresAt: now.Add(-35 * 24 * time.Hour).UnixMilli()}).Error)

	// Used long ago with a far-future expiry: swept by the stale pass.
	assert.NilError(t, db.Create(&model.Invite{Code: "used-old", ListID: "l", Status: model.InviteStatusUsed, CreatedAt: old, ExpiresAt: now.Add(-35 * 24 * time.Hour).UnixMilli(), UsedBy: "u", UsedAt: old}).Error)

	// Still active and unexpired: untouched.
	assert.NilError(t, db.Create(&model.Invite{Code: "live", ListID: "l", Status: model.InviteStatusActive, CreatedAt: now.UnixMilli(), ExpiresAt: now.Add(time.Hour).UnixMilli()}).Error)

	summary, err := cleanup.PerformCleanup(context.Background())

	assert.NilError(t, err)
	assert.Equal(t, 1, summary.InvitesExpired)
	assert.Equal(t, 2, summary.InvitesDeleted)

	var recent model.Invite

	assert.NilError(t, db.Where("code = ?", "recent").First(&recent).Error)
	assert.Equal(t, model.InviteStatusExpired, recent.Status)
	assert.Assert(t, recent.ExpiredAt > 0)

	var live model.Invite

	assert.NilError(t, db.Where("code = ?", "live").First(&live).Error)
	assert.Equal(t, model.InviteStatusActive, live.Status)

	var count int64

	assert.NilError(t, db.Model(&model.Invite{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	// Idempotent.
	summary, err = cleanup.PerformCleanup(context.Background())

	assert.NilError(t, err)
	assert.Equal(t, 0, summary.InvitesExpired)
	assert.Equal(t, 0, summary.InvitesDeleted)
}

func TestPerformCleanupPagesThroughBatches(t *testing.T) {
	cleanup, db := setupCleanupService(t)

	stale := time.Now().Add(-time.Hour)

	// More rows than one batch, expiries staggered to exercise paging.
	for i := range 450 {
		code := fmt.Sprintf("AC%04d", i)
		expiry := stale.Add(time.Duration(i) * time.Millisecond).UnixMilli()
		assert.NilError(t, db.Create(&model.AuthCode{Code: code, UID: "u", ListID: "l", ClientID: "c", CreatedAt: expiry, ExpiresAt: expiry}).Error)
	}

	summary, err := cleanup.PerformCleanup(context.Background())

	assert.NilError(t, err)
	assert.Equal(t, 450, summary.AuthCodes)

	var count int64

	assert.NilError(t, db.Model(&model.AuthCode{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}
