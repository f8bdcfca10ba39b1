package service_test

import (
	"testing"

	"github.com/kaimonolist/linkd/internal/apperr"
	"github.com/kaimonolist/linkd/internal/model"
	"github.com/kaimonolist/linkd/internal/service"

	"gotest.tools/v3/assert"
)

func TestRequireMembership(t *testing.T) {
	db := setupDatabase(t)
	lists := service.NewListService(db)

	seedList(t, db, "list-1", "買い物リスト", "user-1")

	list, err := lists.RequireMembership("list-1", "user-1")

	assert.NilError(t, err)
	assert.Equal(t, "買い物リスト", list.Name)

	_, err = lists.RequireMembership("list-1", "stranger")

	assert.Assert(t, apperr.IsKind(err, apperr.PermissionDenied))

	_, err = lists.RequireMembership("no-such-list", "user-1")

	assert.Assert(t, apperr.IsKind(err, apperr.NotFound))
}

func TestAddItem(t *testing.T) {
	db := setupDatabase(t)
	lists := service.NewListService(db)

	seedList(t, db, "list-1", "買い物リスト", "user-1")

	item, err := lists.AddItem("list-1", "user-1", "  牛乳  ")

	assert.NilError(t, err)
	assert.Equal(t, "牛乳", item.Name)
	assert.Equal(t, model.ItemSourceAlexa, item.Source)
	assert.Equal(t, "user-1", item.CreatedBy)
	assert.Assert(t, item.ID != "")

	var stored model.ListItem

	err = db.Where("id = ?", item.ID).First(&stored).Error

	assert.NilError(t, err)
	assert.Equal(t, "list-1", stored.ListID)
	assert.Assert(t, !stored.Completed)
}

func TestAddItemFailures(t *testing.T) {
	db := setupDatabase(t)
	lists := service.NewListService(db)

	seedList(t, db, "list-1", "買い物リスト", "user-1")

	_, err := lists.AddItem("list-1", "user-1", "   ")

	assert.Assert(t, apperr.IsKind(err, apperr.InvalidArgument))

	_, err = lists.AddItem("no-such-list", "user-1", "牛乳")

	assert.Assert(t, apperr.IsKind(err, apperr.NotFound))

	_, err = lists.AddItem("list-1", "stranger", "牛乳")

	assert.Assert(t, apperr.IsKind(err, apperr.PermissionDenied))
}
