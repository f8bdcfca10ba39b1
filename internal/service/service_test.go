package service_test

import (
	"encoding/json"
	"testing"

	"github.com/kaimonolist/linkd/internal/model"
	"github.com/kaimonolist/linkd/internal/service"

	"gorm.io/gorm"
	"gotest.tools/v3/assert"
)

func setupDatabase(t *testing.T) *gorm.DB {
	t.Helper()

	databaseService := service.NewDatabaseService(service.DatabaseServiceConfig{
		DatabasePath: ":memory:",
	})

	err := databaseService.Init()

	assert.NilError(t, err)

	return databaseService.GetDatabase()
}

func seedList(t *testing.T, db *gorm.DB, id string, name string, members ...string) {
	t.Helper()

	encoded, err := json.Marshal(members)

	assert.NilError(t, err)

	err = db.Create(&model.List{
		ID:      id,
		Name:    name,
		Members: string(encoded),
	}).Error

	assert.NilError(t, err)
}

func listMembers(t *testing.T, db *gorm.DB, id string) []string {
	t.Helper()

	var list model.List

	err := db.Where("id = ?", id).First(&list).Error

	assert.NilError(t, err)

	var members []string

	err = json.Unmarshal([]byte(list.Members), &members)

	assert.NilError(t, err)

	return members
}
