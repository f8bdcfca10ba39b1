package service

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kaimonolist/linkd/internal/assets"

	"github.com/glebarez/sqlite"
	"github.com/golang-migrate/migrate/v4"
	sqliteMigrate "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"
)

type DatabaseServiceConfig struct {
	DatabasePath string
}

type DatabaseService struct {
	config   DatabaseServiceConfig
	database *gorm.DB
}

func NewDatabaseService(config DatabaseServiceConfig) *DatabaseService {
	return &DatabaseService{
		config: config,
	}
}

func (ds *DatabaseService) Init() error {
	if !strings.Contains(ds.config.DatabasePath, ":memory:") {
		dir := filepath.Dir(ds.config.DatabasePath)

		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	// TranslateError turns sqlite unique constraint violations into
	// gorm.ErrDuplicatedKey, which the unique key generators rely on.
	gormDB, err := gorm.Open(sqlite.Open(ds.config.DatabasePath), &gorm.Config{
		TranslateError: true,
	})

	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()

	if err != nil {
		return err
	}

	sqlDB.SetMaxOpenConns(1)

	err = ds.migrateDatabase(sqlDB)

	if err != nil && err != migrate.ErrNoChange {
		return err
	}

	ds.database = gormDB
	return nil
}

func (ds *DatabaseService) migrateDatabase(sqlDB *sql.DB) error {
	data, err := iofs.New(assets.Migrations, "migrations")

	if err != nil {
		return err
	}

	target, err := sqliteMigrate.WithInstance(sqlDB, &sqliteMigrate.Config{})

	if err != nil {
		return err
	}

	migrator, err := migrate.NewWithInstance("iofs", data, "linkd", target)

	if err != nil {
		return err
	}

	return migrator.Up()
}

func (ds *DatabaseService) GetDatabase() *gorm.DB {
	return ds.database
}
