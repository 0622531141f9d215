// Package sqlitetest opens an in-memory database carrying every table, for
// repository tests.
package sqlitetest

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	assignmentDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/assignment"
	departmentDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/department"
	projectDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/project"
	timesheetDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/timesheet"
	userDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/user"
)

func Open() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	// every connection to :memory: is a fresh database
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&userDatamodel.User{},
		&departmentDatamodel.Department{},
		&projectDatamodel.Project{},
		&assignmentDatamodel.ProjectAssignment{},
		&timesheetDatamodel.Timesheet{},
	)
	if err != nil {
		return nil, err
	}
	return db, nil
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
