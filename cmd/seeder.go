package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	assignmentDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/assignment"
	departmentDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/department"
	projectDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/project"
	timesheetDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/timesheet"
	userDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/user"
)

const seedPassword = "password"

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, lg, err := loadServerConfig()
		if err != nil {
			return err
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			return err
		}
		defer sqlDB.Close()

		db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB.DB}), &gorm.Config{TranslateError: true})
		if err != nil {
			return fmt.Errorf("failed to open gorm: %w", err)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), cfg.Security.BCryptCost)
		if err != nil {
			return fmt.Errorf("failed to hash seed password: %w", err)
		}

		return db.Transaction(func(tx *gorm.DB) error {
			if clearData {
				if err := clearSeedData(tx); err != nil {
					return err
				}
				lg.Info("cleared existing data")
			}

			engineering, err := ensureDepartment(tx, "Engineering", "Product engineering")
			if err != nil {
				return err
			}
			operations, err := ensureDepartment(tx, "Operations", "Internal operations")
			if err != nil {
				return err
			}

			users := []struct {
				email, name, role string
				department        *int64
			}{
				{"admin@mail.com", "Padil Admin", "admin", nil},
				{"manager@mail.com", "Maya Manager", "manager", &engineering.ID},
				{"fadhil@mail.com", "Fadhil", "employee", &engineering.ID},
				{"rani@mail.com", "Rani", "employee", &engineering.ID},
				{"ops.manager@mail.com", "Omar Ops", "manager", &operations.ID},
			}
			ids := make(map[string]int64, len(users))
			for _, u := range users {
				id, err := ensureUser(tx, u.email, u.name, u.role, string(hash), u.department)
				if err != nil {
					return err
				}
				ids[u.email] = id
				lg.Info("seeded user", "email", u.email, "role", u.role)
			}

			if err := setManager(tx, engineering, ids["manager@mail.com"]); err != nil {
				return err
			}
			if err := setManager(tx, operations, ids["ops.manager@mail.com"]); err != nil {
				return err
			}

			year := time.Now().Year()
			apollo, err := ensureProject(tx, "Apollo", engineering.ID,
				time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
				time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC))
			if err != nil {
				return err
			}
			for email, role := range map[string]string{"fadhil@mail.com": "DEVELOPER", "rani@mail.com": "TESTER"} {
				if err := ensureAssignment(tx, apollo.ID, ids[email], role); err != nil {
					return err
				}
			}

			lg.Info("seed complete", "password", seedPassword)
			return nil
		})
	},
}

func clearSeedData(tx *gorm.DB) error {
	all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
	steps := []*gorm.DB{
		all.Delete(&timesheetDatamodel.Timesheet{}),
		all.Delete(&assignmentDatamodel.ProjectAssignment{}),
		all.Delete(&projectDatamodel.Project{}),
		all.Model(&departmentDatamodel.Department{}).Update("manager_id", nil),
		all.Delete(&userDatamodel.User{}),
		all.Delete(&departmentDatamodel.Department{}),
	}
	for _, step := range steps {
		if step.Error != nil {
			return fmt.Errorf("failed to clear data: %w", step.Error)
		}
	}
	return nil
}

func ensureDepartment(tx *gorm.DB, name, description string) (*departmentDatamodel.Department, error) {
	var d departmentDatamodel.Department
	err := tx.Where("name = ?", name).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		d = departmentDatamodel.Department{Name: name, Description: description}
		err = tx.Create(&d).Error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to seed department %s: %w", name, err)
	}
	return &d, nil
}

func ensureUser(tx *gorm.DB, email, name, role, hash string, departmentID *int64) (int64, error) {
	var u userDatamodel.User
	err := tx.Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		u = userDatamodel.User{
			Email:        email,
			Name:         name,
			PasswordHash: hash,
			Role:         role,
			DepartmentID: departmentID,
			IsActive:     true,
		}
		err = tx.Create(&u).Error
	}
	if err != nil {
		return 0, fmt.Errorf("failed to seed user %s: %w", email, err)
	}
	return u.ID, nil
}

func setManager(tx *gorm.DB, d *departmentDatamodel.Department, managerID int64) error {
	if err := tx.Model(d).Update("manager_id", managerID).Error; err != nil {
		return fmt.Errorf("failed to set manager of %s: %w", d.Name, err)
	}
	return nil
}

func ensureProject(tx *gorm.DB, name string, departmentID int64, start, end time.Time) (*projectDatamodel.Project, error) {
	var p projectDatamodel.Project
	err := tx.Where("name = ? AND department_id = ?", name, departmentID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		p = projectDatamodel.Project{
			Name:         name,
			StartDate:    start,
			EndDate:      end,
			DepartmentID: departmentID,
			Status:       "ACTIVE",
		}
		err = tx.Create(&p).Error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to seed project %s: %w", name, err)
	}
	return &p, nil
}

func ensureAssignment(tx *gorm.DB, projectID, userID int64, role string) error {
	var count int64
	if err := tx.Model(&assignmentDatamodel.ProjectAssignment{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return tx.Create(&assignmentDatamodel.ProjectAssignment{
		ProjectID:     projectID,
		UserID:        userID,
		RoleInProject: role,
	}).Error
}
