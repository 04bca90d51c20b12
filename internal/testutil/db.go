// Package testutil provides shared database helpers for tests. Tests run
// against an in-memory SQLite database migrated to the same shape as the
// production schema, including the demo sandbox ticket table and the unique
// sequence-number indexes the allocator relies on.
package testutil

import (
	"testing"
	"time"

	"github.com/atlasfield/fieldtrack-api/internal/database"
	"github.com/atlasfield/fieldtrack-api/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates a fresh in-memory database with the full schema
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err, "failed to open in-memory database")

	require.NoError(t, database.AutoMigrate(db), "failed to migrate test schema")

	// Unique backstops for the number allocator, one per ticket table.
	// Mirrors the production migrations; AutoMigrate cannot create them
	// because the two tables share one struct and index names are global.
	for _, stmt := range []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_service_tickets_number
			ON service_tickets (employee_initials, ticket_year, sequence_number)
			WHERE sequence_number IS NOT NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_service_tickets_demo_number
			ON ` + database.DemoTicketsTable + ` (employee_initials, ticket_year, sequence_number)
			WHERE sequence_number IS NOT NULL`,
	} {
		require.NoError(t, db.Exec(stmt).Error)
	}

	return db
}

// CreateTestCustomer inserts a customer row and returns it
func CreateTestCustomer(t *testing.T, db *gorm.DB, name string) *domain.Customer {
	t.Helper()
	customer := &domain.Customer{
		Name:     name,
		Email:    "billing@example.com",
		IsActive: true,
	}
	require.NoError(t, db.Create(customer).Error)
	return customer
}

// CreateTestProject inserts a project for the customer and returns it
func CreateTestProject(t *testing.T, db *gorm.DB, customerID uuid.UUID, name string) *domain.Project {
	t.Helper()
	project := &domain.Project{
		Name:       name,
		CustomerID: customerID,
		IsActive:   true,
	}
	require.NoError(t, db.Create(project).Error)
	return project
}

// CreateTestUser inserts a user row and returns it
func CreateTestUser(t *testing.T, db *gorm.DB, id, firstName, lastName string) *domain.User {
	t.Helper()
	user := &domain.User{
		ID:          id,
		Email:       id + "@example.com",
		FirstName:   firstName,
		LastName:    lastName,
		DisplayName: firstName + " " + lastName,
		Roles:       []string{string(domain.RoleEmployee)},
		IsActive:    true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// Date builds a UTC calendar date for test fixtures
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
