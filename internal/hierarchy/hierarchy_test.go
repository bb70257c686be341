package hierarchy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/retailstack/catalog/internal/db"
	"github.com/retailstack/catalog/pkg/logger"
)

func setupTestDB(t *testing.T) *db.DB {
	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	database := &db.DB{DB: gormDB}
	require.NoError(t, db.RunMigrations(database))
	require.NoError(t, db.SeedHierarchy(database))

	return database
}

func loadTestHierarchy(t *testing.T) *Hierarchy {
	database := setupTestDB(t)
	log := logger.NewLogger("test", "info")

	hier, err := Load(context.Background(), database, log)
	require.NoError(t, err)
	return hier
}

func TestDepartments(t *testing.T) {
	hier := loadTestHierarchy(t)

	assert.Equal(t, []string{"Electronics", "Home"}, hier.Departments())
}

func TestClassesOf(t *testing.T) {
	hier := loadTestHierarchy(t)

	assert.Equal(t, []string{"Audio", "Video"}, hier.ClassesOf(1))
	assert.Equal(t, []string{"Kitchen"}, hier.ClassesOf(2))

	// Unknown department has no classes.
	assert.Empty(t, hier.ClassesOf(99))
}

func TestFamiliesOf(t *testing.T) {
	hier := loadTestHierarchy(t)

	assert.Equal(t, []string{"Headphones", "Speakers"}, hier.FamiliesOf(1, 1))
	assert.Equal(t, []string{"Televisions"}, hier.FamiliesOf(1, 2))
	assert.Equal(t, []string{"Cookware"}, hier.FamiliesOf(2, 1))

	// Family lists are scoped by both department and class.
	assert.Empty(t, hier.FamiliesOf(2, 2))
	assert.Empty(t, hier.FamiliesOf(99, 1))
}

func TestNameResolution(t *testing.T) {
	hier := loadTestHierarchy(t)

	id, ok := hier.DepartmentID("Electronics")
	assert.True(t, ok)
	assert.Equal(t, 1, id)

	id, ok = hier.ClassID(1, "Audio")
	assert.True(t, ok)
	assert.Equal(t, 1, id)

	id, ok = hier.FamilyID(1, 1, "Speakers")
	assert.True(t, ok)
	assert.Equal(t, 2, id)

	// Class names resolve only within their own department.
	_, ok = hier.ClassID(2, "Audio")
	assert.False(t, ok)

	_, ok = hier.DepartmentID("Garden")
	assert.False(t, ok)
}

func TestIDResolution(t *testing.T) {
	hier := loadTestHierarchy(t)

	name, ok := hier.DepartmentName(2)
	assert.True(t, ok)
	assert.Equal(t, "Home", name)

	name, ok = hier.ClassName(1, 2)
	assert.True(t, ok)
	assert.Equal(t, "Video", name)

	name, ok = hier.FamilyName(1, 1, 1)
	assert.True(t, ok)
	assert.Equal(t, "Headphones", name)

	_, ok = hier.DepartmentName(99)
	assert.False(t, ok)
	_, ok = hier.FamilyName(1, 1, 99)
	assert.False(t, ok)
}

func TestEmptyHierarchy(t *testing.T) {
	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	database := &db.DB{DB: gormDB}
	require.NoError(t, db.RunMigrations(database))

	hier, err := Load(context.Background(), database, logger.NewLogger("test", "info"))
	require.NoError(t, err)

	assert.Empty(t, hier.Departments())
	assert.Empty(t, hier.ClassesOf(1))
}
