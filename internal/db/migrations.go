package db

// RunMigrations runs all database migrations
func RunMigrations(db *DB) error {
	return db.AutoMigrate(
		&Department{},
		&Class{},
		&Family{},
		&Product{},
	)
}

// SeedHierarchy loads the default classification tree when the hierarchy
// tables are empty. The hierarchy is maintained outside this service and
// treated as read-only afterwards.
func SeedHierarchy(db *DB) error {
	var count int64
	if err := db.Model(&Department{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	departments := []Department{
		{ID: 1, Name: "Electronics"},
		{ID: 2, Name: "Home"},
	}
	classes := []Class{
		{ID: 1, DepartmentID: 1, Name: "Audio"},
		{ID: 2, DepartmentID: 1, Name: "Video"},
		{ID: 1, DepartmentID: 2, Name: "Kitchen"},
	}
	families := []Family{
		{ID: 1, ClassID: 1, DepartmentID: 1, Name: "Headphones"},
		{ID: 2, ClassID: 1, DepartmentID: 1, Name: "Speakers"},
		{ID: 1, ClassID: 2, DepartmentID: 1, Name: "Televisions"},
		{ID: 1, ClassID: 1, DepartmentID: 2, Name: "Cookware"},
	}

	if err := db.Create(&departments).Error; err != nil {
		return err
	}
	if err := db.Create(&classes).Error; err != nil {
		return err
	}
	return db.Create(&families).Error
}
