package models

// All lists the models in dependency order for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Category{},
		&Recipe{},
		&Comment{},
		&Favorite{},
	}
}
