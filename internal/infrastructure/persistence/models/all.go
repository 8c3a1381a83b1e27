package models

// All lists every model, in dependency order, for AutoMigrate in tests
func All() []any {
	return []any{
		&UserModel{},
		&ApartmentModel{},
		&BillModel{},
		&ComplaintModel{},
		&RuleBookModel{},
		&ChatMessageModel{},
	}
}
