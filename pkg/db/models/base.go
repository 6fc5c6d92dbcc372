package models

import "github.com/google/uuid"

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// All lists every persisted model, in dependency order. Used by AutoMigrate
// for sqlite-backed development and tests; Postgres uses the goose migrations.
func All() []any {
	return []any{
		&User{},
		&UserProfile{},
		&Address{},
		&Category{},
		&Brand{},
		&Color{},
		&Product{},
		&ProductColor{},
		&ProductVariant{},
		&Review{},
		&Basket{},
		&Order{},
		&BasketOrder{},
		&ProductOrder{},
		&OutboxEvent{},
		&OutboxDLQ{},
	}
}
