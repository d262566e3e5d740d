package service

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lockForUpdate verrou pessimiste sur la lecture. SQLite (tests) ne
// connaît pas FOR UPDATE et sérialise déjà ses écrivains; le verrou n'est
// émis que sur postgres.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}
