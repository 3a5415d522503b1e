package repositories

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// gormErr maps GORM errors onto the repository sentinels. The DB must be
// opened with TranslateError so unique violations surface as ErrDuplicatedKey.
func gormErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}

// forUpdate adds a row lock on dialects that support it.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}
