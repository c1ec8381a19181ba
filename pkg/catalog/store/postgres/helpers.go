package postgres

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// onConflictDoNothing makes a Create a no-op when the given unique column(s)
// already have a matching row, used by RegisterUser's idempotent insert.
func onConflictDoNothing(column string) clause.OnConflict {
	return clause.OnConflict{Columns: []clause.Column{{Name: column}}, DoNothing: true}
}

// onConflictUpdatePerms makes a Create on access_grants replace the perms
// column when (file_name, grantee) already exists, implementing UpsertGrant.
func onConflictUpdatePerms() clause.OnConflict {
	return clause.OnConflict{
		Columns:   []clause.Column{{Name: "file_name"}, {Name: "grantee"}},
		DoUpdates: clause.AssignmentColumns([]string{"perms"}),
	}
}

// getByKey retrieves a single row of type T matching the given where-clause
// columns, converting gorm.ErrRecordNotFound to notFound. Grounded on the
// teacher's generic getByField helper (pkg/controlplane/store/helpers.go).
func getByKey[T any](db *gorm.DB, ctx context.Context, where string, args []any, notFound error) (*T, error) {
	var row T
	if err := db.WithContext(ctx).Where(where, args...).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound
		}
		return nil, err
	}
	return &row, nil
}

func listAll[T any](db *gorm.DB, ctx context.Context, where string, args []any) ([]T, error) {
	var rows []T
	q := db.WithContext(ctx)
	if where != "" {
		q = q.Where(where, args...)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func isUniqueViolation(err error) bool {
	// gorm wraps the driver error; pgx/pq both surface SQLSTATE 23505 in the
	// error string, which is the simplest portable check without importing
	// the driver-specific error type here.
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "23505") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint")
}
