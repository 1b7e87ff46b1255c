package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"unique violation", &pgconn.PgError{Code: CodeUniqueViolation}, true},
		{"wrapped unique violation", fmt.Errorf("insert order: %w", &pgconn.PgError{Code: CodeUniqueViolation}), true},
		{"foreign key violation", &pgconn.PgError{Code: CodeForeignKeyViolation}, false},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUniqueViolation(tt.err); got != tt.want {
				t.Fatalf("IsUniqueViolation() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsForeignKeyViolation(t *testing.T) {
	if !IsForeignKeyViolation(&pgconn.PgError{Code: CodeForeignKeyViolation}) {
		t.Fatal("expected foreign key violation to match")
	}
	if IsForeignKeyViolation(&pgconn.PgError{Code: CodeUniqueViolation}) {
		t.Fatal("unique violation must not match foreign key check")
	}
}
