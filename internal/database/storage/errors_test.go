package storage

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/GoArmGo/contactbook/internal/domain"
	"github.com/lib/pq"
)

func TestClassify(t *testing.T) {
	plain := errors.New("syntax error")

	tests := []struct {
		name string
		in   error
		want error
	}{
		{"no rows", fmt.Errorf("select: %w", sql.ErrNoRows), domain.ErrNotFound},
		{"unique", &pq.Error{Code: "23505", Message: "duplicate key"}, domain.ErrConflict},
		{"foreign key", &pq.Error{Code: "23503"}, domain.ErrNotFound},
		{"connection failure", &pq.Error{Code: "08006"}, domain.ErrUnavailable},
		{"admin shutdown", &pq.Error{Code: "57P01"}, domain.ErrUnavailable},
		{"bad conn", driver.ErrBadConn, domain.ErrUnavailable},
		{"conn done", sql.ErrConnDone, domain.ErrUnavailable},
		{"dial", &net.OpError{Op: "dial", Err: errors.New("refused")}, domain.ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classify(tt.in); !errors.Is(got, tt.want) {
				t.Errorf("classify(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	if got := classify(plain); got != plain {
		t.Errorf("unclassified error must pass through, got %v", got)
	}
	if classify(nil) != nil {
		t.Error("classify(nil) must be nil")
	}
}
