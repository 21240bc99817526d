package storage

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/GoArmGo/contactbook/internal/domain"
	"github.com/lib/pq"
)

// classify переводит ошибки драйвера в доменные (отсутствие строки в ErrNotFound,
// нарушение уникальности в ErrConflict, обрыв соединения в ErrUnavailable).
// Остальные ошибки возвращаются как есть (внутренняя ошибка).
func classify(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", domain.ErrNotFound, err)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code == "23505": // unique_violation
			return fmt.Errorf("%w: %s", domain.ErrConflict, pqErr.Message)
		case pqErr.Code == "23503": // foreign_key_violation
			return fmt.Errorf("%w: %s", domain.ErrNotFound, pqErr.Message)
		case pqErr.Code.Class() == "08", pqErr.Code == "57P01", pqErr.Code == "57P03":
			return fmt.Errorf("%w: %s", domain.ErrUnavailable, pqErr.Message)
		}
		return err
	}

	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	return err
}
