package postgres

import (
	"errors"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// IsUniqueViolation reports whether err came from a unique constraint,
// optionally restricted to a constraint or column name fragment.
func IsUniqueViolation(err error, constraint ...string) bool {
	if err == nil {
		return false
	}

	matches := func(text string) bool {
		if len(constraint) == 0 {
			return true
		}
		for _, c := range constraint {
			if strings.Contains(text, c) {
				return true
			}
		}
		return false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return matches(pqErr.Constraint + " " + pqErr.Detail + " " + pqErr.Message)
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return matches(err.Error())
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return len(constraint) == 0 || matches(err.Error())
	}
	return false
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
