package logger

import (
	"context"

	"github.com/joesantos1/querodesconto-parceiros/internal/domain"
	"github.com/joesantos1/querodesconto-parceiros/internal/infrastructure/postgres/mappers"
	"gorm.io/gorm"
)

// PGValidationAuditLogger writes one row per merchant resolve or confirm call.
type PGValidationAuditLogger struct {
	db *gorm.DB
}

func NewPGValidationAuditLogger(db *gorm.DB) *PGValidationAuditLogger {
	return &PGValidationAuditLogger{db: db}
}

func (l *PGValidationAuditLogger) CreateAttempt(ctx context.Context, attempt *domain.ValidationAttempt) error {
	model := mappers.ToGORMValidationAttempt(attempt)
	if err := l.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	attempt.ID = model.ID
	return nil
}
