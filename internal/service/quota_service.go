package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"learnoted/internal/domain"
	"learnoted/internal/repository"
)

// ErrQuotaExceeded indica que el usuario free agotó sus búsquedas del mes.
var ErrQuotaExceeded = errors.New("monthly search quota exceeded")

const defaultMonthlySearchLimit = 100

// QuotaService decide si un usuario free puede hacer una búsqueda más este
// mes y mantiene el contador mensual.
type QuotaService struct {
	logger *zap.Logger
	users  repository.UserRepository
	limit  int
}

func NewQuotaService(logger *zap.Logger, users repository.UserRepository, limit int) *QuotaService {
	if limit <= 0 {
		limit = defaultMonthlySearchLimit
	}
	return &QuotaService{
		logger: logger,
		users:  users,
		limit:  limit,
	}
}

// Limit devuelve el límite mensual configurado para el plan free.
func (s *QuotaService) Limit() int {
	return s.limit
}

// CanPerformLookup aplica el reset mensual si corresponde (persistiéndolo de
// inmediato) y luego evalúa el permiso: paid siempre puede; free puede
// mientras el contador esté bajo el límite.
func (s *QuotaService) CanPerformLookup(ctx context.Context, user domain.User) (bool, domain.User, error) {
	user, err := s.SyncMonthlyReset(ctx, user)
	if err != nil {
		return false, user, err
	}
	if user.EffectivePlan() == domain.PlanPaid {
		return true, user, nil
	}
	return user.WordSearchCount < s.limit, user, nil
}

// RecordLookup suma una búsqueda al contador, solo para el plan free. El
// incremento es un único UPDATE condicional en la base, así dos requests
// concurrentes del mismo usuario no pueden pasar ambas el límite.
func (s *QuotaService) RecordLookup(ctx context.Context, user domain.User) (domain.User, error) {
	if user.EffectivePlan() != domain.PlanFree {
		return user, nil
	}
	count, incremented, err := s.users.IncrementSearchCount(ctx, user.ID, s.limit)
	if err != nil {
		return user, err
	}
	if !incremented {
		return user, ErrQuotaExceeded
	}
	user.WordSearchCount = count
	return user, nil
}

// ConsumeLookup combina el chequeo y el registro en una sola operación: es
// lo que usa el endpoint de búsqueda.
func (s *QuotaService) ConsumeLookup(ctx context.Context, user domain.User) (domain.User, error) {
	user, err := s.SyncMonthlyReset(ctx, user)
	if err != nil {
		return user, err
	}
	return s.RecordLookup(ctx, user)
}

// SyncMonthlyReset pone el contador en 0 cuando el mes calendario (UTC) de la
// fecha de reset guardada difiere del actual. Dentro del mismo mes es no-op,
// así el reset ocurre exactamente una vez por mes.
func (s *QuotaService) SyncMonthlyReset(ctx context.Context, user domain.User) (domain.User, error) {
	now := time.Now().UTC()
	if sameCalendarMonth(user.MonthlyResetDate, now) {
		return user, nil
	}
	if err := s.users.ResetMonthlyUsage(ctx, user.ID, now); err != nil {
		return user, err
	}
	if s.logger != nil {
		s.logger.Info("monthly search counter reset",
			zap.String("user_id", user.ID),
			zap.Time("previous_reset", user.MonthlyResetDate),
		)
	}
	user.WordSearchCount = 0
	user.MonthlyResetDate = now
	return user, nil
}

func sameCalendarMonth(a, b time.Time) bool {
	a = a.UTC()
	b = b.UTC()
	return a.Year() == b.Year() && a.Month() == b.Month()
}
