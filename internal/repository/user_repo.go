package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"learnoted/internal/domain"
)

// UserRepository define el contrato de persistencia para usuarios.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByAuth(ctx context.Context, provider, subject string) (domain.User, error)
	GetByPayPalSubscription(ctx context.Context, subscriptionID string) (domain.User, error)
	LinkOAuth(ctx context.Context, id, provider, subject string) error
	ResetMonthlyUsage(ctx context.Context, id string, resetAt time.Time) error
	// IncrementSearchCount suma 1 al contador en un único UPDATE condicional:
	// solo incrementa si el plan es free y el contador sigue bajo el límite.
	// Devuelve el contador resultante y si el incremento ocurrió.
	IncrementSearchCount(ctx context.Context, id string, limit int) (int, bool, error)
	UpdateSubscription(ctx context.Context, id string, plan domain.Plan, subscriptionID string, status domain.SubscriptionStatus, updatedAt time.Time) error
	UpdateSubscriptionStatus(ctx context.Context, id string, status domain.SubscriptionStatus, updatedAt time.Time) error
}

// PgUserRepository implementa UserRepository usando pgxpool.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

const userColumns = `
	id, email, display_name, auth_provider, auth_subject, password_hash,
	subscription_plan, word_search_count, monthly_reset_date,
	paypal_subscription_id, paypal_subscription_status, subscription_updated_at,
	created_at
`

func (r *PgUserRepository) Create(ctx context.Context, user domain.User) error {
	const query = `
		INSERT INTO users (
			id, email, display_name, auth_provider, auth_subject, password_hash,
			subscription_plan, word_search_count, monthly_reset_date, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	plan := user.EffectivePlan()
	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.DisplayName,
		user.AuthProvider,
		user.AuthSubject,
		user.PasswordHash,
		plan,
		user.WordSearchCount,
		user.MonthlyResetDate,
		user.CreatedAt,
	)
	return err
}

func (r *PgUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *PgUserRepository) GetByAuth(ctx context.Context, provider, subject string) (domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE auth_provider = $1 AND auth_subject = $2`, provider, subject)
}

func (r *PgUserRepository) GetByPayPalSubscription(ctx context.Context, subscriptionID string) (domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE paypal_subscription_id = $1`, subscriptionID)
}

func (r *PgUserRepository) LinkOAuth(ctx context.Context, id, provider, subject string) error {
	const query = `
		UPDATE users SET auth_provider = $1, auth_subject = $2 WHERE id = $3
	`
	_, err := r.pool.Exec(ctx, query, provider, subject, id)
	return err
}

func (r *PgUserRepository) ResetMonthlyUsage(ctx context.Context, id string, resetAt time.Time) error {
	const query = `
		UPDATE users SET word_search_count = 0, monthly_reset_date = $1 WHERE id = $2
	`
	_, err := r.pool.Exec(ctx, query, resetAt, id)
	return err
}

func (r *PgUserRepository) IncrementSearchCount(ctx context.Context, id string, limit int) (int, bool, error) {
	const query = `
		UPDATE users
		SET word_search_count = word_search_count + 1
		WHERE id = $1 AND subscription_plan = $2 AND word_search_count < $3
		RETURNING word_search_count
	`
	var count int
	err := r.pool.QueryRow(ctx, query, id, domain.PlanFree, limit).Scan(&count)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return count, true, nil
}

func (r *PgUserRepository) UpdateSubscription(ctx context.Context, id string, plan domain.Plan, subscriptionID string, status domain.SubscriptionStatus, updatedAt time.Time) error {
	const query = `
		UPDATE users
		SET subscription_plan = $1, paypal_subscription_id = $2,
			paypal_subscription_status = $3, subscription_updated_at = $4
		WHERE id = $5
	`
	var subID interface{}
	if subscriptionID != "" {
		subID = subscriptionID
	}
	_, err := r.pool.Exec(ctx, query, plan, subID, status, updatedAt, id)
	return err
}

func (r *PgUserRepository) UpdateSubscriptionStatus(ctx context.Context, id string, status domain.SubscriptionStatus, updatedAt time.Time) error {
	const query = `
		UPDATE users
		SET paypal_subscription_status = $1, subscription_updated_at = $2
		WHERE id = $3
	`
	_, err := r.pool.Exec(ctx, query, status, updatedAt, id)
	return err
}

func (r *PgUserRepository) getOne(ctx context.Context, query string, args ...interface{}) (domain.User, error) {
	var (
		u         domain.User
		plan      string
		subID     sql.NullString
		subStatus sql.NullString
	)
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&u.ID,
		&u.Email,
		&u.DisplayName,
		&u.AuthProvider,
		&u.AuthSubject,
		&u.PasswordHash,
		&plan,
		&u.WordSearchCount,
		&u.MonthlyResetDate,
		&subID,
		&subStatus,
		&u.SubscriptionUpdatedAt,
		&u.CreatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	u.SubscriptionPlan = domain.Plan(plan)
	if subID.Valid {
		u.PayPalSubscriptionID = subID.String
	}
	if subStatus.Valid {
		u.PayPalSubscriptionStatus = domain.SubscriptionStatus(subStatus.String)
	}
	return u, nil
}
