package domain

import "time"

// Plan es el tier local que refleja el estado de facturación externo.
type Plan string

const (
	PlanFree Plan = "free"
	PlanPaid Plan = "paid"
)

// SubscriptionStatus refleja el estado de la suscripción en PayPal.
type SubscriptionStatus string

const (
	SubscriptionActive        SubscriptionStatus = "active"
	SubscriptionCancelled     SubscriptionStatus = "cancelled"
	SubscriptionSuspended     SubscriptionStatus = "suspended"
	SubscriptionPaymentFailed SubscriptionStatus = "payment_failed"
)

type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	DisplayName  string `json:"display_name,omitempty"`
	AuthProvider string `json:"auth_provider,omitempty"`
	AuthSubject  string `json:"-"`
	PasswordHash string `json:"-"`

	SubscriptionPlan Plan      `json:"subscription_plan"`
	WordSearchCount  int       `json:"word_search_count"`
	MonthlyResetDate time.Time `json:"monthly_reset_date"`

	PayPalSubscriptionID     string             `json:"-"`
	PayPalSubscriptionStatus SubscriptionStatus `json:"subscription_status,omitempty"`
	// Marca de agua para descartar eventos de webhook fuera de orden.
	SubscriptionUpdatedAt *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

// EffectivePlan trata planes ausentes o desconocidos como free.
func (u User) EffectivePlan() Plan {
	if u.SubscriptionPlan == PlanPaid {
		return PlanPaid
	}
	return PlanFree
}
