package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"learnoted/internal/domain"
	"learnoted/internal/paypal"
	"learnoted/internal/repository"
)

var (
	ErrSubscriptionNotActive = errors.New("subscription not active")
	ErrNoActiveSubscription  = errors.New("no active subscription")
	ErrProviderCancelFailed  = errors.New("provider cancellation failed")
	ErrInvalidSignature      = errors.New("invalid webhook signature")
	ErrInvalidWebhookPayload = errors.New("invalid webhook payload")
)

// Retención de ids de eventos procesados para descartar reentregas.
const processedEventTTL = 72 * time.Hour

// Tipos de evento de suscripción que PayPal entrega por webhook.
const (
	eventSubscriptionActivated = "BILLING.SUBSCRIPTION.ACTIVATED"
	eventSubscriptionCancelled = "BILLING.SUBSCRIPTION.CANCELLED"
	eventSubscriptionExpired   = "BILLING.SUBSCRIPTION.EXPIRED"
	eventSubscriptionSuspended = "BILLING.SUBSCRIPTION.SUSPENDED"
	eventPaymentFailed         = "BILLING.SUBSCRIPTION.PAYMENT.FAILED"
)

// SubscriptionService mantiene el plan local consistente con el estado de la
// suscripción en PayPal, a través de activación, cancelación y webhooks.
type SubscriptionService struct {
	logger   *zap.Logger
	users    repository.UserRepository
	provider paypal.Client
	events   ProcessedEventStore
	quota    *QuotaService
}

func NewSubscriptionService(
	logger *zap.Logger,
	users repository.UserRepository,
	provider paypal.Client,
	events ProcessedEventStore,
	quota *QuotaService,
) *SubscriptionService {
	if events == nil {
		events = NewMemoryProcessedEventStore()
	}
	return &SubscriptionService{
		logger:   logger,
		users:    users,
		provider: provider,
		events:   events,
		quota:    quota,
	}
}

// Activate verifica la suscripción directamente con PayPal antes de confiar
// en el id que mandó el cliente. Solo una suscripción ACTIVE activa el plan.
func (s *SubscriptionService) Activate(ctx context.Context, userID, subscriptionID string) (domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}

	sub, err := s.provider.GetSubscription(ctx, subscriptionID)
	if err != nil {
		if errors.Is(err, paypal.ErrUnavailable) {
			return domain.User{}, err
		}
		return domain.User{}, fmt.Errorf("%w: %v", ErrSubscriptionNotActive, err)
	}
	if sub.Status != paypal.StatusActive {
		return domain.User{}, fmt.Errorf("%w: provider status %s", ErrSubscriptionNotActive, sub.Status)
	}

	now := time.Now().UTC()
	if err := s.users.UpdateSubscription(ctx, user.ID, domain.PlanPaid, subscriptionID, domain.SubscriptionActive, now); err != nil {
		return domain.User{}, err
	}

	s.logger.Info("subscription activated",
		zap.String("user_id", user.ID),
		zap.String("subscription_id", subscriptionID),
	)

	user.SubscriptionPlan = domain.PlanPaid
	user.PayPalSubscriptionID = subscriptionID
	user.PayPalSubscriptionStatus = domain.SubscriptionActive
	user.SubscriptionUpdatedAt = &now
	return user, nil
}

// Cancel solo muta el estado local cuando PayPal confirma la cancelación; si
// la llamada falla el usuario sigue facturado y puede reintentar.
func (s *SubscriptionService) Cancel(ctx context.Context, userID string) (domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}

	if user.EffectivePlan() != domain.PlanPaid || user.PayPalSubscriptionID == "" {
		return domain.User{}, ErrNoActiveSubscription
	}

	if err := s.provider.CancelSubscription(ctx, user.PayPalSubscriptionID, "user requested cancellation"); err != nil {
		s.logger.Warn("provider cancel failed",
			zap.String("user_id", user.ID),
			zap.String("subscription_id", user.PayPalSubscriptionID),
			zap.Error(err),
		)
		return domain.User{}, fmt.Errorf("%w: %v", ErrProviderCancelFailed, err)
	}

	now := time.Now().UTC()
	if err := s.users.UpdateSubscription(ctx, user.ID, domain.PlanFree, user.PayPalSubscriptionID, domain.SubscriptionCancelled, now); err != nil {
		return domain.User{}, err
	}

	s.logger.Info("subscription cancelled",
		zap.String("user_id", user.ID),
		zap.String("subscription_id", user.PayPalSubscriptionID),
	)

	user.SubscriptionPlan = domain.PlanFree
	user.PayPalSubscriptionStatus = domain.SubscriptionCancelled
	user.SubscriptionUpdatedAt = &now
	return user, nil
}

// Status devuelve el usuario con su plan y contador; leer el estado dispara
// el chequeo de reset mensual como efecto secundario.
func (s *SubscriptionService) Status(ctx context.Context, userID string) (domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	if s.quota != nil {
		user, err = s.quota.SyncMonthlyReset(ctx, user)
		if err != nil {
			return domain.User{}, err
		}
	}
	return user, nil
}

type webhookResource struct {
	ID         string `json:"id"`
	Subscriber struct {
		EmailAddress string `json:"email_address"`
	} `json:"subscriber"`
}

// ProcessWebhook verifica la autenticidad del evento con PayPal y aplica el
// cambio de estado que describe. Siempre que el evento esté verificado el
// resultado es nil, incluso para tipos no manejados o usuarios desconocidos,
// para no provocar tormentas de reintentos del proveedor.
func (s *SubscriptionService) ProcessWebhook(ctx context.Context, params paypal.VerifyParams) error {
	if params.TransmissionID == "" || params.TransmissionTime == "" ||
		params.TransmissionSig == "" || params.CertURL == "" || params.AuthAlgo == "" {
		return ErrInvalidSignature
	}

	ok, err := s.provider.VerifyWebhookSignature(ctx, params)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidSignature
	}

	var event paypal.WebhookEvent
	if err := json.Unmarshal(params.EventBody, &event); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidWebhookPayload, err)
	}

	marked := false
	first, err := s.events.MarkProcessed(event.ID, processedEventTTL)
	if err != nil {
		// Sin dedup el evento sigue siendo aplicable de forma idempotente.
		s.logger.Warn("processed-event store unavailable", zap.Error(err))
	} else if !first {
		s.logger.Info("webhook event already processed", zap.String("event_id", event.ID))
		return nil
	} else {
		marked = true
	}

	if err := s.dispatch(ctx, event); err != nil {
		// El evento marcado pero no aplicado debe volver a estar disponible:
		// la reentrega del proveedor es la única vía de reconciliación.
		if marked {
			if uerr := s.events.Unmark(event.ID); uerr != nil {
				s.logger.Warn("could not release unapplied webhook event",
					zap.String("event_id", event.ID),
					zap.Error(uerr),
				)
			}
		}
		return err
	}
	return nil
}

func (s *SubscriptionService) dispatch(ctx context.Context, event paypal.WebhookEvent) error {
	var resource webhookResource
	if len(event.Resource) > 0 {
		if err := json.Unmarshal(event.Resource, &resource); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidWebhookPayload, err)
		}
	}

	switch event.EventType {
	case eventSubscriptionActivated:
		return s.applyActivated(ctx, event, resource)
	case eventSubscriptionCancelled, eventSubscriptionExpired:
		return s.applyStatusChange(ctx, event, resource, domain.PlanFree, domain.SubscriptionCancelled)
	case eventSubscriptionSuspended:
		return s.applyStatusChange(ctx, event, resource, domain.PlanFree, domain.SubscriptionSuspended)
	case eventPaymentFailed:
		return s.applyPaymentFailed(ctx, event, resource)
	default:
		s.logger.Info("unhandled webhook event type",
			zap.String("event_id", event.ID),
			zap.String("event_type", event.EventType),
		)
		return nil
	}
}

func (s *SubscriptionService) applyActivated(ctx context.Context, event paypal.WebhookEvent, resource webhookResource) error {
	user, err := s.users.GetByPayPalSubscription(ctx, resource.ID)
	if errors.Is(err, pgx.ErrNoRows) && resource.Subscriber.EmailAddress != "" {
		// Suscripción todavía no vinculada: se busca por email del suscriptor
		// y se vincula el id al aplicar el evento.
		user, err = s.users.GetByEmail(ctx, normalizeEmail(resource.Subscriber.EmailAddress))
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Info("webhook for unknown subscriber",
				zap.String("event_id", event.ID),
				zap.String("subscription_id", resource.ID),
			)
			return nil
		}
		return err
	}

	eventTime, apply := s.shouldApply(event, user)
	if !apply {
		return nil
	}
	if err := s.users.UpdateSubscription(ctx, user.ID, domain.PlanPaid, resource.ID, domain.SubscriptionActive, eventTime); err != nil {
		return err
	}
	s.logger.Info("webhook activated subscription",
		zap.String("user_id", user.ID),
		zap.String("subscription_id", resource.ID),
	)
	return nil
}

func (s *SubscriptionService) applyStatusChange(ctx context.Context, event paypal.WebhookEvent, resource webhookResource, plan domain.Plan, status domain.SubscriptionStatus) error {
	user, err := s.users.GetByPayPalSubscription(ctx, resource.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Info("webhook for unknown subscription",
				zap.String("event_id", event.ID),
				zap.String("subscription_id", resource.ID),
			)
			return nil
		}
		return err
	}

	eventTime, apply := s.shouldApply(event, user)
	if !apply {
		return nil
	}
	if err := s.users.UpdateSubscription(ctx, user.ID, plan, user.PayPalSubscriptionID, status, eventTime); err != nil {
		return err
	}
	s.logger.Info("webhook updated subscription",
		zap.String("user_id", user.ID),
		zap.String("subscription_id", resource.ID),
		zap.String("status", string(status)),
	)
	return nil
}

// applyPaymentFailed marca el fallo de pago sin tocar el plan: política de
// fallo blando, distinta de la suspensión.
func (s *SubscriptionService) applyPaymentFailed(ctx context.Context, event paypal.WebhookEvent, resource webhookResource) error {
	user, err := s.users.GetByPayPalSubscription(ctx, resource.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Info("payment failed webhook for unknown subscription",
				zap.String("event_id", event.ID),
				zap.String("subscription_id", resource.ID),
			)
			return nil
		}
		return err
	}

	eventTime, apply := s.shouldApply(event, user)
	if !apply {
		return nil
	}
	if err := s.users.UpdateSubscriptionStatus(ctx, user.ID, domain.SubscriptionPaymentFailed, eventTime); err != nil {
		return err
	}
	s.logger.Info("webhook marked payment failed",
		zap.String("user_id", user.ID),
		zap.String("subscription_id", resource.ID),
	)
	return nil
}

// shouldApply descarta eventos cuyo create_time no es posterior a la marca de
// agua del usuario: un ACTIVATED tardío no puede pisar un CANCELLED más nuevo.
func (s *SubscriptionService) shouldApply(event paypal.WebhookEvent, user domain.User) (time.Time, bool) {
	eventTime := event.CreateTime
	if eventTime.IsZero() {
		eventTime = time.Now().UTC()
	}
	if user.SubscriptionUpdatedAt != nil && !eventTime.After(*user.SubscriptionUpdatedAt) {
		s.logger.Info("stale webhook event ignored",
			zap.String("event_id", event.ID),
			zap.String("event_type", event.EventType),
			zap.Time("event_time", eventTime),
			zap.Time("watermark", *user.SubscriptionUpdatedAt),
		)
		return eventTime, false
	}
	return eventTime, true
}
