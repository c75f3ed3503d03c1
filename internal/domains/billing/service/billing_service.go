package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	auditmodel "snippethub-backend/internal/domains/audit/model"
	auditservice "snippethub-backend/internal/domains/audit/service"
	usermodel "snippethub-backend/internal/domains/user/model"
	userrepo "snippethub-backend/internal/domains/user/repository"
	"snippethub-backend/internal/infrastructure/billing"
	"snippethub-backend/internal/infrastructure/realtime"
	"snippethub-backend/internal/shared"
	"snippethub-backend/internal/shared/apperror"
)

type ServiceInterface interface {
	CreateCheckout(ctx context.Context, userID uuid.UUID, tier string, meta shared.RequestMeta) (*billing.Session, error)
	CreatePortal(ctx context.Context, userID uuid.UUID) (*billing.Session, error)
	HandleWebhook(ctx context.Context, event billing.WebhookEvent) error
}

type billingService struct {
	client *billing.Client
	users  userrepo.RepositoryInterface
	audit  auditservice.ServiceInterface
	hub    *realtime.Hub // nil when realtime is disabled
}

func NewBillingService(
	client *billing.Client,
	users userrepo.RepositoryInterface,
	audit auditservice.ServiceInterface,
	hub *realtime.Hub,
) ServiceInterface {
	return &billingService{
		client: client,
		users:  users,
		audit:  audit,
		hub:    hub,
	}
}

func (s *billingService) CreateCheckout(ctx context.Context, userID uuid.UUID, tier string, meta shared.RequestMeta) (*billing.Session, error) {
	if tier != usermodel.SubscriptionPro && tier != usermodel.SubscriptionTeam {
		return nil, apperror.Validation("invalid subscription tier", []apperror.FieldError{
			{Field: "tier", Message: "must be pro or team", Code: "invalid"},
		})
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Subscription == tier {
		return nil, apperror.Conflict("Already subscribed to this tier")
	}

	customerID, err := s.ensureCustomer(ctx, user)
	if err != nil {
		return nil, err
	}

	session, err := s.client.CreateCheckoutSession(ctx, customerID, tier)
	if err != nil {
		return nil, apperror.BadGateway("Billing provider unavailable", err)
	}

	return session, nil
}

func (s *billingService) CreatePortal(ctx context.Context, userID uuid.UUID) (*billing.Session, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.BillingCustomerID == nil {
		return nil, apperror.Conflict("No billing account for this user")
	}

	session, err := s.client.CreatePortalSession(ctx, *user.BillingCustomerID)
	if err != nil {
		return nil, apperror.BadGateway("Billing provider unavailable", err)
	}

	return session, nil
}

// HandleWebhook syncs provider subscription state onto the user tier. The
// signature was verified by middleware; events are idempotent.
func (s *billingService) HandleWebhook(ctx context.Context, event billing.WebhookEvent) error {
	if event.CustomerID == "" {
		return apperror.Validation("missing customer_id", nil)
	}

	user, err := s.users.GetByBillingCustomerID(ctx, event.CustomerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Customer not linked locally; acknowledge so the provider
			// stops retrying.
			return nil
		}
		return apperror.From(err)
	}

	var tier string
	switch event.Type {
	case billing.EventSubscriptionCreated, billing.EventSubscriptionUpdated:
		tier = event.Tier
		if !usermodel.IsValidSubscription(tier) {
			return apperror.Validation("unknown subscription tier", nil)
		}
	case billing.EventSubscriptionDeleted:
		tier = usermodel.SubscriptionFree
	default:
		return apperror.Validation("unsupported event type", nil)
	}

	if user.Subscription == tier {
		return nil
	}

	if err := s.users.SetSubscription(ctx, user.ID, tier); err != nil {
		return apperror.From(err)
	}

	s.audit.Record(ctx, &auditmodel.Entry{
		ActorID:      &user.ID,
		ActorEmail:   &user.Email,
		Action:       auditmodel.ActionSubscriptionChange,
		ResourceType: "user",
		ResourceID:   user.ID.String(),
		Changes: map[string]auditmodel.FieldChange{
			"subscription": {Before: user.Subscription, After: tier},
		},
		Metadata: map[string]interface{}{"source": "billing_webhook", "event": event.Type},
	})

	if s.hub != nil {
		s.hub.Publish(user.ID, realtime.EventSubscription, map[string]interface{}{
			"subscription": tier,
		})
	}

	return nil
}

func (s *billingService) getUser(ctx context.Context, userID uuid.UUID) (*usermodel.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, apperror.From(err)
	}
	return user, nil
}

func (s *billingService) ensureCustomer(ctx context.Context, user *usermodel.User) (string, error) {
	if user.BillingCustomerID != nil {
		return *user.BillingCustomerID, nil
	}

	customerID, err := s.client.EnsureCustomer(ctx, user.Email, user.Name)
	if err != nil {
		return "", apperror.BadGateway("Billing provider unavailable", err)
	}

	if err := s.users.SetBillingCustomerID(ctx, user.ID, customerID); err != nil {
		return "", apperror.From(err)
	}
	return customerID, nil
}
