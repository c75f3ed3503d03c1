package billing

// Session is a hosted checkout or customer portal session.
type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Customer is the provider-side billing identity linked to a user.
type Customer struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Webhook event types the provider delivers.
const (
	EventSubscriptionCreated = "subscription.created"
	EventSubscriptionUpdated = "subscription.updated"
	EventSubscriptionDeleted = "subscription.deleted"
)

// WebhookEvent is the payload of a signed provider webhook.
type WebhookEvent struct {
	Type       string `json:"type"`
	CustomerID string `json:"customer_id"`
	Tier       string `json:"tier"`
	Status     string `json:"status"`
}

type checkoutRequest struct {
	CustomerID string `json:"customer_id"`
	Tier       string `json:"tier"`
	ReturnURL  string `json:"return_url"`
}

type portalRequest struct {
	CustomerID string `json:"customer_id"`
	ReturnURL  string `json:"return_url"`
}

type customerRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}
