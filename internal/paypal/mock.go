package paypal

import "context"

// MockClient permite tests sin llamar a la API real de PayPal.
type MockClient struct {
	Sub       Subscription
	SubErr    error
	CancelErr error
	VerifyOK  bool
	VerifyErr error

	GetCalls    []string
	CancelCalls []string
	VerifyCalls []VerifyParams
}

func (m *MockClient) GetSubscription(_ context.Context, subscriptionID string) (Subscription, error) {
	m.GetCalls = append(m.GetCalls, subscriptionID)
	return m.Sub, m.SubErr
}

func (m *MockClient) CancelSubscription(_ context.Context, subscriptionID, _ string) error {
	m.CancelCalls = append(m.CancelCalls, subscriptionID)
	return m.CancelErr
}

func (m *MockClient) VerifyWebhookSignature(_ context.Context, params VerifyParams) (bool, error) {
	m.VerifyCalls = append(m.VerifyCalls, params)
	return m.VerifyOK, m.VerifyErr
}
