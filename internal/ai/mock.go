package ai

import "context"

// MockClient permite tests sin llamar a un proveedor real.
type MockClient struct {
	Def       Definition
	DefErr    error
	Embedding []float32
	EmbedErr  error
}

func (m *MockClient) Define(ctx context.Context, term string) (Definition, error) {
	return m.Def, m.DefErr
}

func (m *MockClient) Embed(ctx context.Context, text string) ([]float32, error) {
	return m.Embedding, m.EmbedErr
}
