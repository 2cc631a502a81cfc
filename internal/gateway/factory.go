package gateway

import (
	"log"
	"os"
)

const (
	// EnvMode is the environment variable name for mode selection.
	EnvMode = "HRDESK_MODE"
	// ModeMock indicates the in-memory gateway should be used.
	ModeMock = "MOCK"
)

// New creates a Gateway based on the HRDESK_MODE environment variable.
// If HRDESK_MODE=MOCK, returns a MockGateway seeded with the given assistant
// ids; otherwise returns the OpenAI gateway.
func New(apiKey, baseURL string, assistantIDs []string) Gateway {
	if os.Getenv(EnvMode) == ModeMock {
		log.Println("HRDESK_MODE=MOCK detected, using mock assistant gateway")
		return NewMockGateway(assistantIDs...)
	}
	return NewOpenAIGateway(apiKey, baseURL)
}
