package service

import (
	"context"
	"testing"
	"time"

	"github.com/jpdataXOR/hrdesk/internal/config"
	"github.com/jpdataXOR/hrdesk/internal/domain"
	"github.com/jpdataXOR/hrdesk/internal/gateway"
	"github.com/jpdataXOR/hrdesk/internal/policy"
	"github.com/jpdataXOR/hrdesk/tests/helpers"
)

// newTestService wires a service against the mock gateway, an in-memory
// store and fast poll settings.
func newTestService(t *testing.T, customers ...domain.Customer) (*Service, *gateway.MockGateway) {
	t.Helper()

	if len(customers) == 0 {
		customers = []domain.Customer{
			{ID: "acme", Name: "Acme Corp HR", AssistantID: "asst_acme", IndexID: "vs_acme"},
			{ID: "globex", Name: "Globex HR", AssistantID: "asst_globex", IndexID: "vs_globex"},
		}
	}

	customerMap := make(map[string]domain.Customer, len(customers))
	assistantIDs := make([]string, 0, len(customers))
	for _, cust := range customers {
		customerMap[cust.ID] = cust
		assistantIDs = append(assistantIDs, cust.AssistantID)
	}

	cfg := &config.Config{
		RunPollInterval: time.Millisecond,
		RunTimeout:      250 * time.Millisecond,
		BatchTimeout:    250 * time.Millisecond,
		RunInstructions: "Please address HR issues or questions of the user.",
		DisplayTimeZone: "UTC",
		Customers:       customerMap,
	}

	db := helpers.NewTestSQLiteStore(t)
	gw := gateway.NewMockGateway(assistantIDs...)

	policyEngine, err := policy.NewEngine(context.Background(), policy.DefaultPolicy)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	return New(db, gw, nil, policyEngine, cfg), gw
}

func selectCustomer(t *testing.T, svc *Service, sessionID, customerID string) *domain.Session {
	t.Helper()
	session, err := svc.SelectCustomer(context.Background(), sessionID, customerID)
	if err != nil {
		t.Fatalf("SelectCustomer failed: %v", err)
	}
	return session
}
