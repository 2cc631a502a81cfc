// Package service implements the conversation, ingestion and index
// synchronization workflows on top of the remote assistant gateway.
package service

import (
	"sort"

	"github.com/jpdataXOR/hrdesk/internal/config"
	"github.com/jpdataXOR/hrdesk/internal/domain"
	"github.com/jpdataXOR/hrdesk/internal/gateway"
	"github.com/jpdataXOR/hrdesk/internal/hub"
	"github.com/jpdataXOR/hrdesk/internal/policy"
	store "github.com/jpdataXOR/hrdesk/internal/repository"
)

type Service struct {
	store        store.Store
	gateway      gateway.Gateway
	hub          *hub.Hub
	policyEngine *policy.Engine
	config       *config.Config
}

func New(db store.Store, gw gateway.Gateway, h *hub.Hub, policyEngine *policy.Engine, cfg *config.Config) *Service {
	return &Service{
		store:        db,
		gateway:      gw,
		hub:          h,
		policyEngine: policyEngine,
		config:       cfg,
	}
}

// Customer exposes the static customer table to the transport layer.
func (s *Service) Customer(id string) (domain.Customer, bool) {
	return s.config.Customer(id)
}

// Customers returns every configured customer, for the page's selector.
func (s *Service) Customers() []domain.Customer {
	customers := make([]domain.Customer, 0, len(s.config.Customers))
	for _, cust := range s.config.Customers {
		customers = append(customers, cust)
	}
	sort.Slice(customers, func(i, j int) bool { return customers[i].ID < customers[j].ID })
	return customers
}
