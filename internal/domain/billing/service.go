package billing

import (
	"context"
	"strings"
)

type Service struct {
	methods    PaymentMethodRepository
	configured map[string]bool
}

// NewService builds the billing service. configured lists the online
// providers that have credentials; enabled methods for any other online
// provider are hidden from checkout. Cash needs no credentials.
func NewService(methods PaymentMethodRepository, configured ...string) *Service {
	s := &Service{methods: methods, configured: map[string]bool{ProviderCash: true}}
	for _, p := range configured {
		s.configured[p] = true
	}
	return s
}

// CheckoutMethods returns the enabled methods a patient can pay with.
func (s *Service) CheckoutMethods(ctx context.Context) ([]*PaymentMethod, error) {
	all, err := s.methods.List(ctx, true)
	if err != nil {
		return nil, err
	}
	out := make([]*PaymentMethod, 0, len(all))
	for _, m := range all {
		if s.configured[m.Provider] {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *Service) ListMethods(ctx context.Context) ([]*PaymentMethod, error) {
	return s.methods.List(ctx, false)
}

func (s *Service) GetMethod(ctx context.Context, id int64) (*PaymentMethod, error) {
	return s.methods.GetByID(ctx, id)
}

func (s *Service) CreateMethod(ctx context.Context, req *CreatePaymentMethodRequest) (*PaymentMethod, error) {
	m := &PaymentMethod{
		Name:         strings.TrimSpace(req.Name),
		Provider:     req.Provider,
		Enabled:      true,
		DisplayOrder: req.DisplayOrder,
	}
	if req.Enabled != nil {
		m.Enabled = *req.Enabled
	}
	if err := s.methods.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) UpdateMethod(ctx context.Context, id int64, req *UpdatePaymentMethodRequest) (*PaymentMethod, error) {
	m, err := s.methods.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		m.Name = strings.TrimSpace(*req.Name)
	}
	if req.Provider != nil {
		m.Provider = *req.Provider
	}
	if req.Enabled != nil {
		m.Enabled = *req.Enabled
	}
	if req.DisplayOrder != nil {
		m.DisplayOrder = *req.DisplayOrder
	}
	if err := s.methods.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) DeleteMethod(ctx context.Context, id int64) error {
	return s.methods.Delete(ctx, id)
}
