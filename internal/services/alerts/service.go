package alerts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Houeta/pricewatch/internal/models"
	"github.com/Houeta/pricewatch/internal/repository"
	"github.com/shopspring/decimal"
)

var ErrTargetNotFound = errors.New("alert target does not exist")

// AlertStore is what the alert service reads and writes.
type AlertStore interface {
	CreateAlert(ctx context.Context, alert *models.Alert) error
	AlertsForUser(ctx context.Context, userID string) ([]models.Alert, error)
	DeleteAlert(ctx context.Context, userID, id string) error
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	GetCategory(ctx context.Context, id string) (*models.Category, error)
}

// NewAlert is the user input for an alert. Direction defaults to down.
type NewAlert struct {
	ProductID  string           `json:"product_id"`
	CategoryID string           `json:"category_id"`
	Threshold  decimal.Decimal  `json:"threshold"`
	Direction  models.Direction `json:"direction"`
}

// Service manages user-owned alerts.
type Service struct {
	log   *slog.Logger
	store AlertStore
}

func NewService(log *slog.Logger, store AlertStore) *Service {
	return &Service{log: log, store: store}
}

// Create validates and stores an alert owned by userID.
func (s *Service) Create(ctx context.Context, userID string, in NewAlert) (*models.Alert, error) {
	const opn = "alerts.Service.Create"

	if in.Direction == "" {
		in.Direction = models.DirectionDown
	}

	alert := &models.Alert{
		UserID:     userID,
		ProductID:  in.ProductID,
		CategoryID: in.CategoryID,
		Threshold:  in.Threshold,
		Direction:  in.Direction,
	}
	if err := alert.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", opn, err)
	}

	if err := s.checkTarget(ctx, alert); err != nil {
		return nil, fmt.Errorf("%s: %w", opn, err)
	}

	if err := s.store.CreateAlert(ctx, alert); err != nil {
		return nil, fmt.Errorf("%s: %w", opn, err)
	}
	s.log.InfoContext(ctx, "Alert created", "op", opn, "alert", alert.ID, "user", userID)

	return alert, nil
}

func (s *Service) checkTarget(ctx context.Context, alert *models.Alert) error {
	var err error
	if alert.ProductID != "" {
		_, err = s.store.GetProduct(ctx, alert.ProductID)
	} else {
		_, err = s.store.GetCategory(ctx, alert.CategoryID)
	}

	if errors.Is(err, repository.ErrNotFound) {
		return ErrTargetNotFound
	}

	return err
}

// ListForUser returns the alerts owned by userID.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]models.Alert, error) {
	const opn = "alerts.Service.ListForUser"

	if userID == "" {
		return nil, fmt.Errorf("%s: %w", opn, models.ErrMissingAlertOwner)
	}

	alerts, err := s.store.AlertsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opn, err)
	}

	return alerts, nil
}

// Delete removes an alert if it belongs to userID.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	const opn = "alerts.Service.Delete"

	if userID == "" {
		return fmt.Errorf("%s: %w", opn, models.ErrMissingAlertOwner)
	}

	if err := s.store.DeleteAlert(ctx, userID, id); err != nil {
		return fmt.Errorf("%s: %w", opn, err)
	}

	return nil
}
