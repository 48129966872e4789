// Package subscription captures magazine subscriptions: a subscriber row per
// email plus a one-year subscription record.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/supabase-community/supabase-go"
	"go.uber.org/zap"
)

var ErrEmailRequired = errors.New("email is required")

// Service writes subscribers and subscriptions to the relational store.
type Service struct {
	client *supabase.Client
	logger *zap.Logger
}

// New wraps an existing Supabase client. A nil client disables capture; the
// handler reports the feature as unavailable.
func New(client *supabase.Client, logger *zap.Logger) *Service {
	return &Service{client: client, logger: logger.Named("subscription")}
}

// Available reports whether subscription capture can persist anything.
func (s *Service) Available() bool { return s != nil && s.client != nil }

type subscriberRow struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type subscriptionRow struct {
	ID               string    `json:"id"`
	SubscriberID     string    `json:"subscriber_id"`
	SubscriptionType string    `json:"subscription_type"`
	IsActive         bool      `json:"is_active"`
	StartDate        time.Time `json:"start_date"`
	EndDate          time.Time `json:"end_date"`
}

// Subscribe records a one-year subscription for the email, creating the
// subscriber on first contact. The two inserts are not transactional; a
// crash between them leaves a subscriber without a subscription, which the
// next signup repairs.
func (s *Service) Subscribe(ctx context.Context, email, name, subscriptionType string) (string, error) {
	if email == "" {
		return "", ErrEmailRequired
	}
	if subscriptionType == "" {
		subscriptionType = "digital"
	}

	var existing []subscriberRow
	_, err := s.client.From("subscribers").
		Select("*", "", false).
		Eq("email", email).
		ExecuteTo(&existing)
	if err != nil {
		return "", fmt.Errorf("subscriber lookup failed: %w", err)
	}

	var subscriberID string
	if len(existing) > 0 {
		subscriberID = existing[0].ID
	} else {
		row := subscriberRow{ID: uuid.NewString(), Email: email, Name: name}
		var inserted []subscriberRow
		if _, err := s.client.From("subscribers").Insert(row, false, "", "", "").ExecuteTo(&inserted); err != nil {
			return "", fmt.Errorf("subscriber insert failed: %w", err)
		}
		subscriberID = row.ID
	}

	now := time.Now().UTC()
	sub := subscriptionRow{
		ID:               uuid.NewString(),
		SubscriberID:     subscriberID,
		SubscriptionType: subscriptionType,
		IsActive:         true,
		StartDate:        now,
		EndDate:          now.AddDate(1, 0, 0),
	}
	var inserted []subscriptionRow
	if _, err := s.client.From("subscriptions").Insert(sub, false, "", "", "").ExecuteTo(&inserted); err != nil {
		return "", fmt.Errorf("subscription insert failed: %w", err)
	}

	s.logger.Info("subscription captured", zap.String("type", subscriptionType))
	return sub.ID, nil
}
