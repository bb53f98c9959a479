// Package alerts keeps the alert subscriptions and the notification feed.
//
// Both lists live in a store.KV as JSON arrays. They are read once on first
// use and written through on every change. A missing or unreadable value
// starts out empty.
package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/importer-intel/internal/model"
	"github.com/sells-group/importer-intel/internal/store"
)

// Storage keys.
const (
	SubscriptionsKey = "importerIntel-subscriptions"
	NotificationsKey = "importerIntel-notifications"
)

// ErrInvalidSubscription is returned for a blank company or a bad email.
var ErrInvalidSubscription = eris.New("alerts: invalid subscription")

// Service manages subscriptions and notifications.
type Service struct {
	kv store.KV

	mu     sync.Mutex
	loaded bool
	subs   []model.Subscription
	notes  []model.Notification

	now   func() time.Time
	newID func() string
}

// NewService creates a Service backed by kv.
func NewService(kv store.KV) *Service {
	return &Service{
		kv:    kv,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Subscribe registers email for alerts about company. A second subscription
// for the same company replaces the first in place. A confirmation is
// prepended to the feed and returned.
func (s *Service) Subscribe(ctx context.Context, company, email string) (model.Notification, error) {
	company = strings.TrimSpace(company)
	email = strings.TrimSpace(email)
	if company == "" {
		return model.Notification{}, eris.Wrap(ErrInvalidSubscription, "alerts: company name is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return model.Notification{}, eris.Wrapf(ErrInvalidSubscription, "alerts: email %q", email)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(ctx); err != nil {
		return model.Notification{}, err
	}

	subs := upsert(s.subs, model.Subscription{CompanyName: company, Email: email})
	note := model.Notification{
		ID:        s.newID(),
		Message:   fmt.Sprintf("You are now subscribed to alerts for %s.", company),
		Timestamp: s.now().UnixMilli(),
	}
	notes := append([]model.Notification{note}, s.notes...)

	if err := s.save(ctx, SubscriptionsKey, subs); err != nil {
		return model.Notification{}, err
	}
	if err := s.save(ctx, NotificationsKey, notes); err != nil {
		return model.Notification{}, err
	}
	s.subs, s.notes = subs, notes

	zap.L().Info("alerts: subscribed", zap.String("company", company))
	return note, nil
}

// Subscriptions returns a copy of the subscriptions in insertion order.
func (s *Service) Subscriptions(ctx context.Context) ([]model.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(ctx); err != nil {
		return nil, err
	}
	return append([]model.Subscription{}, s.subs...), nil
}

// Subscribed reports whether company has a subscription.
func (s *Service) Subscribed(ctx context.Context, company string) (bool, error) {
	subs, err := s.Subscriptions(ctx)
	if err != nil {
		return false, err
	}
	company = strings.TrimSpace(company)
	for _, sub := range subs {
		if sub.CompanyName == company {
			return true, nil
		}
	}
	return false, nil
}

// Notifications returns the feed, newest first.
func (s *Service) Notifications(ctx context.Context) ([]model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(ctx); err != nil {
		return nil, err
	}
	return append([]model.Notification{}, s.notes...), nil
}

// Unread returns the badge count. Every entry in the feed is unread until
// the feed is cleared.
func (s *Service) Unread(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(ctx); err != nil {
		return 0, err
	}
	return len(s.notes), nil
}

// ClearNotifications empties the feed. Subscriptions are kept.
func (s *Service) ClearNotifications(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(ctx); err != nil {
		return err
	}
	notes := []model.Notification{}
	if err := s.save(ctx, NotificationsKey, notes); err != nil {
		return err
	}
	s.notes = notes
	return nil
}

func (s *Service) loadLocked(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	subs, err := load[model.Subscription](ctx, s.kv, SubscriptionsKey)
	if err != nil {
		return err
	}
	notes, err := load[model.Notification](ctx, s.kv, NotificationsKey)
	if err != nil {
		return err
	}
	s.subs, s.notes, s.loaded = subs, notes, true
	return nil
}

func (s *Service) save(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return eris.Wrapf(err, "alerts: marshal %s", key)
	}
	return eris.Wrapf(s.kv.Put(ctx, key, data), "alerts: save %s", key)
}

// load reads a JSON array. Missing or corrupt values yield an empty list.
func load[T any](ctx context.Context, kv store.KV, key string) ([]T, error) {
	data, err := kv.Get(ctx, key)
	if err != nil {
		return nil, eris.Wrapf(err, "alerts: load %s", key)
	}
	out := []T{}
	if len(data) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		zap.L().Warn("alerts: discarding unreadable value", zap.String("key", key), zap.Error(err))
		return []T{}, nil
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// upsert replaces the entry with the same company, keeping its position, or
// appends a new one.
func upsert(subs []model.Subscription, sub model.Subscription) []model.Subscription {
	out := append([]model.Subscription{}, subs...)
	for i := range out {
		if out[i].CompanyName == sub.CompanyName {
			out[i] = sub
			return out
		}
	}
	return append(out, sub)
}
