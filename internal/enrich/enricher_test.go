package enrich

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Alirezastar2/utmkit-sub000/internal/model"
)

type capturingStore struct {
	mu     sync.Mutex
	clicks []*model.Click
	err    error
}

func (s *capturingStore) InsertClick(ctx context.Context, click *model.Click) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.clicks = append(s.clicks, click)
	return nil
}

type capturingPublisher struct {
	mu        sync.Mutex
	published []*model.Click
}

func (p *capturingPublisher) Publish(ctx context.Context, linkID string, click *model.Click) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, click)
	return nil
}

type capturingNotifier struct {
	mu     sync.Mutex
	events []model.EventType
}

func (n *capturingNotifier) Trigger(ctx context.Context, userID string, event model.EventType, data any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func TestEnricher_Record(t *testing.T) {
	t.Parallel()

	store := &capturingStore{}
	pub := &capturingPublisher{}
	notif := &capturingNotifier{}
	e := New(store, nil, pub, notif, testLogger(), nil)

	link := &model.Link{ID: "link-1", ShortCode: "abc123", UserID: "user-1"}
	e.Record(context.Background(), link, RawClick{
		IP:        "203.0.113.7",
		UserAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) Mobile Safari/604.1",
		Referer:   "https://instagram.com/",
	})

	if len(store.clicks) != 1 {
		t.Fatalf("stored %d clicks, want 1", len(store.clicks))
	}

	click := store.clicks[0]
	if click.ID == "" {
		t.Error("click ID is empty")
	}
	if click.LinkID != "link-1" {
		t.Errorf("click link ID = %q, want link-1", click.LinkID)
	}
	if click.DeviceType != model.DeviceMobile {
		t.Errorf("click device = %s, want MOBILE", click.DeviceType)
	}
	if click.Referer != "https://instagram.com/" {
		t.Errorf("click referer = %q", click.Referer)
	}

	if len(pub.published) != 1 {
		t.Errorf("published %d clicks, want 1", len(pub.published))
	}
	if len(notif.events) != 1 || notif.events[0] != model.EventNewClick {
		t.Errorf("notifier events = %v, want [new_click]", notif.events)
	}
}

func TestEnricher_Record_StoreFailureSkipsFanout(t *testing.T) {
	t.Parallel()

	store := &capturingStore{err: errors.New("db down")}
	pub := &capturingPublisher{}
	notif := &capturingNotifier{}
	e := New(store, nil, pub, notif, testLogger(), nil)

	link := &model.Link{ID: "link-1", UserID: "user-1"}
	e.Record(context.Background(), link, RawClick{IP: "unknown"})

	if len(pub.published) != 0 {
		t.Errorf("published %d clicks after store failure, want 0", len(pub.published))
	}
	if len(notif.events) != 0 {
		t.Errorf("triggered %d webhook events after store failure, want 0", len(notif.events))
	}
}

func TestEnricher_Record_ULIDsAreOrdered(t *testing.T) {
	t.Parallel()

	store := &capturingStore{}
	e := New(store, nil, nil, nil, testLogger(), nil)

	link := &model.Link{ID: "link-1"}
	for i := 0; i < 5; i++ {
		e.Record(context.Background(), link, RawClick{IP: "unknown"})
	}

	for i := 1; i < len(store.clicks); i++ {
		if store.clicks[i-1].ID >= store.clicks[i].ID {
			t.Errorf("click IDs not monotonic: %q >= %q", store.clicks[i-1].ID, store.clicks[i].ID)
		}
	}
}
