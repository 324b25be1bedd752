package app

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"hydration_notification_bot/internal/domain/delivery"
	"hydration_notification_bot/internal/domain/intake"
	"hydration_notification_bot/internal/domain/milestone"
	"hydration_notification_bot/internal/domain/notification"
	"hydration_notification_bot/internal/domain/profile"
	idb "hydration_notification_bot/internal/infra/database"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{t: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fakeProfileRepo struct {
	mu        sync.Mutex
	profiles  map[string]*profile.Profile
	getErr    error
	ensureErr error
	upsertErr error
	listErr   error
}

func newFakeProfileRepo(ps ...*profile.Profile) *fakeProfileRepo {
	r := &fakeProfileRepo{profiles: make(map[string]*profile.Profile)}
	for _, p := range ps {
		c := *p
		r.profiles[p.UserID] = &c
	}
	return r
}

func (r *fakeProfileRepo) Get(_ context.Context, userID string) (*profile.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	p, ok := r.profiles[userID]
	if !ok {
		return nil, idb.ErrProfileNotFound
	}
	c := *p
	return &c, nil
}

func (r *fakeProfileRepo) Upsert(_ context.Context, p *profile.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.upsertErr != nil {
		return r.upsertErr
	}
	c := *p
	r.profiles[p.UserID] = &c
	return nil
}

func (r *fakeProfileRepo) Ensure(_ context.Context, p *profile.Profile) (*profile.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ensureErr != nil {
		return nil, r.ensureErr
	}
	if _, ok := r.profiles[p.UserID]; !ok {
		c := *p
		r.profiles[p.UserID] = profile.Normalize(&c)
	}
	c := *r.profiles[p.UserID]
	return &c, nil
}

func (r *fakeProfileRepo) ListUserIDs(context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	ids := make([]string, 0, len(r.profiles))
	for id := range r.profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *fakeProfileRepo) stored(userID string) *profile.Profile {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.profiles[userID]
}

type fakeNotificationRepo struct {
	mu        sync.Mutex
	records   []*notification.Notification
	appendErr error
}

func (r *fakeNotificationRepo) Append(_ context.Context, n *notification.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.appendErr != nil {
		return r.appendErr
	}
	c := *n
	r.records = append(r.records, &c)
	return nil
}

func (r *fakeNotificationRepo) ListByUser(_ context.Context, userID string, limit int) ([]*notification.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*notification.Notification
	for i := len(r.records) - 1; i >= 0 && len(out) < limit; i-- {
		if r.records[i].UserID == userID {
			out = append(out, r.records[i])
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) MarkAllRead(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, rec := range r.records {
		if rec.UserID == userID && !rec.Read {
			rec.Read = true
			n++
		}
	}
	return n, nil
}

func (r *fakeNotificationRepo) all() []*notification.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*notification.Notification(nil), r.records...)
}

type fakeIntakeRepo struct {
	mu       sync.Mutex
	entries  []*intake.Entry
	addErr   error
	totalErr error
	lastFrom time.Time
	lastTo   time.Time
}

func (r *fakeIntakeRepo) Add(_ context.Context, e *intake.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.addErr != nil {
		return r.addErr
	}
	e.ID = int64(len(r.entries) + 1)
	c := *e
	r.entries = append(r.entries, &c)
	return nil
}

func (r *fakeIntakeRepo) TotalBetween(_ context.Context, userID string, from, to time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastFrom, r.lastTo = from, to
	if r.totalErr != nil {
		return 0, r.totalErr
	}
	total := 0
	for _, e := range r.entries {
		if e.UserID == userID && !e.LoggedAt.Before(from) && e.LoggedAt.Before(to) {
			total += e.AmountMl
		}
	}
	return total, nil
}

type sendCall struct {
	address string
	text    string
}

type fakeSender struct {
	channel delivery.Channel
	fail    bool
	mu      sync.Mutex
	calls   []sendCall
}

func newFakeSender(ch delivery.Channel, fail bool) *fakeSender {
	return &fakeSender{channel: ch, fail: fail}
}

func (f *fakeSender) Channel() delivery.Channel { return f.channel }

func (f *fakeSender) Send(_ context.Context, address, text string) delivery.Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, sendCall{address: address, text: text})
	if f.fail {
		return delivery.Failed(fmt.Sprintf("%s provider down", f.channel))
	}
	return delivery.Outcome{Success: true, ProviderRef: string(f.channel) + "-ref"}
}

func (f *fakeSender) Calls() []sendCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sendCall(nil), f.calls...)
}

type fakePersonalizer struct {
	text  string
	err   error
	delay time.Duration
	mu    sync.Mutex
	calls []string
}

func (f *fakePersonalizer) Personalize(_ context.Context, userName, milestoneType string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, userName+"|"+milestoneType)
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.text, f.err
}

type fakeNotificationService struct {
	mu          sync.Mutex
	percentages []float64
	levels      []milestone.Level
}

func (f *fakeNotificationService) ProcessIntake(_ context.Context, _ string, percentage float64) []milestone.Level {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.percentages = append(f.percentages, percentage)
	return f.levels
}

func (f *fakeNotificationService) SendTestNotification(context.Context, string) (delivery.Attempt, error) {
	return delivery.Attempt{}, nil
}

func (f *fakeNotificationService) PostDailyTip(context.Context) error { return nil }

func (f *fakeNotificationService) ResetStaleMilestones() int { return 0 }

func (f *fakeNotificationService) Wait() {}
