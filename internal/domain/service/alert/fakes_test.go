package alert

import (
	"context"
	"sort"
	"sync"

	"agromarket/internal/domain"
	"agromarket/internal/domain/entity"
	"agromarket/pkg/errcodes"
)

type memoryRepo struct {
	mu     sync.Mutex
	nextID int64
	alerts map[int64]entity.Alert

	// beforeDeactivate вызывается между выборкой и деактивацией.
	beforeDeactivate func()
}

func newMemoryRepo(alerts ...entity.Alert) *memoryRepo {
	r := &memoryRepo{alerts: make(map[int64]entity.Alert)}

	for _, a := range alerts {
		r.alerts[a.ID] = a
		r.nextID = max(r.nextID, a.ID)
	}

	return r
}

func (r *memoryRepo) ListActiveByTicker(_ context.Context, ticker string) ([]entity.Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []entity.Alert

	for _, a := range r.alerts {
		if a.Active && a.Ticker == ticker {
			out = append(out, a)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *memoryRepo) DeactivateBatch(_ context.Context, alerts []entity.Alert) ([]int64, error) {
	if r.beforeDeactivate != nil {
		r.beforeDeactivate()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var ids []int64

	for _, a := range alerts {
		current, ok := r.alerts[a.ID]
		if !ok || !current.Active || current.Version != a.Version {
			continue
		}

		current.Active = false
		current.Version++
		r.alerts[a.ID] = current
		ids = append(ids, a.ID)
	}

	return ids, nil
}

func (r *memoryRepo) Create(_ context.Context, alert *entity.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	alert.ID = r.nextID
	r.alerts[alert.ID] = *alert

	return nil
}

func (r *memoryRepo) GetByID(_ context.Context, id int64) (*entity.Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.alerts[id]
	if !ok {
		return nil, domain.NewError(errcodes.NotFound, "alert not found")
	}

	return &a, nil
}

func (r *memoryRepo) ListByOwner(_ context.Context, ownerID int64) ([]entity.Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []entity.Alert

	for _, a := range r.alerts {
		if a.OwnerID == ownerID {
			out = append(out, a)
		}
	}

	return out, nil
}

func (r *memoryRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.alerts[id]; !ok {
		return domain.NewError(errcodes.NotFound, "alert not found")
	}

	delete(r.alerts, id)

	return nil
}

func (r *memoryRepo) get(id int64) (entity.Alert, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.alerts[id]

	return a, ok
}

type notification struct {
	userID  int64
	subject string
	text    string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func (n *recordingNotifier) NotifyUser(_ context.Context, userID int64, subject, text string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.sent = append(n.sent, notification{userID: userID, subject: subject, text: text})
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()

	return len(n.sent)
}

type memoryCommodities struct {
	items []entity.Commodity
}

func (c memoryCommodities) List(context.Context) ([]entity.Commodity, error) {
	return c.items, nil
}

func (c memoryCommodities) GetByID(_ context.Context, id int64) (*entity.Commodity, error) {
	for _, item := range c.items {
		if item.ID == id {
			return &item, nil
		}
	}

	return nil, domain.NewError(errcodes.NotFound, "commodity not found")
}
