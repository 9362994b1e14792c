// Package broadcast рассылает события группам подписчиков без блокировки издателя.
package broadcast

import (
	"sort"
	"sync"

	"github.com/rs/xid"

	"agromarket/internal/domain/entity"
	"agromarket/internal/metrics"
)

const DefaultMailboxSize = 64

// Subscriber получатель событий с ограниченным почтовым ящиком.
type Subscriber struct {
	id     string
	events chan entity.Event
}

func (s *Subscriber) ID() string {
	return s.id
}

// Events закрывается после Disconnect.
func (s *Subscriber) Events() <-chan entity.Event {
	return s.events
}

// Hub именованные группы подписчиков: "global", группа тикера и "user:<id>".
// Пропущенные подписчиком события не хранятся и не переотправляются.
type Hub struct {
	mu          sync.RWMutex
	mailboxSize int
	groups      map[string]map[*Subscriber]struct{}
	members     map[*Subscriber]map[string]struct{}
}

func NewHub(mailboxSize int) *Hub {
	if mailboxSize <= 0 {
		mailboxSize = DefaultMailboxSize
	}

	return &Hub{
		mailboxSize: mailboxSize,
		groups:      make(map[string]map[*Subscriber]struct{}),
		members:     make(map[*Subscriber]map[string]struct{}),
	}
}

func (h *Hub) Connect() *Subscriber {
	sub := &Subscriber{
		id:     xid.New().String(),
		events: make(chan entity.Event, h.mailboxSize),
	}

	h.mu.Lock()
	h.members[sub] = make(map[string]struct{})
	h.mu.Unlock()

	metrics.HubSubscribers.Inc()

	return sub
}

// Subscribe идемпотентна. Возвращает true, если подписка была добавлена.
func (h *Hub) Subscribe(sub *Subscriber, group string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	joined, ok := h.members[sub]
	if !ok {
		return false
	}

	if _, ok := joined[group]; ok {
		return false
	}

	joined[group] = struct{}{}

	if h.groups[group] == nil {
		h.groups[group] = make(map[*Subscriber]struct{})
	}

	h.groups[group][sub] = struct{}{}

	return true
}

// Unsubscribe идемпотентна. Возвращает true, если подписка была удалена.
func (h *Hub) Unsubscribe(sub *Subscriber, group string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	joined, ok := h.members[sub]
	if !ok {
		return false
	}

	if _, ok := joined[group]; !ok {
		return false
	}

	delete(joined, group)
	h.leaveLocked(sub, group)

	return true
}

// Disconnect удаляет подписчика из всех групп и закрывает его ящик.
func (h *Hub) Disconnect(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	joined, ok := h.members[sub]
	if !ok {
		return
	}

	for group := range joined {
		h.leaveLocked(sub, group)
	}

	delete(h.members, sub)
	close(sub.events)

	metrics.HubSubscribers.Dec()
}

// Publish доставляет событие текущим подписчикам группы и возвращает число доставок.
// При переполненном ящике событие для этого подписчика отбрасывается.
func (h *Hub) Publish(group string, event entity.Event) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0

	for sub := range h.groups[group] {
		select {
		case sub.events <- event:
			delivered++
		default:
			metrics.HubDropped.Inc()
		}
	}

	return delivered
}

// Groups возвращает отсортированный список групп подписчика.
func (h *Hub) Groups(sub *Subscriber) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	groups := make([]string, 0, len(h.members[sub]))
	for g := range h.members[sub] {
		groups = append(groups, g)
	}

	sort.Strings(groups)

	return groups
}

func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.members)
}

func (h *Hub) leaveLocked(sub *Subscriber, group string) {
	delete(h.groups[group], sub)

	if len(h.groups[group]) == 0 {
		delete(h.groups, group)
	}
}
