package negotiation

import (
	"context"
	"sync"

	"agromarket/internal/domain"
	"agromarket/internal/domain/entity"
	"agromarket/internal/domain/value"
	"agromarket/pkg/errcodes"
)

type memoryStore struct {
	mu     sync.Mutex
	nextID int64
	offers map[int64]entity.Offer
	lots   map[int64]entity.Lot

	forceConflict bool
}

func newMemoryStore(lots ...entity.Lot) *memoryStore {
	s := &memoryStore{
		offers: make(map[int64]entity.Offer),
		lots:   make(map[int64]entity.Lot),
	}

	for _, l := range lots {
		s.lots[l.ID] = l
	}

	return s
}

func (s *memoryStore) Create(_ context.Context, offer *entity.Offer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	offer.ID = s.nextID
	offer.Version = 1
	s.offers[offer.ID] = *offer

	return nil
}

func (s *memoryStore) GetByID(_ context.Context, id int64) (*entity.Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	offer, ok := s.offers[id]
	if !ok {
		return nil, domain.NewError(errcodes.NotFound, "offer not found")
	}

	return &offer, nil
}

func (s *memoryStore) Update(_ context.Context, offer *entity.Offer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.updateLocked(offer)
}

func (s *memoryStore) Accept(_ context.Context, offer *entity.Offer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.updateLocked(offer); err != nil {
		return err
	}

	lot := s.lots[offer.LotID]
	lot.Status = value.LotStatusUnderOffer
	s.lots[offer.LotID] = lot

	return nil
}

func (s *memoryStore) updateLocked(offer *entity.Offer) error {
	current, ok := s.offers[offer.ID]
	if !ok {
		return domain.NewError(errcodes.NotFound, "offer not found")
	}

	if s.forceConflict || current.Version != offer.Version {
		return domain.NewError(errcodes.Conflict, "offer version mismatch")
	}

	offer.Version++
	s.offers[offer.ID] = *offer

	return nil
}

func (s *memoryStore) ListByBuyer(_ context.Context, buyerID int64) ([]entity.Offer, error) {
	return s.filter(func(o entity.Offer) bool { return o.BuyerID == buyerID }), nil
}

func (s *memoryStore) ListBySeller(_ context.Context, sellerID int64) ([]entity.Offer, error) {
	return s.filter(func(o entity.Offer) bool { return o.SellerID == sellerID }), nil
}

func (s *memoryStore) filter(keep func(entity.Offer) bool) []entity.Offer {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []entity.Offer

	for id := s.nextID; id > 0; id-- {
		if o, ok := s.offers[id]; ok && keep(o) {
			out = append(out, o)
		}
	}

	return out
}

func (s *memoryStore) lot(id int64) entity.Lot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lots[id]
}

type lotReader struct {
	store *memoryStore
}

func (r lotReader) GetByID(_ context.Context, id int64) (*entity.Lot, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	lot, ok := r.store.lots[id]
	if !ok {
		return nil, domain.NewError(errcodes.NotFound, "lot not found")
	}

	return &lot, nil
}

type push struct {
	userID int64
	text   string
}

type recordingPusher struct {
	mu     sync.Mutex
	pushes []push
}

func (p *recordingPusher) Push(_ context.Context, userID int64, text string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.pushes = append(p.pushes, push{userID: userID, text: text})
}

func (p *recordingPusher) all() []push {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]push(nil), p.pushes...)
}
