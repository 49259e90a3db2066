package cart

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"marketcart-be/internal/apperror"

	"github.com/google/uuid"
)

type pairKey struct {
	cartID    string
	productID int64
}

type memoryItem struct {
	item CartItem
	seq  uint64
}

// MemoryStore keeps carts in process memory. It enforces the same
// (cart, product) uniqueness as the postgres store.
type MemoryStore struct {
	mu      sync.Mutex
	carts   map[uint]Cart
	deleted map[string]struct{}
	items   map[string]memoryItem
	byPair  map[pairKey]string
	seq     uint64
	now     func() time.Time

	locksMu sync.Mutex
	locks   map[string]chan struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		carts:   make(map[uint]Cart),
		deleted: make(map[string]struct{}),
		items:   make(map[string]memoryItem),
		byPair:  make(map[pairKey]string),
		now:     time.Now,
		locks:   make(map[string]chan struct{}),
	}
}

func (s *MemoryStore) FindItem(ctx context.Context, cartID string, productID int64) (*CartItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byPair[pairKey{cartID, productID}]
	if !ok {
		return nil, nil
	}
	item := s.items[id].item
	return &item, nil
}

func (s *MemoryStore) ListItems(ctx context.Context, cartID string) ([]CartItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows := make([]memoryItem, 0)
	for _, mi := range s.items {
		if mi.item.CartID == cartID {
			rows = append(rows, mi)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })

	items := make([]CartItem, 0, len(rows))
	for _, mi := range rows {
		items = append(items, mi.item)
	}
	return items, nil
}

func (s *MemoryStore) Upsert(ctx context.Context, item CartItem) (CartItem, error) {
	if err := ctx.Err(); err != nil {
		return CartItem{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()

	if item.ID == "" {
		if _, gone := s.deleted[item.CartID]; gone {
			return CartItem{}, apperror.Wrap(apperror.KindUserNotFound, ErrCartDeleted)
		}

		key := pairKey{item.CartID, item.ProductID}
		if _, taken := s.byPair[key]; taken {
			return CartItem{}, apperror.StorageConflict(
				fmt.Errorf("cart %s already holds product %d", item.CartID, item.ProductID),
			)
		}

		item.ID = uuid.NewString()
		item.CreatedAt = now
		item.UpdatedAt = now

		s.seq++
		s.items[item.ID] = memoryItem{item: item, seq: s.seq}
		s.byPair[key] = item.ID
		return item, nil
	}

	existing, ok := s.items[item.ID]
	if !ok {
		return CartItem{}, apperror.CartItemNotFound(item.CartID, item.ProductID)
	}

	existing.item.Quantity = item.Quantity
	existing.item.UnitPriceCents = item.UnitPriceCents
	existing.item.UpdatedAt = now
	s.items[item.ID] = existing
	return existing.item, nil
}

func (s *MemoryStore) Delete(ctx context.Context, itemID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.deleteLocked(itemID)
	return nil
}

func (s *MemoryStore) deleteLocked(itemID string) {
	mi, ok := s.items[itemID]
	if !ok {
		return
	}
	delete(s.items, itemID)
	delete(s.byPair, pairKey{mi.item.CartID, mi.item.ProductID})
}

func (s *MemoryStore) DeleteAllForCart(ctx context.Context, cartID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.deleteCartItemsLocked(cartID)
	return nil
}

func (s *MemoryStore) DeleteItems(ctx context.Context, cartID string, itemIDs []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range itemIDs {
		if mi, ok := s.items[id]; ok && mi.item.CartID == cartID {
			s.deleteLocked(id)
		}
	}
	return nil
}

func (s *MemoryStore) LockCart(ctx context.Context, cartID string, fn func(ctx context.Context) error) error {
	sem := s.cartLock(cartID)

	select {
	case sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-sem }()

	return fn(ctx)
}

func (s *MemoryStore) cartLock(cartID string) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	sem, ok := s.locks[cartID]
	if !ok {
		sem = make(chan struct{}, 1)
		s.locks[cartID] = sem
	}
	return sem
}

func (s *MemoryStore) deleteCartItemsLocked(cartID string) {
	for id, mi := range s.items {
		if mi.item.CartID == cartID {
			s.deleteLocked(id)
		}
	}
}

func (s *MemoryStore) DeleteAllForUser(ctx context.Context, userID uint) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[userID]
	if !ok {
		return nil
	}
	s.deleteCartItemsLocked(c.ID)
	delete(s.carts, userID)
	s.deleted[c.ID] = struct{}{}
	return nil
}

func (s *MemoryStore) ResolveCartForUser(ctx context.Context, userID uint) (Cart, error) {
	if err := ctx.Err(); err != nil {
		return Cart{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.carts[userID]; ok {
		return c, nil
	}

	now := s.now().UTC()
	c := Cart{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.carts[userID] = c
	return c, nil
}
