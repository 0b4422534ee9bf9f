package store

import (
	"context"
	"sort"
	"sync"

	"github.com/lbin817/MSE/models"
)

// MemStore keeps all records in memory. It backs the tests and runs the
// server without a DATABASE_URL, the same way the original deployment fell
// back to a local file store. A single mutex serializes transactions, and
// Update works on a deep copy of the data that only replaces the live maps
// on success, so a failed transaction leaves nothing behind.
type MemStore struct {
	mu   sync.RWMutex
	data *memData
}

type memData struct {
	teams     map[int64]*models.Team
	purchases map[int64]*models.Purchase
	multis    map[int64]*models.MultiPurchase
	others    map[int64]*models.OtherRequest

	nextTeamID     int64
	nextPurchaseID int64
	nextMultiID    int64
	nextItemID     int64
	nextOtherID    int64
}

func NewMemStore() *MemStore {
	return &MemStore{data: &memData{
		teams:          make(map[int64]*models.Team),
		purchases:      make(map[int64]*models.Purchase),
		multis:         make(map[int64]*models.MultiPurchase),
		others:         make(map[int64]*models.OtherRequest),
		nextTeamID:     1,
		nextPurchaseID: 1,
		nextMultiID:    1,
		nextItemID:     1,
		nextOtherID:    1,
	}}
}

func (s *MemStore) Update(ctx context.Context, fn func(Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.data.clone()
	if err := fn(&memTx{data: staged}); err != nil {
		return err
	}
	s.data = staged
	return nil
}

func (s *MemStore) View(ctx context.Context, fn func(Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Reads get copies, so handing fn the live data is safe.
	return fn(&memTx{data: s.data})
}

func (s *MemStore) Close() error { return nil }

func (d *memData) clone() *memData {
	c := &memData{
		teams:          make(map[int64]*models.Team, len(d.teams)),
		purchases:      make(map[int64]*models.Purchase, len(d.purchases)),
		multis:         make(map[int64]*models.MultiPurchase, len(d.multis)),
		others:         make(map[int64]*models.OtherRequest, len(d.others)),
		nextTeamID:     d.nextTeamID,
		nextPurchaseID: d.nextPurchaseID,
		nextMultiID:    d.nextMultiID,
		nextItemID:     d.nextItemID,
		nextOtherID:    d.nextOtherID,
	}
	for id, t := range d.teams {
		c.teams[id] = copyTeam(t)
	}
	for id, p := range d.purchases {
		c.purchases[id] = copyPurchase(p)
	}
	for id, m := range d.multis {
		c.multis[id] = copyMulti(m)
	}
	for id, r := range d.others {
		c.others[id] = copyOther(r)
	}
	return c
}

func copyTeam(t *models.Team) *models.Team {
	c := *t
	return &c
}

func copyPurchase(p *models.Purchase) *models.Purchase {
	c := *p
	return &c
}

func copyMulti(m *models.MultiPurchase) *models.MultiPurchase {
	c := *m
	c.Items = make([]models.MultiPurchaseItem, len(m.Items))
	copy(c.Items, m.Items)
	return &c
}

func copyOther(r *models.OtherRequest) *models.OtherRequest {
	c := *r
	return &c
}

type memTx struct {
	data *memData
}

func (tx *memTx) Team(id int64) (*models.Team, error) {
	t, ok := tx.data.teams[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyTeam(t), nil
}

func (tx *memTx) TeamByName(name string) (*models.Team, error) {
	for _, t := range tx.data.teams {
		if t.Name == name {
			return copyTeam(t), nil
		}
	}
	return nil, ErrNotFound
}

func (tx *memTx) Teams() ([]*models.Team, error) {
	out := make([]*models.Team, 0, len(tx.data.teams))
	for _, t := range tx.data.teams {
		out = append(out, copyTeam(t))
	}
	sortByID(out, func(t *models.Team) int64 { return t.ID })
	return out, nil
}

func (tx *memTx) SaveTeam(t *models.Team) error {
	if t.ID == 0 {
		t.ID = tx.data.nextTeamID
		tx.data.nextTeamID++
	} else if _, ok := tx.data.teams[t.ID]; !ok {
		return ErrNotFound
	}
	tx.data.teams[t.ID] = copyTeam(t)
	return nil
}

func (tx *memTx) Purchase(id int64) (*models.Purchase, error) {
	p, ok := tx.data.purchases[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyPurchase(p), nil
}

func (tx *memTx) Purchases() ([]*models.Purchase, error) {
	out := make([]*models.Purchase, 0, len(tx.data.purchases))
	for _, p := range tx.data.purchases {
		out = append(out, copyPurchase(p))
	}
	sortByID(out, func(p *models.Purchase) int64 { return p.ID })
	return out, nil
}

func (tx *memTx) SavePurchase(p *models.Purchase) error {
	if p.ID == 0 {
		p.ID = tx.data.nextPurchaseID
		tx.data.nextPurchaseID++
	} else if _, ok := tx.data.purchases[p.ID]; !ok {
		return ErrNotFound
	}
	tx.data.purchases[p.ID] = copyPurchase(p)
	return nil
}

func (tx *memTx) DeletePurchase(id int64) error {
	if _, ok := tx.data.purchases[id]; !ok {
		return ErrNotFound
	}
	delete(tx.data.purchases, id)
	return nil
}

func (tx *memTx) MultiPurchase(id int64) (*models.MultiPurchase, error) {
	m, ok := tx.data.multis[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyMulti(m), nil
}

func (tx *memTx) MultiPurchases() ([]*models.MultiPurchase, error) {
	out := make([]*models.MultiPurchase, 0, len(tx.data.multis))
	for _, m := range tx.data.multis {
		out = append(out, copyMulti(m))
	}
	sortByID(out, func(m *models.MultiPurchase) int64 { return m.ID })
	return out, nil
}

func (tx *memTx) SaveMultiPurchase(m *models.MultiPurchase) error {
	if m.ID == 0 {
		m.ID = tx.data.nextMultiID
		tx.data.nextMultiID++
	} else if _, ok := tx.data.multis[m.ID]; !ok {
		return ErrNotFound
	}
	for i := range m.Items {
		if m.Items[i].ID == 0 {
			m.Items[i].ID = tx.data.nextItemID
			tx.data.nextItemID++
		}
	}
	tx.data.multis[m.ID] = copyMulti(m)
	return nil
}

// DeleteMultiPurchase removes the parent and, with it, every line item:
// items live inside the parent record, so the cascade is free here.
func (tx *memTx) DeleteMultiPurchase(id int64) error {
	if _, ok := tx.data.multis[id]; !ok {
		return ErrNotFound
	}
	delete(tx.data.multis, id)
	return nil
}

func (tx *memTx) OtherRequest(id int64) (*models.OtherRequest, error) {
	r, ok := tx.data.others[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyOther(r), nil
}

func (tx *memTx) OtherRequests() ([]*models.OtherRequest, error) {
	out := make([]*models.OtherRequest, 0, len(tx.data.others))
	for _, r := range tx.data.others {
		out = append(out, copyOther(r))
	}
	sortByID(out, func(r *models.OtherRequest) int64 { return r.ID })
	return out, nil
}

func (tx *memTx) SaveOtherRequest(r *models.OtherRequest) error {
	if r.ID == 0 {
		r.ID = tx.data.nextOtherID
		tx.data.nextOtherID++
	} else if _, ok := tx.data.others[r.ID]; !ok {
		return ErrNotFound
	}
	tx.data.others[r.ID] = copyOther(r)
	return nil
}

func (tx *memTx) DeleteOtherRequest(id int64) error {
	if _, ok := tx.data.others[id]; !ok {
		return ErrNotFound
	}
	delete(tx.data.others, id)
	return nil
}

func sortByID[T any](s []T, id func(T) int64) {
	sort.Slice(s, func(i, j int) bool { return id(s[i]) < id(s[j]) })
}
