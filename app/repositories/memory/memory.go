// Package memory holds map-backed stores with the same semantics as the
// MongoDB repositories. They back DB_DRIVER=memory and the tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/resor-app/resor/app/models"
	"github.com/resor-app/resor/app/services"
	"github.com/resor-app/resor/pkg/database"
)

// Stores groups one store per collection.
type Stores struct {
	Users      *Users
	Categories *Categories
	Foods      *Foods
	Vouchers   *Vouchers
	Orders     *Orders
}

func New() *Stores {
	return &Stores{
		Users:      &Users{byID: map[primitive.ObjectID]models.User{}},
		Categories: &Categories{byID: map[primitive.ObjectID]models.Category{}},
		Foods:      &Foods{byID: map[primitive.ObjectID]models.Food{}},
		Vouchers:   &Vouchers{byID: map[primitive.ObjectID]models.Voucher{}},
		Orders:     &Orders{byID: map[primitive.ObjectID]models.Order{}},
	}
}

// Ping always succeeds.
func (s *Stores) Ping(context.Context) error { return nil }

func now() time.Time { return time.Now().UTC().Truncate(time.Millisecond) }

func stamp(id *primitive.ObjectID, created, updated *time.Time) {
	if id.IsZero() {
		*id = primitive.NewObjectID()
	}
	t := now()
	*created, *updated = t, t
}

// byCreated orders by creation time then id so results are stable.
func byCreated[T any](items []T, key func(T) (time.Time, primitive.ObjectID)) {
	sort.SliceStable(items, func(i, j int) bool {
		ti, ii := key(items[i])
		tj, ij := key(items[j])
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return ii.Hex() < ij.Hex()
	})
}

// ---- users ----

type Users struct {
	mu   sync.RWMutex
	byID map[primitive.ObjectID]models.User
}

var _ services.UserStore = (*Users)(nil)

func (s *Users) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if strings.EqualFold(existing.Email, u.Email) {
			return database.ErrDuplicate
		}
	}
	stamp(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	s.byID[u.ID] = *u
	return nil
}

func (s *Users) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *Users) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.byID {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

// ---- categories ----

type Categories struct {
	mu   sync.RWMutex
	byID map[primitive.ObjectID]models.Category
}

var _ services.CategoryStore = (*Categories)(nil)

// CreateMany is all or nothing.
func (s *Categories) CreateMany(_ context.Context, cats []models.Category) ([]models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	titles := map[string]bool{}
	for _, c := range s.byID {
		titles[c.Title] = true
	}
	for _, c := range cats {
		if titles[c.Title] {
			return nil, database.ErrDuplicate
		}
		titles[c.Title] = true
	}

	out := make([]models.Category, len(cats))
	for i, c := range cats {
		stamp(&c.ID, &c.CreatedAt, &c.UpdatedAt)
		if c.Foods == nil {
			c.Foods = []primitive.ObjectID{}
		}
		s.byID[c.ID] = c
		out[i] = c
	}
	return out, nil
}

func (s *Categories) FindAll(_ context.Context) ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Category, 0, len(s.byID))
	for _, c := range s.byID {
		if c.ArchivedAt == nil {
			out = append(out, c)
		}
	}
	byCreated(out, func(c models.Category) (time.Time, primitive.ObjectID) { return c.CreatedAt, c.ID })
	return out, nil
}

func (s *Categories) FindByID(_ context.Context, id primitive.ObjectID) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byID[id]
	if !ok || c.ArchivedAt != nil {
		return nil, nil
	}
	c.Foods = append([]primitive.ObjectID(nil), c.Foods...)
	return &c, nil
}

func (s *Categories) Archive(_ context.Context, id primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byID[id]
	if !ok || c.ArchivedAt != nil {
		return false, nil
	}
	t := now()
	c.ArchivedAt, c.UpdatedAt = &t, t
	s.byID[id] = c
	return true, nil
}

func (s *Categories) AddFoods(_ context.Context, id primitive.ObjectID, foodIDs []primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byID[id]
	if !ok {
		return nil
	}
	c.Foods = append(append([]primitive.ObjectID(nil), c.Foods...), foodIDs...)
	c.UpdatedAt = now()
	s.byID[id] = c
	return nil
}

func (s *Categories) RemoveFood(_ context.Context, id, foodID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byID[id]
	if !ok {
		return nil
	}
	kept := make([]primitive.ObjectID, 0, len(c.Foods))
	for _, f := range c.Foods {
		if f != foodID {
			kept = append(kept, f)
		}
	}
	c.Foods, c.UpdatedAt = kept, now()
	s.byID[id] = c
	return nil
}

// ---- foods ----

type Foods struct {
	mu   sync.RWMutex
	byID map[primitive.ObjectID]models.Food
}

var _ services.MenuItemStore = (*Foods)(nil)

func (s *Foods) CreateMany(_ context.Context, foods []models.Food) ([]models.Food, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Food, len(foods))
	for i, f := range foods {
		stamp(&f.ID, &f.CreatedAt, &f.UpdatedAt)
		s.byID[f.ID] = f
		out[i] = f
	}
	return out, nil
}

func (s *Foods) FindByID(_ context.Context, id primitive.ObjectID) (*models.Food, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	return &f, nil
}

func (s *Foods) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Food, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := map[primitive.ObjectID]bool{}
	out := []models.Food{}
	for _, id := range ids {
		if f, ok := s.byID[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *Foods) FindByCategory(_ context.Context, categoryID primitive.ObjectID) ([]models.Food, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Food{}
	for _, f := range s.byID {
		if f.CategoryID == categoryID && f.ArchivedAt == nil {
			out = append(out, f)
		}
	}
	byCreated(out, func(f models.Food) (time.Time, primitive.ObjectID) { return f.CreatedAt, f.ID })
	return out, nil
}

func (s *Foods) Delete(_ context.Context, id primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return false, nil
	}
	delete(s.byID, id)
	return true, nil
}

func (s *Foods) SetImage(_ context.Context, id primitive.ObjectID, url string) (*models.Food, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	f.ImageURL, f.UpdatedAt = url, now()
	s.byID[id] = f
	return &f, nil
}

// ---- vouchers ----

type Vouchers struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]models.Voucher
}

var _ services.VoucherStore = (*Vouchers)(nil)

func (s *Vouchers) Create(_ context.Context, v *models.Voucher) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if existing.Code == v.Code {
			return database.ErrDuplicate
		}
	}
	stamp(&v.ID, &v.CreatedAt, &v.UpdatedAt)
	s.byID[v.ID] = *v
	return nil
}

func (s *Vouchers) FindAll(_ context.Context) ([]models.Voucher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Voucher, 0, len(s.byID))
	for _, v := range s.byID {
		out = append(out, v)
	}
	byCreated(out, func(v models.Voucher) (time.Time, primitive.ObjectID) { return v.CreatedAt, v.ID })
	return out, nil
}

func (s *Vouchers) FindByCode(_ context.Context, code string) (*models.Voucher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.byID {
		if v.Code == code {
			v := v
			return &v, nil
		}
	}
	return nil, nil
}

func (s *Vouchers) FindByID(_ context.Context, id primitive.ObjectID) (*models.Voucher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

// Redeem checks and flips isUsed under one lock.
func (s *Vouchers) Redeem(_ context.Context, code string) (*models.Voucher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, v := range s.byID {
		if v.Code == code && !v.IsUsed {
			v.IsUsed, v.UpdatedAt = true, now()
			s.byID[id] = v
			return &v, nil
		}
	}
	return nil, nil
}

func (s *Vouchers) Release(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.byID[id]; ok {
		v.IsUsed, v.UpdatedAt = false, now()
		s.byID[id] = v
	}
	return nil
}

// ---- orders ----

type Orders struct {
	mu   sync.RWMutex
	byID map[primitive.ObjectID]models.Order
	// FailCreate, when set, is returned by Create.
	FailCreate error
}

var _ services.OrderStore = (*Orders)(nil)

func (s *Orders) Create(_ context.Context, o *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailCreate != nil {
		return s.FailCreate
	}
	stamp(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	o.Items = append([]models.LineItem(nil), o.Items...)
	s.byID[o.ID] = *o
	return nil
}

func (s *Orders) FindByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (s *Orders) Find(_ context.Context, f services.OrderFilter) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Order{}
	for _, o := range s.byID {
		if f.UserID != nil && o.UserID != *f.UserID {
			continue
		}
		out = append(out, o)
	}
	byCreated(out, func(o models.Order) (time.Time, primitive.ObjectID) { return o.CreatedAt, o.ID })
	return out, nil
}

func (s *Orders) Delete(_ context.Context, id primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return false, nil
	}
	delete(s.byID, id)
	return true, nil
}

func (s *Orders) UpdateStatus(_ context.Context, id primitive.ObjectID, from, to models.OrderStatus) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.byID[id]
	if !ok || (from != "" && o.Status != from) {
		return nil, nil
	}
	o.Status, o.UpdatedAt = to, now()
	s.byID[id] = o
	return &o, nil
}

// Len returns the number of stored orders.
func (s *Orders) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
