package services

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/P3chys/exchange-api/internal/models"
)

type fakeApplicationStore struct {
	mu      sync.Mutex
	items   map[int]models.Application
	saveErr error
	saves   int
}

func newFakeApplicationStore(apps ...models.Application) *fakeApplicationStore {
	s := &fakeApplicationStore{items: make(map[int]models.Application)}
	for _, a := range apps {
		s.items[a.ID] = cloneApplication(a)
	}
	return s
}

func cloneApplication(a models.Application) models.Application {
	a.Documents = append([]models.ApplicationDocument(nil), a.Documents...)
	return a
}

func (s *fakeApplicationStore) GetByID(_ context.Context, id int) (*models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	a = cloneApplication(a)
	return &a, nil
}

func (s *fakeApplicationStore) GetAll(_ context.Context) ([]models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Application, 0, len(s.items))
	for _, a := range s.items {
		out = append(out, cloneApplication(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeApplicationStore) Create(_ context.Context, a *models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[a.ID]; exists {
		return errors.New("duplicate key")
	}
	s.items[a.ID] = cloneApplication(*a)
	return nil
}

func (s *fakeApplicationStore) Save(_ context.Context, a *models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	s.items[a.ID] = cloneApplication(*a)
	return nil
}

func (s *fakeApplicationStore) DeleteDocument(_ context.Context, applicationID, documentID int) (*models.ApplicationDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.items[applicationID]
	if !ok {
		return nil, ErrNotFound
	}
	for i, doc := range a.Documents {
		if doc.ID == documentID {
			a.Documents = append(a.Documents[:i:i], a.Documents[i+1:]...)
			s.items[applicationID] = a
			return &doc, nil
		}
	}
	return nil, ErrNotFound
}

type fakeProgramStore struct {
	mu    sync.Mutex
	items map[int]models.ExchangeProgram
}

func newFakeProgramStore(programs ...models.ExchangeProgram) *fakeProgramStore {
	s := &fakeProgramStore{items: make(map[int]models.ExchangeProgram)}
	for _, p := range programs {
		s.items[p.ID] = p
	}
	return s
}

func (s *fakeProgramStore) GetByID(_ context.Context, id int) (*models.ExchangeProgram, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *fakeProgramStore) GetAll(_ context.Context) ([]models.ExchangeProgram, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ExchangeProgram, 0, len(s.items))
	for _, p := range s.items {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeProgramStore) Create(_ context.Context, p *models.ExchangeProgram) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[p.ID] = *p
	return nil
}

func (s *fakeProgramStore) Save(_ context.Context, p *models.ExchangeProgram) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[p.ID] = *p
	return nil
}

type fakeUserStore struct {
	users map[int]models.User
	err   error
}

func newFakeUserStore(users ...models.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[int]models.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) GetByID(_ context.Context, id int) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

// fakeAllocator hands out the next value per table, starting from the
// configured floor.
type fakeAllocator struct {
	mu    sync.Mutex
	next  map[string]int
	fail  map[string]error
	calls map[string]int
}

func newFakeAllocator() *fakeAllocator {
	return &fakeAllocator{next: map[string]int{}, fail: map[string]error{}, calls: map[string]int{}}
}

func (a *fakeAllocator) startAt(seq Sequence, id int) *fakeAllocator {
	a.next[seq.Table] = id
	return a
}

func (a *fakeAllocator) NextID(_ context.Context, seq Sequence) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls[seq.Table]++
	if err := a.fail[seq.Table]; err != nil {
		return 0, err
	}
	if a.next[seq.Table] == 0 {
		a.next[seq.Table] = 1
	}
	id := a.next[seq.Table]
	a.next[seq.Table]++
	return id, nil
}

type fakeRecorder struct {
	mu         sync.Mutex
	activities []models.Activity
	err        error
}

func (r *fakeRecorder) Record(_ context.Context, activity models.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.activities = append(r.activities, activity)
	return nil
}

func (r *fakeRecorder) types() []models.ActivityType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.ActivityType, 0, len(r.activities))
	for _, a := range r.activities {
		out = append(out, a.ActivityType)
	}
	return out
}

type fakeIndex struct {
	indexed map[int]models.ExchangeProgram
	removed []int
	hits    []int
	err     error
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{indexed: map[int]models.ExchangeProgram{}}
}

func (i *fakeIndex) IndexProgram(p models.ExchangeProgram) error {
	if i.err != nil {
		return i.err
	}
	i.indexed[p.ID] = p
	return nil
}

func (i *fakeIndex) RemoveProgram(id int) error {
	if i.err != nil {
		return i.err
	}
	delete(i.indexed, id)
	i.removed = append(i.removed, id)
	return nil
}

func (i *fakeIndex) SearchProgramIDs(string) ([]int, error) {
	if i.err != nil {
		return nil, i.err
	}
	return i.hits, nil
}

type fakeObjects struct {
	deleted []string
}

func (o *fakeObjects) DeleteFile(_ context.Context, key string) error {
	o.deleted = append(o.deleted, key)
	return nil
}
