package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"file-share-api/internal/application/ports"
	domain "file-share-api/internal/domain/file"
)

// FakeRegistry is an in-memory file.Repository. Every method holds the lock for
// its whole duration, which mirrors single-statement atomicity in the database.
type FakeRegistry struct {
	mu      sync.Mutex
	byID    map[domain.ID]*domain.File
	byToken map[string]domain.ID

	CreateErr    error
	IncrementErr error
	DeleteErr    error
	// IncrementGate, when set, holds IncrementDownloads until it is closed.
	IncrementGate chan struct{}
	// IgnoreOwner makes FetchOwnerFiles return every row.
	IgnoreOwner bool
	creates     int
}

func NewFakeRegistry() *FakeRegistry {
	return &FakeRegistry{
		byID:    make(map[domain.ID]*domain.File),
		byToken: make(map[string]domain.ID),
	}
}

func (r *FakeRegistry) CreateFile(_ context.Context, f *domain.File) (*domain.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.creates++
	if r.CreateErr != nil {
		return nil, r.CreateErr
	}
	if _, taken := r.byToken[f.ShareToken]; taken {
		return nil, domain.ErrDuplicateToken
	}

	cp := *f
	r.byID[cp.ID] = &cp
	r.byToken[cp.ShareToken] = cp.ID

	out := cp
	return &out, nil
}

func (r *FakeRegistry) FetchOwnerFiles(_ context.Context, ownerID string) (domain.Files, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out domain.Files
	for _, f := range r.byID {
		if f.OwnerID == ownerID || r.IgnoreOwner {
			cp := *f
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	return out, nil
}

func (r *FakeRegistry) FetchByID(_ context.Context, id domain.ID) (*domain.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *f
	return &cp, nil
}

func (r *FakeRegistry) FetchByShareToken(_ context.Context, token string) (*domain.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byToken[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *r.byID[id]
	return &cp, nil
}

func (r *FakeRegistry) IncrementDownloads(ctx context.Context, id domain.ID) error {
	if r.IncrementGate != nil {
		select {
		case <-r.IncrementGate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.IncrementErr != nil {
		return r.IncrementErr
	}
	f, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	now := time.Now().UTC()
	f.DownloadCount++
	f.LastDownloadedAt = &now

	return nil
}

func (r *FakeRegistry) DeleteFile(_ context.Context, id domain.ID, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.DeleteErr != nil {
		return r.DeleteErr
	}
	f, ok := r.byID[id]
	if !ok || f.OwnerID != ownerID {
		return domain.ErrNotFound
	}
	delete(r.byToken, f.ShareToken)
	delete(r.byID, id)

	return nil
}

func (r *FakeRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// FakeObjectStore keeps objects in memory.
type FakeObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string

	PutErr    error
	DeleteErr error
	SignErr   error
	deletes   []string
}

func NewFakeObjectStore() *FakeObjectStore {
	return &FakeObjectStore{
		objects: make(map[string][]byte),
		types:   make(map[string]string),
	}
}

func (s *FakeObjectStore) Put(_ context.Context, path string, content io.Reader, _ int64, opts ports.PutOptions) error {
	if s.PutErr != nil {
		return s.PutErr
	}
	b, err := io.ReadAll(content)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.objects[path]; exists && !opts.Overwrite {
		return domain.ErrObjectExists
	}
	s.objects[path] = b
	s.types[path] = opts.ContentType

	return nil
}

func (s *FakeObjectStore) SignedURL(_ context.Context, path string, ttl time.Duration) (string, error) {
	if s.SignErr != nil {
		return "", s.SignErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[path]; !ok {
		return "", domain.ErrNotFound
	}
	return fmt.Sprintf("https://objects.test/%s?expires=%d", path, int(ttl.Seconds())), nil
}

func (s *FakeObjectStore) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deletes = append(s.deletes, path)
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	if _, ok := s.objects[path]; !ok {
		return domain.ErrNotFound
	}
	delete(s.objects, path)
	delete(s.types, path)

	return nil
}

func (s *FakeObjectStore) Has(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[path]
	return ok
}

func (s *FakeObjectStore) Content(path string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return bytes.Clone(s.objects[path])
}

func (s *FakeObjectStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// SeqTokens returns the given tokens in order, then "tok-<n>".
type SeqTokens struct {
	mu     sync.Mutex
	tokens []string
	n      int
}

func (s *SeqTokens) Mint() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.tokens) > 0 {
		t := s.tokens[0]
		s.tokens = s.tokens[1:]
		return t, nil
	}
	s.n++
	return fmt.Sprintf("tok-%d", s.n), nil
}

type FakePublisher struct {
	mu     sync.Mutex
	events []domain.Event
}

func (p *FakePublisher) Publish(e domain.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}
func (p *FakePublisher) PublisherWorker(ctx context.Context) { <-ctx.Done() }
func (p *FakePublisher) Close() error                        { return nil }

func (p *FakePublisher) Actions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Action
	}
	return out
}

type FakeOwners map[string]string

func (f FakeOwners) DisplayName(_ context.Context, ownerID string) string { return f[ownerID] }

type FakeProfiles struct {
	mu    sync.Mutex
	names map[string]string
	Err   error
	calls int
}

func (p *FakeProfiles) FetchDisplayName(_ context.Context, ownerID string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.Err != nil {
		return "", p.Err
	}
	return p.names[ownerID], nil
}

func (p *FakeProfiles) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}
