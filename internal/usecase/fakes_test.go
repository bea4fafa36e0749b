package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/meanly/wordtrack/internal/entity"
	"github.com/meanly/wordtrack/internal/repository"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// sequentialIDs returns a newID func yielding id-1, id-2, ...
func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

// tickingClock returns a clock advancing one second per call, so CreatedAt
// ordering in tests is unambiguous.
func tickingClock(start time.Time) func() time.Time {
	n := 0
	return func() time.Time {
		n++
		return start.Add(time.Duration(n) * time.Second)
	}
}

type fakeProgressRepo struct {
	mu    sync.RWMutex
	items map[string]*entity.ProgressRecord // keyed userID+"/"+itemID
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{items: make(map[string]*entity.ProgressRecord)}
}

func progressKey(userID, itemID string) string { return userID + "/" + itemID }

func (r *fakeProgressRepo) Create(ctx context.Context, rec *entity.ProgressRecord) (*entity.ProgressRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := progressKey(rec.UserID, rec.ItemID)
	if _, ok := r.items[key]; ok {
		return nil, entity.ErrDuplicateProgress
	}
	r.items[key] = rec.Clone()
	return rec.Clone(), nil
}

func (r *fakeProgressRepo) Update(ctx context.Context, rec *entity.ProgressRecord) (*entity.ProgressRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := progressKey(rec.UserID, rec.ItemID)
	if _, ok := r.items[key]; !ok {
		return nil, entity.ErrProgressNotFound
	}
	r.items[key] = rec.Clone()
	return rec.Clone(), nil
}

func (r *fakeProgressRepo) GetByItem(ctx context.Context, userID, itemID string) (*entity.ProgressRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.items[progressKey(userID, itemID)]
	if !ok {
		return nil, entity.ErrProgressNotFound
	}
	return rec.Clone(), nil
}

func (r *fakeProgressRepo) List(ctx context.Context, userID string) ([]*entity.ProgressRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*entity.ProgressRecord
	for _, rec := range r.items {
		if rec.UserID == userID {
			out = append(out, rec.Clone())
		}
	}
	return out, nil
}

func (r *fakeProgressRepo) ListDue(ctx context.Context, userID string, now time.Time, limit int) ([]*entity.ProgressRecord, error) {
	all, err := r.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	var out []*entity.ProgressRecord
	for _, rec := range all {
		weak := rec.Strength == entity.StrengthNew || rec.Strength == entity.StrengthLearning
		if rec.Due(now) || weak {
			out = append(out, rec)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *fakeProgressRepo) Delete(ctx context.Context, userID, itemID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := progressKey(userID, itemID)
	if _, ok := r.items[key]; !ok {
		return entity.ErrProgressNotFound
	}
	delete(r.items, key)
	return nil
}

type fakeItemRepo struct {
	mu    sync.RWMutex
	items map[string]*entity.VocabularyItem
}

func newFakeItemRepo(items ...*entity.VocabularyItem) *fakeItemRepo {
	repo := &fakeItemRepo{items: make(map[string]*entity.VocabularyItem)}
	for _, item := range items {
		repo.items[item.ID] = item
	}
	return repo
}

func (r *fakeItemRepo) Upsert(ctx context.Context, item *entity.VocabularyItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copy := *item
	r.items[item.ID] = &copy
	return nil
}

func (r *fakeItemRepo) Get(ctx context.Context, id string) (*entity.VocabularyItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok {
		return nil, entity.ErrItemNotFound
	}
	copy := *item
	return &copy, nil
}

func (r *fakeItemRepo) List(ctx context.Context) ([]*entity.VocabularyItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*entity.VocabularyItem
	for _, item := range r.items {
		copy := *item
		out = append(out, &copy)
	}
	return out, nil
}

// fakeMutationQueue implements the coalescing contract in memory: one entry
// per (user, item), replacement keeps the earliest CreatedAt.
type fakeMutationQueue struct {
	mu          sync.Mutex
	entries     []*entity.QueuedMutation
	deadLetters []*entity.DeadLetter
}

func newFakeMutationQueue() *fakeMutationQueue { return &fakeMutationQueue{} }

func (q *fakeMutationQueue) Enqueue(ctx context.Context, m *entity.QueuedMutation) (*entity.QueuedMutation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	copy := *m
	for i, existing := range q.entries {
		if existing.UserID == m.UserID && existing.ItemID == m.ItemID {
			copy.ID = existing.ID
			copy.CreatedAt = existing.CreatedAt
			copy.RetryCount = 0
			q.entries[i] = &copy
			return &copy, nil
		}
	}
	q.entries = append(q.entries, &copy)
	return &copy, nil
}

func (q *fakeMutationQueue) ListPending(ctx context.Context, userID string) ([]*entity.QueuedMutation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []*entity.QueuedMutation
	for _, m := range q.entries {
		if m.UserID == userID {
			copy := *m
			out = append(out, &copy)
		}
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].CreatedAt.Before(out[j-1].CreatedAt); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out, nil
}

func (q *fakeMutationQueue) DequeueConfirmed(ctx context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, m := range q.entries {
		if m.ID == id {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return nil
		}
	}
	return entity.ErrMutationNotFound
}

func (q *fakeMutationQueue) MarkFailed(ctx context.Context, id, reason string) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, m := range q.entries {
		if m.ID != id {
			continue
		}
		m.RetryCount++
		if m.RetryCount > repository.MaxRetries {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			q.deadLetters = append(q.deadLetters, &entity.DeadLetter{Mutation: *m, Reason: reason, FailedAt: testNow})
			return true, nil
		}
		return false, nil
	}
	return false, entity.ErrMutationNotFound
}

func (q *fakeMutationQueue) ListDeadLetters(ctx context.Context, userID string) ([]*entity.DeadLetter, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []*entity.DeadLetter
	for _, dl := range q.deadLetters {
		if dl.Mutation.UserID == userID {
			copy := *dl
			out = append(out, &copy)
		}
	}
	return out, nil
}

func (q *fakeMutationQueue) PendingCount(ctx context.Context, userID string) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	count := 0
	for _, m := range q.entries {
		if m.UserID == userID {
			count++
		}
	}
	return count, nil
}

type fakeEvaluator struct {
	eval *entity.Evaluation
	err  error
}

func (e *fakeEvaluator) Evaluate(ctx context.Context, sentence string, item *entity.VocabularyItem) (*entity.Evaluation, error) {
	if e.err != nil {
		return nil, e.err
	}
	copy := *e.eval
	return &copy, nil
}

type storeCall struct {
	op     string // "upsert" or "delete"
	itemID string
}

// fakeRemoteStore records call order and replays scripted responses per item.
type fakeRemoteStore struct {
	mu        sync.Mutex
	calls     []storeCall
	responses map[string][]error // keyed by itemID, consumed in order; nil entry = success
}

func newFakeRemoteStore() *fakeRemoteStore {
	return &fakeRemoteStore{responses: make(map[string][]error)}
}

func (s *fakeRemoteStore) scriptResponses(itemID string, errs ...error) {
	s.responses[itemID] = append(s.responses[itemID], errs...)
}

func (s *fakeRemoteStore) nextResponse(itemID string) error {
	queue := s.responses[itemID]
	if len(queue) == 0 {
		return nil
	}
	err := queue[0]
	s.responses[itemID] = queue[1:]
	return err
}

func (s *fakeRemoteStore) UpsertProgress(ctx context.Context, rec *entity.ProgressRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, storeCall{op: "upsert", itemID: rec.ItemID})
	return s.nextResponse(rec.ItemID)
}

func (s *fakeRemoteStore) DeleteProgress(ctx context.Context, userID, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, storeCall{op: "delete", itemID: itemID})
	return s.nextResponse(itemID)
}

type fakeProbe struct{ online bool }

func (p *fakeProbe) IsOnline(ctx context.Context) bool { return p.online }
