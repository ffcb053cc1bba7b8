package dummydb

import (
	"sync"

	"github.com/trezcool/studymatch/core/message"
	"github.com/trezcool/studymatch/core/notification"
	"github.com/trezcool/studymatch/core/review"
	"github.com/trezcool/studymatch/core/session"
	"github.com/trezcool/studymatch/core/subject"
	"github.com/trezcool/studymatch/core/user"
)

type (
	// DB is an in-memory Data Store. Rows are returned in insertion order.
	DB struct {
		user         *table[user.User]
		subject      *table[subject.Subject]
		session      *table[session.Session]
		review       *table[review.Review]
		message      *table[message.Message]
		notification *table[notification.Notification]
	}

	table[T any] struct {
		sync.RWMutex
		rows  map[string]*T
		order []string
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:         newTable[user.User](),
		subject:      newTable[subject.Subject](),
		session:      newTable[session.Session](),
		review:       newTable[review.Review](),
		message:      newTable[message.Message](),
		notification: newTable[notification.Notification](),
	}
	return db, nil
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]*T)}
}

// insert adds a row, unless the id is taken. The caller holds the write lock.
func (t *table[T]) insert(id string, row T) bool {
	if _, ok := t.rows[id]; ok {
		return false
	}
	t.rows[id] = &row
	t.order = append(t.order, id)
	return true
}

func (t *table[T]) get(id string) (T, bool) {
	t.RLock()
	defer t.RUnlock()
	if row, ok := t.rows[id]; ok {
		return *row, true
	}
	var zero T
	return zero, false
}

// filter returns the rows satisfying `keep`, in insertion order. A nil `keep` returns every row.
func (t *table[T]) filter(keep func(T) bool) []T {
	t.RLock()
	defer t.RUnlock()
	rows := make([]T, 0, len(t.order))
	for _, id := range t.order {
		row := *t.rows[id]
		if keep == nil || keep(row) {
			rows = append(rows, row)
		}
	}
	return rows
}

// update applies `fn` to the row under the write lock; the row is left untouched when `fn` fails.
func (t *table[T]) update(id string, notFound error, fn func(*T) error) (T, error) {
	t.Lock()
	defer t.Unlock()
	var zero T
	row, ok := t.rows[id]
	if !ok {
		return zero, notFound
	}
	updated := *row
	if err := fn(&updated); err != nil {
		return zero, err
	}
	*row = updated
	return updated, nil
}
