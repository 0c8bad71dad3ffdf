// Package memory keeps every repository in process memory. It backs the
// "memory" database driver and the service tests.
package memory

import (
	"sort"
	"sync"

	"github.com/brightnest/daycare/internal/app/models"
	"github.com/brightnest/daycare/internal/app/repositories"
)

// Store is the shared state behind the in-memory repositories
type Store struct {
	mu sync.RWMutex

	seq map[string]int64

	users         map[int64]models.User
	children      map[int64]models.Child
	categories    map[int64]models.Category
	newsletters   map[int64]models.Newsletter
	announcements map[int64]models.Announcement
	events        map[int64]models.Event
	subscriptions map[int64]models.Subscription // keyed by id
	groups        map[int64]models.SubscriptionGroup
	recipients    map[recipientKey]models.NewsletterRecipient
	tokens        map[string]models.RefreshToken
}

type recipientKey struct {
	newsletterID int64
	userID       int64
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		seq:           make(map[string]int64),
		users:         make(map[int64]models.User),
		children:      make(map[int64]models.Child),
		categories:    make(map[int64]models.Category),
		newsletters:   make(map[int64]models.Newsletter),
		announcements: make(map[int64]models.Announcement),
		events:        make(map[int64]models.Event),
		subscriptions: make(map[int64]models.Subscription),
		groups:        make(map[int64]models.SubscriptionGroup),
		recipients:    make(map[recipientKey]models.NewsletterRecipient),
		tokens:        make(map[string]models.RefreshToken),
	}
}

// NewRepositories wires a fresh store into the repository container
func NewRepositories() *repositories.Repositories {
	return NewStore().Repositories()
}

// Repositories exposes the store through the repository interfaces
func (s *Store) Repositories() *repositories.Repositories {
	return &repositories.Repositories{
		UserRepository:         &UserRepository{s},
		ChildRepository:        &ChildRepository{s},
		CategoryRepository:     &CategoryRepository{s},
		NewsletterRepository:   &NewsletterRepository{s},
		AnnouncementRepository: &AnnouncementRepository{s},
		EventRepository:        &EventRepository{s},
		SubscriptionRepository: &SubscriptionRepository{s},
		TokenRepository:        &TokenRepository{s},
	}
}

// next returns the next id of table. Callers hold the write lock.
func (s *Store) next(table string) int64 {
	s.seq[table]++
	return s.seq[table]
}

func cloneIDs(ids []int64) []int64 {
	if ids == nil {
		return nil
	}
	out := make([]int64, len(ids))
	copy(out, ids)
	return out
}

func sortedIDs(ids []int64) []int64 {
	out := dedupe(ids)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func dedupe(ids []int64) []int64 {
	if ids == nil {
		return nil
	}
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func missing[T any](table map[int64]T, ids []int64) []int64 {
	var out []int64
	for _, id := range ids {
		if _, ok := table[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
