// Package memory is an in-process implementation of the repository ports. It
// enforces the same uniqueness and cascade rules as the Postgres schema.
package memory

import (
	"sync"
	"time"

	"github.com/oksasatya/bonsai-buddy/internal/domain/entity"
)

type pair struct{ a, b string }

// Store holds every relation behind one lock.
type Store struct {
	mu   sync.RWMutex
	last time.Time

	// Clock returns the current time; it defaults to time.Now.
	Clock func() time.Time

	users        map[string]entity.User
	profiles     map[string]entity.Profile
	specimens    map[string]entity.Specimen
	posts        map[string]entity.Post
	comments     map[string]entity.Comment
	postLikes    map[pair]entity.PostLike
	commentLikes map[pair]entity.CommentLike
	subs         map[pair]entity.SpecimenSubscription
}

func NewStore() *Store {
	return &Store{
		Clock:        time.Now,
		users:        map[string]entity.User{},
		profiles:     map[string]entity.Profile{},
		specimens:    map[string]entity.Specimen{},
		posts:        map[string]entity.Post{},
		comments:     map[string]entity.Comment{},
		postLikes:    map[pair]entity.PostLike{},
		commentLikes: map[pair]entity.CommentLike{},
		subs:         map[pair]entity.SpecimenSubscription{},
	}
}

// now must be called with mu held. Successive calls never return the same instant
// so creation order is always recoverable from timestamps.
func (s *Store) now() time.Time {
	t := s.Clock().UTC()
	if !t.After(s.last) {
		t = s.last.Add(time.Microsecond)
	}
	s.last = t
	return t
}

// RowCounts reports the number of rows per relation.
func (s *Store) RowCounts() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]int{
		"users":                  len(s.users),
		"profiles":               len(s.profiles),
		"bonsai_specimens":       len(s.specimens),
		"bonsai_posts":           len(s.posts),
		"comments":               len(s.comments),
		"post_likes":             len(s.postLikes),
		"comment_likes":          len(s.commentLikes),
		"specimen_subscriptions": len(s.subs),
	}
}

// deleteSpecimenLocked mirrors ON DELETE CASCADE from bonsai_specimens.
func (s *Store) deleteSpecimenLocked(id string) {
	for pid, p := range s.posts {
		if p.SpecimenID == id {
			s.deletePostLocked(pid)
		}
	}
	for k := range s.subs {
		if k.a == id {
			delete(s.subs, k)
		}
	}
	delete(s.specimens, id)
}

// deletePostLocked mirrors ON DELETE CASCADE from bonsai_posts.
func (s *Store) deletePostLocked(id string) {
	for k := range s.postLikes {
		if k.a == id {
			delete(s.postLikes, k)
		}
	}
	for cid, c := range s.comments {
		if c.PostID == id {
			for k := range s.commentLikes {
				if k.a == cid {
					delete(s.commentLikes, k)
				}
			}
			delete(s.comments, cid)
		}
	}
	delete(s.posts, id)
}
