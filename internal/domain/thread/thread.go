// Package thread turns a flat, creation-ordered comment list into a reply tree.
package thread

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/oksasatya/bonsai-buddy/internal/domain/entity"
)

// DeletedPlaceholder replaces the content of soft-deleted comments.
const DeletedPlaceholder = "[Comment deleted]"

// Active carries what only a live comment has.
type Active struct {
	Content  string
	AuthorID string
	Author   *entity.Profile
	EditedAt *time.Time
}

// Node is one comment in the tree. A nil Active marks a tombstone: the
// comment was deleted but keeps its position so its replies stay reachable.
type Node struct {
	ID              string
	PostID          string
	ParentCommentID *string
	CreatedAt       time.Time
	LikeCount       int
	ViewerLiked     bool
	Active          *Active
	Replies         []*Node
}

func (n *Node) IsDeleted() bool { return n.Active == nil }

// Content returns the text to display.
func (n *Node) Content() string {
	if n.Active == nil {
		return DeletedPlaceholder
	}
	return n.Active.Content
}

type nodeJSON struct {
	ID              string          `json:"id"`
	PostID          string          `json:"post_id"`
	ParentCommentID *string         `json:"parent_comment_id"`
	UserID          string          `json:"user_id,omitempty"`
	Author          *entity.Profile `json:"author,omitempty"`
	Content         string          `json:"content"`
	IsDeleted       bool            `json:"is_deleted"`
	EditedAt        *time.Time      `json:"edited_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	Likes           int             `json:"likes"`
	IsLiked         bool            `json:"is_liked"`
	Replies         []*Node         `json:"replies"`
}

func (n *Node) MarshalJSON() ([]byte, error) {
	out := nodeJSON{
		ID:              n.ID,
		PostID:          n.PostID,
		ParentCommentID: n.ParentCommentID,
		Content:         n.Content(),
		IsDeleted:       n.IsDeleted(),
		CreatedAt:       n.CreatedAt,
		Likes:           n.LikeCount,
		IsLiked:         n.ViewerLiked,
		Replies:         n.Replies,
	}
	if out.Replies == nil {
		out.Replies = []*Node{}
	}
	if n.Active != nil {
		out.UserID = n.Active.AuthorID
		out.EditedAt = n.Active.EditedAt
		if n.Active.Author != nil {
			a := n.Active.Author.PublicView()
			out.Author = &a
		}
	}
	return json.Marshal(out)
}

// Build links rows into a forest. Rows should be in creation order; that
// order is kept among siblings. A reply attaches to its parent wherever the
// parent sits in rows. Replies to a missing parent become roots, and a parent
// cycle is broken at its earliest row, so every distinct row appears exactly
// once. Rows repeating an id already seen are dropped.
func Build(rows []entity.Comment, likeCounts map[string]int, viewerLikes map[string]bool) []*Node {
	index := make(map[string]*Node, len(rows))
	order := make([]*Node, 0, len(rows))
	for _, c := range rows {
		if _, dup := index[c.ID]; dup {
			continue
		}
		n := &Node{
			ID:              c.ID,
			PostID:          c.PostID,
			ParentCommentID: c.ParentCommentID,
			CreatedAt:       c.CreatedAt,
			LikeCount:       likeCounts[c.ID],
			ViewerLiked:     viewerLikes[c.ID],
			Replies:         []*Node{},
		}
		if !c.IsDeleted {
			n.Active = &Active{Content: c.Content, AuthorID: c.UserID, Author: c.Author, EditedAt: c.EditedAt}
		}
		index[c.ID] = n
		order = append(order, n)
	}

	parentOf := make(map[string]*Node, len(order))
	for _, n := range order {
		if n.ParentCommentID == nil || *n.ParentCommentID == n.ID {
			continue
		}
		if parent, ok := index[*n.ParentCommentID]; ok {
			parentOf[n.ID] = parent
		}
	}
	for _, n := range order {
		if inCycle(n, parentOf, len(order)) {
			delete(parentOf, n.ID)
		}
	}

	roots := make([]*Node, 0, len(order))
	for _, n := range order {
		if parent, ok := parentOf[n.ID]; ok {
			parent.Replies = append(parent.Replies, n)
			continue
		}
		roots = append(roots, n)
	}
	return roots
}

// inCycle reports whether following parents from n leads back to n.
func inCycle(n *Node, parentOf map[string]*Node, limit int) bool {
	cur := n
	for i := 0; i < limit; i++ {
		parent, ok := parentOf[cur.ID]
		if !ok {
			return false
		}
		if parent == n {
			return true
		}
		cur = parent
	}
	return false
}

type SortOrder string

const (
	SortNewest    SortOrder = "newest"
	SortOldest    SortOrder = "oldest"
	SortMostLiked SortOrder = "most-liked"
)

// ParseSortOrder accepts the query-string spelling; empty means newest.
func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortNewest:
		return SortNewest, nil
	case SortOldest:
		return SortOldest, nil
	case SortMostLiked, "most_liked", "mostliked":
		return SortMostLiked, nil
	}
	return "", fmt.Errorf("unknown sort order %q", s)
}

// Sort orders every level of the tree in place by the same key.
// Equal keys fall back to creation time ascending, then id.
func Sort(nodes []*Node, order SortOrder) {
	slices.SortStableFunc(nodes, func(a, b *Node) int {
		var c int
		switch order {
		case SortOldest:
			c = a.CreatedAt.Compare(b.CreatedAt)
		case SortMostLiked:
			c = b.LikeCount - a.LikeCount
		default:
			c = b.CreatedAt.Compare(a.CreatedAt)
		}
		if c != 0 {
			return c
		}
		if c = a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	for _, n := range nodes {
		Sort(n.Replies, order)
	}
}

// CountVisible counts live comments at every depth. Tombstones are skipped
// but their replies still count.
func CountVisible(nodes []*Node) int {
	count := 0
	for _, n := range nodes {
		if !n.IsDeleted() {
			count++
		}
		count += CountVisible(n.Replies)
	}
	return count
}

// Size counts every node, tombstones included.
func Size(nodes []*Node) int {
	count := 0
	for _, n := range nodes {
		count += 1 + Size(n.Replies)
	}
	return count
}

// Find returns the node with id, searching all depths.
func Find(nodes []*Node, id string) *Node {
	for _, n := range nodes {
		if n.ID == id {
			return n
		}
		if found := Find(n.Replies, id); found != nil {
			return found
		}
	}
	return nil
}
