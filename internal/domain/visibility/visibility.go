// Package visibility holds the privacy rules that decide what a viewer may see.
// All functions are pure; an empty viewerID means an unauthenticated viewer.
package visibility

import (
	"slices"
	"strings"

	"github.com/oksasatya/bonsai-buddy/internal/domain/entity"
)

// CanViewPost reports whether viewerID may see p. The author always can;
// everyone else needs a public post from a non-private account. A post whose
// author was not loaded is treated as coming from a private account.
func CanViewPost(p entity.Post, viewerID string) bool {
	if viewerID != "" && p.UserID == viewerID {
		return true
	}
	if !p.IsPublic || p.Author == nil {
		return false
	}
	return !p.Author.IsPrivate
}

// FilterVisiblePosts keeps the posts viewerID may see, preserving order.
func FilterVisiblePosts(posts []entity.Post, viewerID string) []entity.Post {
	out := make([]entity.Post, 0, len(posts))
	for _, p := range posts {
		if CanViewPost(p, viewerID) {
			out = append(out, p)
		}
	}
	return out
}

// CanViewProfileContent reports whether a profile's collection and posts are shown to viewerID.
func CanViewProfileContent(profile entity.Profile, viewerID string) bool {
	if viewerID != "" && profile.ID == viewerID {
		return true
	}
	return !profile.IsPrivate
}

// CanViewSpecimen applies the owner's account privacy to a specimen.
// Specimens without a loaded owner are hidden from everyone but the owner.
func CanViewSpecimen(s entity.Specimen, viewerID string) bool {
	if viewerID != "" && s.UserID == viewerID {
		return true
	}
	if s.Owner == nil {
		return false
	}
	return !s.Owner.IsPrivate
}

// FilterVisibleSpecimens keeps the specimens viewerID may see, preserving order.
func FilterVisibleSpecimens(specimens []entity.Specimen, viewerID string) []entity.Specimen {
	out := make([]entity.Specimen, 0, len(specimens))
	for _, s := range specimens {
		if CanViewSpecimen(s, viewerID) {
			out = append(out, s)
		}
	}
	return out
}

// CanEditComment: only the comment author edits content.
func CanEditComment(c entity.Comment, viewerID string) bool {
	return viewerID != "" && c.UserID == viewerID
}

// CanModerateComment reports whether viewerID may delete c on a post written by postAuthorID.
func CanModerateComment(c entity.Comment, postAuthorID, viewerID string) bool {
	if viewerID == "" {
		return false
	}
	return c.UserID == viewerID || postAuthorID == viewerID
}

// SortFeed orders posts by most recent activity (edit time when edited, else
// creation time) descending. Ties fall back to id ascending.
func SortFeed(posts []entity.Post) {
	slices.SortStableFunc(posts, func(a, b entity.Post) int {
		if c := b.ActivityAt().Compare(a.ActivityAt()); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}
