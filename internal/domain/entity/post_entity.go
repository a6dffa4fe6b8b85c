package entity

import "time"

// Post is a timeline update about one specimen.
type Post struct {
	ID         string     `db:"id" json:"id"`
	SpecimenID string     `db:"specimen_id" json:"specimen_id"`
	UserID     string     `db:"user_id" json:"user_id"`
	ImageURL   string     `db:"image_url" json:"image_url"`
	Caption    *string    `db:"caption" json:"caption"`
	IsPublic   bool       `db:"is_public" json:"is_public"`
	Likes      int        `db:"likes" json:"likes"`
	EditedAt   *time.Time `db:"edited_at" json:"edited_at"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`

	Specimen *Specimen `db:"-" json:"specimen,omitempty"`
	Author   *Profile  `db:"-" json:"owner,omitempty"`
	IsLiked  bool      `db:"-" json:"is_liked"`
	Comments int       `db:"-" json:"comments"`
}

// ActivityAt is the time a post last changed: its edit time if edited, else creation.
func (p Post) ActivityAt() time.Time {
	if p.EditedAt != nil && p.EditedAt.After(p.CreatedAt) {
		return *p.EditedAt
	}
	return p.CreatedAt
}

// PostPatch holds optional post updates.
type PostPatch struct {
	ImageURL *string
	Caption  *string
	IsPublic *bool
	EditedAt *time.Time
}

func (p PostPatch) Columns() map[string]any {
	cols := map[string]any{}
	if p.ImageURL != nil {
		cols["image_url"] = *p.ImageURL
	}
	if p.Caption != nil {
		cols["caption"] = *p.Caption
	}
	if p.IsPublic != nil {
		cols["is_public"] = *p.IsPublic
	}
	if p.EditedAt != nil {
		cols["edited_at"] = *p.EditedAt
	}
	return cols
}

func (p PostPatch) Apply(dst *Post) {
	if p.ImageURL != nil {
		dst.ImageURL = *p.ImageURL
	}
	if p.Caption != nil {
		dst.Caption = p.Caption
	}
	if p.IsPublic != nil {
		dst.IsPublic = *p.IsPublic
	}
	if p.EditedAt != nil {
		t := *p.EditedAt
		dst.EditedAt = &t
	}
}
