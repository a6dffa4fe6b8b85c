package entity

import "time"

type HealthStatus string

const (
	HealthExcellent      HealthStatus = "excellent"
	HealthGood           HealthStatus = "good"
	HealthFair           HealthStatus = "fair"
	HealthNeedsAttention HealthStatus = "needs-attention"
)

// HealthStatuses lists the accepted values in display order.
var HealthStatuses = []HealthStatus{HealthExcellent, HealthGood, HealthFair, HealthNeedsAttention}

func (h HealthStatus) Valid() bool {
	for _, s := range HealthStatuses {
		if h == s {
			return true
		}
	}
	return false
}

// Specimen is a tracked bonsai tree owned by one profile.
type Specimen struct {
	ID        string       `db:"id" json:"id"`
	UserID    string       `db:"user_id" json:"user_id"`
	Name      string       `db:"name" json:"name"`
	Species   string       `db:"species" json:"species"`
	Age       int          `db:"age" json:"age"`
	Health    HealthStatus `db:"health" json:"health"`
	ImageURL  string       `db:"image_url" json:"image_url"`
	CareNotes *string      `db:"care_notes" json:"care_notes"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt time.Time    `db:"updated_at" json:"updated_at"`

	Owner *Profile `db:"-" json:"owner,omitempty"`
}

// SpecimenPatch holds optional specimen updates.
type SpecimenPatch struct {
	Name      *string       `json:"name" validate:"omitempty,min=1,max=120"`
	Species   *string       `json:"species" validate:"omitempty,min=1,max=120"`
	Age       *int          `json:"age" validate:"omitempty,min=1,max=5000"`
	Health    *HealthStatus `json:"health" validate:"omitempty,health"`
	CareNotes *string       `json:"care_notes" validate:"omitempty,max=4000"`
	ImageURL  *string       `json:"-"`
}

func (p SpecimenPatch) Columns() map[string]any {
	cols := map[string]any{}
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.Species != nil {
		cols["species"] = *p.Species
	}
	if p.Age != nil {
		cols["age"] = *p.Age
	}
	if p.Health != nil {
		cols["health"] = string(*p.Health)
	}
	if p.CareNotes != nil {
		cols["care_notes"] = *p.CareNotes
	}
	if p.ImageURL != nil {
		cols["image_url"] = *p.ImageURL
	}
	return cols
}

func (p SpecimenPatch) Apply(dst *Specimen) {
	if p.Name != nil {
		dst.Name = *p.Name
	}
	if p.Species != nil {
		dst.Species = *p.Species
	}
	if p.Age != nil {
		dst.Age = *p.Age
	}
	if p.Health != nil {
		dst.Health = *p.Health
	}
	if p.CareNotes != nil {
		dst.CareNotes = p.CareNotes
	}
	if p.ImageURL != nil {
		dst.ImageURL = *p.ImageURL
	}
}
