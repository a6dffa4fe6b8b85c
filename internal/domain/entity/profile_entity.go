package entity

import "time"

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func (t Theme) Valid() bool { return t == ThemeLight || t == ThemeDark }

// EmailPreferences is stored as JSONB on the profile row.
type EmailPreferences struct {
	Marketing    bool `json:"marketing"`
	Updates      bool `json:"updates"`
	Community    bool `json:"community"`
	WeeklyDigest bool `json:"weekly_digest"`
}

// NotificationSettings is stored as JSONB on the profile row.
type NotificationSettings struct {
	PostLikes             bool `json:"post_likes"`
	NewFollowers          bool `json:"new_followers"`
	Comments              bool `json:"comments"`
	SpecimenSubscriptions bool `json:"specimen_subscriptions"`
}

func DefaultEmailPreferences() EmailPreferences {
	return EmailPreferences{Updates: true, Community: true}
}

func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{PostLikes: true, NewFollowers: true, Comments: true, SpecimenSubscriptions: true}
}

// Profile is the public identity of a user. One per user, id shared with users.id.
type Profile struct {
	ID                   string               `db:"id" json:"id"`
	Name                 string               `db:"name" json:"name"`
	Email                string               `db:"email" json:"email,omitempty"`
	Avatar               *string              `db:"avatar" json:"avatar"`
	IsPrivate            bool                 `db:"is_private" json:"is_private"`
	Theme                Theme                `db:"theme" json:"theme,omitempty"`
	EmailPreferences     EmailPreferences     `db:"email_preferences" json:"email_preferences"`
	NotificationSettings NotificationSettings `db:"notification_settings" json:"notification_settings"`
	CreatedAt            time.Time            `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time            `db:"updated_at" json:"updated_at"`
}

// PublicView strips fields only the owner should see.
func (p Profile) PublicView() Profile {
	p.Email = ""
	p.Theme = ""
	p.EmailPreferences = EmailPreferences{}
	p.NotificationSettings = NotificationSettings{}
	return p
}

// ProfilePatch holds optional profile updates; nil fields are left untouched.
type ProfilePatch struct {
	Name                 *string
	Avatar               *string
	IsPrivate            *bool
	Theme                *Theme
	EmailPreferences     *EmailPreferences
	NotificationSettings *NotificationSettings
}

// Columns returns the patch as column/value pairs for an UPDATE.
func (p ProfilePatch) Columns() map[string]any {
	cols := map[string]any{}
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.Avatar != nil {
		cols["avatar"] = *p.Avatar
	}
	if p.IsPrivate != nil {
		cols["is_private"] = *p.IsPrivate
	}
	if p.Theme != nil {
		cols["theme"] = string(*p.Theme)
	}
	if p.EmailPreferences != nil {
		cols["email_preferences"] = *p.EmailPreferences
	}
	if p.NotificationSettings != nil {
		cols["notification_settings"] = *p.NotificationSettings
	}
	return cols
}

// Apply copies the non-nil patch fields onto dst.
func (p ProfilePatch) Apply(dst *Profile) {
	if p.Name != nil {
		dst.Name = *p.Name
	}
	if p.Avatar != nil {
		dst.Avatar = p.Avatar
	}
	if p.IsPrivate != nil {
		dst.IsPrivate = *p.IsPrivate
	}
	if p.Theme != nil {
		dst.Theme = *p.Theme
	}
	if p.EmailPreferences != nil {
		dst.EmailPreferences = *p.EmailPreferences
	}
	if p.NotificationSettings != nil {
		dst.NotificationSettings = *p.NotificationSettings
	}
}

// Preferences is the settings-page projection of a profile.
type Preferences struct {
	Avatar               *string              `json:"avatar"`
	Theme                Theme                `json:"theme"`
	EmailPreferences     EmailPreferences     `json:"email_preferences"`
	NotificationSettings NotificationSettings `json:"notification_settings"`
	IsPrivate            bool                 `json:"is_private"`
}

func (p Profile) Preferences() Preferences {
	return Preferences{
		Avatar:               p.Avatar,
		Theme:                p.Theme,
		EmailPreferences:     p.EmailPreferences,
		NotificationSettings: p.NotificationSettings,
		IsPrivate:            p.IsPrivate,
	}
}
