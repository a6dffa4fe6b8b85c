package templates

import (
	"time"
)

// Branding is the company and link information every email carries.
type Branding struct {
	AppName        string
	CompanyName    string
	CompanyAddress string
	LogoURL        string
	SupportURL     string
	PrivacyURL     string
	UnsubscribeURL string
}

// Option pattern
type Option func(*EmailData)

func WithIP(ip string) Option        { return func(d *EmailData) { d.IP = ip } }
func WithUserAgent(ua string) Option { return func(d *EmailData) { d.UserAgent = ua } }
func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format("02 January 2006, 15:04")
	}
}
func WithResetURL(url string) Option { return func(d *EmailData) { d.ResetURL = url } }

func WithExpiresIn(dur time.Duration) Option {
	return func(d *EmailData) {
		utc := time.Now().Add(dur).UTC()
		d.ExpiresAt = utc
		d.ExpiresAtText = utc.Format("02 January 2006, 15:04")
	}
}

// NewBaseEmailData fills the shared fields from b, then applies opts.
func NewBaseEmailData(b Branding, typ string, name, email, recipient string, opts ...Option) EmailData {
	d := EmailData{
		Name:           name,
		Email:          email,
		RecipientEmail: recipient,
		Type:           typ,

		AppName:        b.AppName,
		CompanyName:    b.CompanyName,
		CompanyAddress: b.CompanyAddress,
		LogoURL:        b.LogoURL,
		SupportURL:     b.SupportURL,
		PrivacyURL:     b.PrivacyURL,
		UnsubscribeURL: b.UnsubscribeURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func NewForgotPasswordData(b Branding, name, email, resetURL string, ttl time.Duration, opts ...Option) EmailData {
	opts = append([]Option{WithResetURL(resetURL), WithExpiresIn(ttl), WithTime(time.Now())}, opts...)
	return NewBaseEmailData(b, ForgotPassword, name, email, email, opts...)
}

func NewContactMessageData(b Branding, recipient, senderName, senderEmail, message string, opts ...Option) EmailData {
	d := NewBaseEmailData(b, ContactMessage, "", "", recipient, append([]Option{WithTime(time.Now())}, opts...)...)
	d.SenderName = senderName
	d.SenderEmail = senderEmail
	d.Message = message
	return d
}
