package templates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var brand = Branding{AppName: "Bonsai Buddy", CompanyName: "Bonsai Buddy Ltd", SupportURL: "https://example.com/help"}

func TestRenderForgotPassword(t *testing.T) {
	d := NewForgotPasswordData(brand, "Ann", "ann@example.com", "https://app.test/reset?token=abc", 30*time.Minute, WithIP("10.0.0.1"))

	subject, text, html, err := Render(ForgotPassword, ToMap(d))
	require.NoError(t, err)
	assert.Equal(t, "Reset your Bonsai Buddy password", subject)
	assert.Contains(t, text, "https://app.test/reset?token=abc")
	assert.Contains(t, text, "Requested from 10.0.0.1")
	assert.Contains(t, html, "ann@example.com")
	assert.NotEmpty(t, d.ExpiresAtText)
}

func TestRenderContactMessageEscapesHTML(t *testing.T) {
	d := NewContactMessageData(brand, "team@example.com", "Ann Lee", "ann@example.com", "<script>alert(1)</script>")

	subject, text, html, err := Render(ContactMessage, d)
	require.NoError(t, err)
	assert.Equal(t, "New Contact Form Submission from Ann Lee", subject)
	assert.Contains(t, text, "<script>alert(1)</script>")
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestEveryTemplateHasAllParts(t *testing.T) {
	for _, name := range Names {
		for _, part := range []string{".subject.tmpl", ".text.tmpl", ".html.tmpl"} {
			_, err := FS.Open(name + part)
			assert.NoError(t, err, name+part)
		}
	}
}

func TestDefaultFn(t *testing.T) {
	assert.Equal(t, "x", defaultFn("x", ""))
	assert.Equal(t, "x", defaultFn("x", nil))
	assert.Equal(t, "x", defaultFn("x", 0))
	assert.Equal(t, "y", defaultFn("x", "y"))
}
