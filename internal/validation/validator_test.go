package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"payflow/internal/models"
)

func TestPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		valid    bool
	}{
		{"accepts mixed case with digit", "Sup3rSecret", true},
		{"rejects short", "Ab1", false},
		{"rejects no upper", "sup3rsecret", false},
		{"rejects no digit", "SuperSecret", false},
		{"rejects no lower", "SUP3RSECRET", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			v.Password("password", tt.password)
			assert.Equal(t, tt.valid, v.Valid())
		})
	}
}

func TestEmail(t *testing.T) {
	valid := []string{"a@b.co", "first.last+tag@example.com"}
	invalid := []string{"", "no-at-sign", "a@b", "a @b.com"}

	for _, email := range valid {
		v := New()
		v.Email("email", email)
		assert.True(t, v.Valid(), email)
	}
	for _, email := range invalid {
		v := New()
		v.Email("email", email)
		assert.False(t, v.Valid(), email)
	}
}

func TestURL(t *testing.T) {
	v := New()
	v.URL("url", "https://hooks.example.com/payflow")
	assert.True(t, v.Valid())

	v = New()
	v.URL("url", "not a url")
	assert.False(t, v.Valid())

	v = New()
	v.URL("url", "ftp://example.com")
	assert.False(t, v.Valid())
}

func TestProcessPayment(t *testing.T) {
	v := New()
	v.ProcessPayment("ORDER_1_ABC", models.MethodUPI)
	assert.True(t, v.Valid())

	v = New()
	v.ProcessPayment("", "CASH")
	assert.Contains(t, v.Errors, "orderId")
	assert.Contains(t, v.Errors, "paymentMethod")
}

func TestWebhook(t *testing.T) {
	v := New()
	v.Webhook("orders", "https://hooks.example.com", []string{models.EventPaymentCompleted})
	assert.True(t, v.Valid())

	v = New()
	v.Webhook("", "https://hooks.example.com", []string{"payment.exploded"})
	assert.Contains(t, v.Errors, "name")
	assert.Contains(t, v.Errors, "events")

	v = New()
	v.Webhook("orders", "https://hooks.example.com", nil)
	assert.Contains(t, v.Errors, "events")
}

func TestAnalytics(t *testing.T) {
	v := New()
	v.Analytics("30d", "week")
	assert.True(t, v.Valid())

	v = New()
	v.Analytics("2d", "hour")
	assert.Contains(t, v.Errors, "period")
	assert.Contains(t, v.Errors, "groupBy")

	// Blank parameters fall back to handler defaults and pass.
	v = New()
	v.Analytics("", "")
	assert.True(t, v.Valid())
}

func TestFuture(t *testing.T) {
	v := New()
	v.Future("expiresAt", time.Now().Add(time.Hour))
	assert.True(t, v.Valid())

	v = New()
	v.Future("expiresAt", time.Now().Add(-time.Hour))
	assert.False(t, v.Valid())
}

func TestFirstErrorWins(t *testing.T) {
	v := New()
	v.AddError("field", "first")
	v.AddError("field", "second")
	assert.Equal(t, "first", v.Errors["field"])
}
