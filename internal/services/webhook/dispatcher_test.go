package webhook

import (
	"context"
	"crypto/hmac"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payflow/internal/models"
)

func TestSign(t *testing.T) {
	sig := Sign("whsec_test", []byte(`{"event":"payment.completed"}`))
	assert.Len(t, sig, 64) // hex sha256

	// Deterministic for the same secret and body.
	assert.Equal(t, sig, Sign("whsec_test", []byte(`{"event":"payment.completed"}`)))
	// Different secret, different signature.
	assert.NotEqual(t, sig, Sign("whsec_other", []byte(`{"event":"payment.completed"}`)))
}

func TestDeliver(t *testing.T) {
	t.Run("sends a signed payload the receiver can verify", func(t *testing.T) {
		var gotBody []byte
		var gotSig, gotEvent string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotBody, _ = io.ReadAll(r.Body)
			gotSig = r.Header.Get("X-PayFlow-Signature")
			gotEvent = r.Header.Get("X-PayFlow-Event")
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		wh := &models.Webhook{URL: srv.URL, Secret: "whsec_test"}
		d := NewDispatcher(nil, zerolog.Nop())

		result := d.Deliver(context.Background(), wh, models.EventPaymentCompleted, models.JSON{
			"orderId": "ORDER_1_ABC",
			"amount":  100.0,
		})

		require.True(t, result.Success)
		assert.Equal(t, http.StatusOK, result.StatusCode)
		assert.Equal(t, models.EventPaymentCompleted, gotEvent)
		assert.True(t, hmac.Equal([]byte(gotSig), []byte(Sign("whsec_test", gotBody))))

		var envelope struct {
			Event string                 `json:"event"`
			Data  map[string]interface{} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(gotBody, &envelope))
		assert.Equal(t, models.EventPaymentCompleted, envelope.Event)
		assert.Equal(t, "ORDER_1_ABC", envelope.Data["orderId"])
	})

	t.Run("non-2xx counts as failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		wh := &models.Webhook{URL: srv.URL, Secret: "whsec_test"}
		d := NewDispatcher(nil, zerolog.Nop())

		result := d.Deliver(context.Background(), wh, "webhook.test", models.JSON{})
		assert.False(t, result.Success)
		assert.Equal(t, http.StatusBadGateway, result.StatusCode)
	})

	t.Run("unreachable endpoint reports the error", func(t *testing.T) {
		wh := &models.Webhook{URL: "http://127.0.0.1:1", Secret: "whsec_test"}
		d := NewDispatcher(nil, zerolog.Nop())

		result := d.Deliver(context.Background(), wh, "webhook.test", models.JSON{})
		assert.False(t, result.Success)
		assert.NotEmpty(t, result.Error)
	})
}
