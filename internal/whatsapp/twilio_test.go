package whatsapp

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ananth-NQI/dukachat-backend/internal/models"
)

func TestTwilioSender(t *testing.T) {
	assert.Equal(t, "255754000111", TwilioSender("whatsapp:+255754000111"))
	assert.Equal(t, "255754000111", TwilioSender(" +255754000111 "))
}

func TestNormalizeTwilio(t *testing.T) {
	base := TwilioWebhookPayload{MessageSid: "SM1", From: "whatsapp:+255700000001", ProfileName: "Asha"}

	t.Run("text", func(t *testing.T) {
		p := base
		p.Body = "  menu "
		in := NormalizeTwilio(p)
		require.True(t, in.Supported)
		assert.Equal(t, models.EventText, in.Event.Kind)
		assert.Equal(t, "menu", in.Event.Text)
		assert.Equal(t, "255700000001", in.Event.CustomerID)
		assert.Equal(t, "SM1", in.Event.MessageID)
		assert.Equal(t, "Asha", in.Event.ProfileName)
	})

	t.Run("button", func(t *testing.T) {
		p := base
		p.ButtonPayload = "checkout"
		p.ButtonText = "Checkout"
		in := NormalizeTwilio(p)
		require.True(t, in.Supported)
		assert.Equal(t, models.EventInteractive, in.Event.Kind)
		assert.Equal(t, "checkout", in.Event.ReplyID)
		assert.Equal(t, "Checkout", in.Summary())
	})

	t.Run("location", func(t *testing.T) {
		p := base
		p.Latitude = "-6.7680"
		p.Longitude = "39.2260"
		p.Label = "Mwenge"
		in := NormalizeTwilio(p)
		require.True(t, in.Supported)
		require.NotNil(t, in.Event.Pin)
		assert.InDelta(t, -6.768, in.Event.Pin.Lat, 1e-9)
		assert.Equal(t, "Mwenge", in.Event.Pin.Name)
	})

	t.Run("bad coordinates", func(t *testing.T) {
		p := base
		p.Latitude = "north"
		p.Longitude = "39.2"
		in := NormalizeTwilio(p)
		assert.False(t, in.Supported)
		assert.Equal(t, "[location]", in.Summary())
	})

	t.Run("image", func(t *testing.T) {
		p := base
		p.NumMedia = "1"
		p.MediaUrl0 = "https://api.twilio.com/media/ME1"
		p.MediaContentType0 = "image/jpeg"
		p.Body = "receipt"
		in := NormalizeTwilio(p)
		assert.False(t, in.Supported)
		assert.Equal(t, "image", in.Type)
		assert.Equal(t, "https://api.twilio.com/media/ME1", in.MediaID)
		assert.Equal(t, "[image] receipt", in.Summary())
	})

	t.Run("audio", func(t *testing.T) {
		p := base
		p.NumMedia = "1"
		p.MediaContentType0 = "audio/ogg"
		in := NormalizeTwilio(p)
		assert.False(t, in.Supported)
		assert.Empty(t, in.MediaID)
		assert.Equal(t, "[unsupported]", in.Summary())
	})
}

func TestNormalizeTwilioCopiesRequestBuffer(t *testing.T) {
	buf := []byte("whatsapp:+255700000001MenuAsha")
	view := func(from, to int) string { return unsafe.String(&buf[from], to-from) }
	p := TwilioWebhookPayload{
		MessageSid:  "SM9",
		From:        view(0, 22),
		Body:        view(22, 26),
		ProfileName: view(26, 30),
	}

	in := NormalizeTwilio(p)
	copy(buf, "whatsapp:+255799999999checChec")

	assert.Equal(t, "255700000001", in.Event.CustomerID)
	assert.Equal(t, "Menu", in.Event.Text)
	assert.Equal(t, "Asha", in.Event.ProfileName)
}
