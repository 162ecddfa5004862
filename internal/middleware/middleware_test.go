package middleware

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(h fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Post("/webhook", h, func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func post(t *testing.T, app *fiber.App, body string, header map[string]string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestHubSignature(t *testing.T) {
	const secret = "app-secret"
	body := `{"object":"whatsapp_business_account","entry":[]}`
	app := newApp(ValidateHubSignature(secret))

	resp := post(t, app, body, map[string]string{SignatureHeader: "sha256=" + Sign(secret, []byte(body))})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	out, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "ok", string(out))

	resp = post(t, app, body, map[string]string{SignatureHeader: "sha256=" + strings.ToUpper(Sign(secret, []byte(body)))})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = post(t, app, body+" ", map[string]string{SignatureHeader: "sha256=" + Sign(secret, []byte(body))})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = post(t, app, body, map[string]string{SignatureHeader: Sign(secret, []byte(body))})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = post(t, app, body, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHubSignaturePermissiveWithoutSecret(t *testing.T) {
	app := newApp(ValidateHubSignature(""))
	resp := post(t, app, `{}`, map[string]string{SignatureHeader: "sha256=bogus"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPIToken(t *testing.T) {
	app := newApp(ValidateAPIToken("s3cret"))

	resp := post(t, app, `{}`, map[string]string{"Authorization": "Bearer s3cret"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = post(t, app, `{}`, map[string]string{"Authorization": "Bearer wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = post(t, app, `{}`, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	open := newApp(ValidateAPIToken(""))
	resp = post(t, open, `{}`, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func twilioSignature(token, target string, params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	data := target
	for _, k := range keys {
		data += k + params.Get(k)
	}
	mac := hmac.New(sha1.New, []byte(token))
	mac.Write([]byte(data))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestTwilioSignature(t *testing.T) {
	const (
		token     = "twilio-token"
		publicURL = "https://shop.example.com/webhook/twilio"
	)
	form := url.Values{"From": {"whatsapp:+255700000001"}, "Body": {"menu"}, "MessageSid": {"SM1"}}
	body := form.Encode()
	app := newApp(ValidateTwilioSignature(token, publicURL))
	formHeader := map[string]string{fiber.HeaderContentType: fiber.MIMEApplicationForm}

	signed := map[string]string{
		fiber.HeaderContentType: fiber.MIMEApplicationForm,
		TwilioSignatureHeader:   twilioSignature(token, publicURL, form),
	}
	resp := post(t, app, body, signed)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = post(t, app, body, formHeader)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	tampered := url.Values{"From": {"whatsapp:+255700000001"}, "Body": {"cancel"}, "MessageSid": {"SM1"}}
	resp = post(t, app, tampered.Encode(), signed)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = post(t, newApp(ValidateTwilioSignature("", "")), body, formHeader)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
