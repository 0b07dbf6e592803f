package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hookURL = "https://hooks.example.test/toolwear"

func newMockedClient(t *testing.T, token string) *WebhookClient {
	t.Helper()
	client := NewClient(Config{URL: hookURL, Token: token})
	httpmock.ActivateNonDefault(client.HTTPClient())
	t.Cleanup(httpmock.DeactivateAndReset)
	return client
}

func TestSend(t *testing.T) {
	client := newMockedClient(t, "secret")

	var got Message
	httpmock.RegisterResponder(http.MethodPost, hookURL, func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "Bearer secret", req.Header.Get("Authorization"))
		if err := decodeJSON(req, &got); err != nil {
			return httpmock.NewStringResponse(http.StatusBadRequest, ""), nil
		}
		return httpmock.NewStringResponse(http.StatusOK, `{"ok":true}`), nil
	})

	err := client.Send(context.Background(), Message{Title: "Alertas", Text: "2 ferramentas em alerta"})
	require.NoError(t, err)
	assert.Equal(t, Message{Title: "Alertas", Text: "2 ferramentas em alerta"}, got)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestSendAPIError(t *testing.T) {
	client := newMockedClient(t, "")

	httpmock.RegisterResponder(http.MethodPost, hookURL,
		httpmock.NewJsonResponderOrPanic(http.StatusForbidden, map[string]string{"message": "invalid token"}))

	err := client.Send(context.Background(), Message{Text: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "code=403")
	assert.Contains(t, err.Error(), "invalid token")
}

func TestSendWithoutURL(t *testing.T) {
	err := NewClient(Config{}).Send(context.Background(), Message{Text: "x"})
	assert.Error(t, err)
}

func decodeJSON(req *http.Request, v any) error {
	defer req.Body.Close()
	return json.NewDecoder(req.Body).Decode(v)
}
