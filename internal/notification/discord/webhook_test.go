package discord

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assist-by/kestrel/internal/notification"
)

func TestSendOrder(t *testing.T) {
	var received WebhookMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	c := NewClient(server.URL)

	err := c.SendOrder(notification.OrderEvent{
		Symbol:   "BTCUSDT",
		Side:     "BUY",
		Type:     "LIMIT",
		Quantity: 0.5,
		Price:    43000,
		Status:   "NEW",
		OrderID:  "12345",
	})

	require.NoError(t, err)
	require.Len(t, received.Embeds, 1)

	embed := received.Embeds[0]
	assert.Equal(t, "주문 접수: BTCUSDT", embed.Title)
	assert.Equal(t, notification.ColorSuccess, embed.Color)

	fields := map[string]string{}
	for _, f := range embed.Fields {
		fields[f.Name] = f.Value
	}
	assert.Equal(t, "BUY", fields["방향"])
	assert.Equal(t, "LIMIT", fields["유형"])
	assert.Equal(t, "0.5", fields["수량"])
	assert.Equal(t, "43000", fields["가격"])
	assert.Equal(t, "NEW", fields["상태"])
	assert.Equal(t, "12345", fields["주문 ID"])
}

func TestSendInfoWebhookError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	c := NewClient(server.URL)

	err := c.SendInfo("테스트 메시지")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "웹훅 응답 에러")
}
