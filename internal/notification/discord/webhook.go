package discord

import (
	"fmt"
	"strconv"
	"time"

	"github.com/assist-by/kestrel/internal/notification"
)

const footerText = "Assist by Kestrel 🦅"

// SendInfo는 일반 정보 알림을 전송합니다
func (c *Client) SendInfo(message string) error {
	embed := NewEmbed().
		SetDescription(message).
		SetColor(notification.ColorInfo).
		SetFooter(footerText).
		SetTimestamp(time.Now())

	return c.sendToWebhook(WebhookMessage{
		Embeds: []Embed{*embed},
	})
}

// SendError는 에러 알림을 전송합니다
func (c *Client) SendError(err error) error {
	embed := NewEmbed().
		SetTitle("에러 발생").
		SetDescription(fmt.Sprintf("```%v```", err)).
		SetColor(notification.ColorError).
		SetFooter(footerText).
		SetTimestamp(time.Now())

	return c.sendToWebhook(WebhookMessage{
		Embeds: []Embed{*embed},
	})
}

// SendOrder는 주문 접수 알림을 전송합니다
func (c *Client) SendOrder(event notification.OrderEvent) error {
	embed := NewEmbed().
		SetTitle(fmt.Sprintf("주문 접수: %s", event.Symbol)).
		SetColor(notification.GetColorForSide(event.Side)).
		AddField("방향", event.Side, true).
		AddField("유형", event.Type, true).
		AddField("수량", strconv.FormatFloat(event.Quantity, 'f', -1, 64), true).
		SetFooter(footerText).
		SetTimestamp(time.Now())

	if event.Price > 0 {
		embed.AddField("가격", strconv.FormatFloat(event.Price, 'f', -1, 64), true)
	}
	if event.Status != "" {
		embed.AddField("상태", event.Status, true)
	}
	if event.OrderID != "" {
		embed.AddField("주문 ID", event.OrderID, true)
	}

	return c.sendToWebhook(WebhookMessage{
		Embeds: []Embed{*embed},
	})
}
