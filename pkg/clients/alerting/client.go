package alerting

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"Gin_postgres_redis_inventory_tool/models"
)

// Notifier 发低库存预警的出口；未配置 webhook 时用 Nop。
type Notifier interface {
	NotifyLowStock(ctx context.Context, items []models.Item) error
}

// WebhookClient posts low-stock alerts to a configured webhook endpoint.
type WebhookClient struct {
	httpClient *resty.Client
}

func NewWebhookClient(webhookURL string) *WebhookClient {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(webhookURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(10 * time.Second)

	return &WebhookClient{httpClient: restyClient}
}

type lowStockAlert struct {
	ItemID        string `json:"itemId"`
	Name          string `json:"name"`
	Department    string `json:"department"`
	Quantity      int    `json:"quantity"`
	MinStockLevel int    `json:"minStockLevel"`
}

type alertPayload struct {
	Text  string          `json:"text"`
	Items []lowStockAlert `json:"items"`
}

func (c *WebhookClient) NotifyLowStock(ctx context.Context, items []models.Item) error {
	if len(items) == 0 {
		return nil
	}

	payload := alertPayload{
		Text:  fmt.Sprintf("%d item(s) at or below minimum stock level", len(items)),
		Items: make([]lowStockAlert, 0, len(items)),
	}
	for _, it := range items {
		payload.Items = append(payload.Items, lowStockAlert{
			ItemID:        it.ID,
			Name:          it.Name,
			Department:    it.Department,
			Quantity:      it.Quantity,
			MinStockLevel: it.MinStockLevel,
		})
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		Post("")
	if err != nil {
		return fmt.Errorf("post low stock alert: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("low stock webhook returned %s: %s", resp.Status(), resp.String())
	}
	return nil
}

// Nop swallows alerts; keeps the scheduler wiring unconditional.
type Nop struct{}

func (Nop) NotifyLowStock(context.Context, []models.Item) error { return nil }
