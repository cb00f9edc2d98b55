package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"

	"marketplace/internal/usecase"
)

// 外部呼び出しの上限時間
const callTimeout = 15 * time.Second

// テスト差し替え用に使うAPIだけ切り出す
type intentAPI interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

type refundAPI interface {
	New(params *stripe.RefundParams) (*stripe.Refund, error)
}

// usecase.PaymentGatewayのStripe実装
type StripeGateway struct {
	intents intentAPI
	refunds refundAPI
}

type StripeGatewayConfig struct {
	APIKey   string
	Backends *stripe.Backends

	//テスト用の差し替え口
	Intents intentAPI
	Refunds refundAPI
}

func NewStripeGateway(cfg StripeGatewayConfig) (*StripeGateway, error) {
	if cfg.Intents != nil && cfg.Refunds != nil {
		return &StripeGateway{intents: cfg.Intents, refunds: cfg.Refunds}, nil
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("stripe: api key is required")
	}
	sc := client.New(apiKey, cfg.Backends)
	return &StripeGateway{intents: sc.PaymentIntents, refunds: sc.Refunds}, nil
}

func (g *StripeGateway) CreateIntent(ctx context.Context, amountMinorUnits int64, currency string, metadata map[string]string) (usecase.PaymentIntent, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountMinorUnits),
		Currency: stripe.String(strings.ToLower(currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	if len(metadata) > 0 {
		params.Metadata = make(map[string]string, len(metadata))
		for k, v := range metadata {
			params.Metadata[k] = v
		}
	}

	intent, err := g.intents.New(params)
	if err != nil {
		return usecase.PaymentIntent{}, fmt.Errorf("stripe: create payment intent: %w", err)
	}
	return usecase.PaymentIntent{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
	}, nil
}

func (g *StripeGateway) Refund(ctx context.Context, transactionID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(transactionID),
	}
	params.Context = ctx

	refund, err := g.refunds.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe: refund payment intent: %w", err)
	}
	return string(refund.Status), nil
}
