// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package payments

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/treat-pageant/cliparse"
)

// placeholder secrets that must never authenticate a webhook
var weakWebhookSecrets = map[string]bool{
	"change-me": true,
	"changeme":  true,
	"secret":    true,
}

// NewProvider builds the provider named by PAYMENT_PROVIDER. The stub is
// only used when asked for by name.
func NewProvider(cfg cliparse.Config) (Provider, error) {
	secret := strings.TrimSpace(cfg.PaymentWebhookSecret)
	if secret == "" || weakWebhookSecrets[strings.ToLower(secret)] {
		return nil, fmt.Errorf("PAYMENT_WEBHOOK_SECRET must be set to a private value")
	}

	switch cfg.PaymentProvider {
	case "stub":
		return NewStub(secret, cfg.PublicBaseURL), nil
	case "flutterwave":
		if cfg.PaymentSecretKey == "" {
			return nil, fmt.Errorf("PAYMENT_SECRET_KEY required for flutterwave")
		}
		client := &http.Client{Timeout: 20 * time.Second}
		return NewFlutterwave(client, cfg.PaymentAPIURL, cfg.PaymentSecretKey, secret), nil
	default:
		return nil, fmt.Errorf("unknown payment provider: %s", cfg.PaymentProvider)
	}
}
