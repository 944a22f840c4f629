// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package payments creates vote checkouts at a payment gateway and turns the
gateway's callbacks into normalized events.

Two providers are available:

  - stub: links to the local /pay/stub page; webhooks are signed with
    HMAC SHA-256 (hex) in the X-Signature header. Used in development and tests.
  - flutterwave: Flutterwave Standard. Checkout links come from POST /v3/payments;
    webhooks carry the dashboard secret hash in verif-hash.

HandleWebhook returns ErrInvalidSignature for unauthenticated callbacks and
ErrUnsupportedEvent for events that do not settle a charge.
*/
package payments
