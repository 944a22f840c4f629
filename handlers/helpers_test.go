// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/treat-pageant/clock"
	"github.com/danielhkuo/treat-pageant/notify"
	"github.com/danielhkuo/treat-pageant/payments"
	"github.com/danielhkuo/treat-pageant/testutil"
)

var testClock = clock.Fixed(testutil.Now)

func newDispatcher() (*notify.Dispatcher, *testutil.Notifications) {
	rec := &testutil.Notifications{}
	return notify.NewDispatcher(rec, time.Second), rec
}

// signedWebhook builds a stub-provider webhook request signed with secret
func signedWebhook(t *testing.T, secret string, payload payments.StubPayload) *http.Request {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest("POST", "/webhooks/payments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Signature", payments.NewStub(secret, "").Sign(body))
	return req
}
