// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package notify alerts the organizers about new registrations and contact
// messages, through a Telegram chat when TELEGRAM_BOT_TOKEN and
// TELEGRAM_CHAT_ID are set and through the log otherwise. Dispatcher keeps
// delivery off the request path.
package notify
