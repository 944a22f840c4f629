// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package clock provides the time source behind the voting countdown.

WorldTime periodically asks a public time API for the current UTC time and
keeps the difference to the local clock. A 429 response keeps the last known
offset; any other failure falls back to the system clock until the next sync.

NewCountdown computes the remaining time to the configured voting close, or
to the next midnight in the voting timezone when no close is configured.
*/
package clock
