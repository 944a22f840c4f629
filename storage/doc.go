// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package storage keeps uploaded files behind the ObjectStore interface.
//
// Local writes under STORAGE_DIR and is served by the API at /files/.
// GCS writes to a Google Cloud Storage bucket and returns
// storage.googleapis.com URLs.
package storage
