// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package content renders the site's static pages from embedded Markdown and
// builds the sitemap and robots.txt. All HTML leaving this package has been
// through bluemonday.
package content
