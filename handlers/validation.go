// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/danielhkuo/treat-pageant/content"
)

var (
	emailPattern  = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	digitsPattern = regexp.MustCompile(`^[0-9]+$`)
	unsafeName    = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)
)

// Accepted upload types, keyed by sniffed content type
var (
	imageTypes = map[string]string{
		"image/jpeg": ".jpg",
		"image/png":  ".png",
	}
	proofTypes = map[string]string{
		"image/jpeg":      ".jpg",
		"image/png":       ".png",
		"application/pdf": ".pdf",
	}
	galleryTypes = map[string]string{
		"image/jpeg": ".jpg",
		"image/png":  ".png",
		"image/webp": ".webp",
		"image/gif":  ".gif",
	}
)

// fieldErrors keeps the first failing message per field
type fieldErrors map[string]string

func (fe fieldErrors) add(field, msg string) {
	if _, exists := fe[field]; !exists {
		fe[field] = msg
	}
}

func (fe fieldErrors) required(field, value, msg string) bool {
	if strings.TrimSpace(value) == "" {
		fe.add(field, msg)
		return false
	}
	return true
}

func (fe fieldErrors) length(field, value string, min, max int, tooShort, tooLong string) {
	n := utf8.RuneCountInString(strings.TrimSpace(value))
	if min > 0 && n < min {
		fe.add(field, tooShort)
	}
	if max > 0 && n > max {
		fe.add(field, tooLong)
	}
}

func validEmail(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}

// validDate accepts complete calendar dates only (no 2024-02-30).
func validDate(s string) bool {
	t, err := time.Parse(time.DateOnly, s)
	return err == nil && t.Format(time.DateOnly) == s
}

// upload is a validated multipart file ready to be stored
type upload struct {
	header      *multipart.FileHeader
	contentType string
	ext         string
}

// checkFile validates size and sniffed type. It records a field error and
// returns false when the file is unusable.
func checkFile(fe fieldErrors, field string, fh *multipart.FileHeader, maxBytes int64, allowed map[string]string, requiredMsg, formatMsg string) (upload, bool) {
	if fh == nil {
		fe.add(field, requiredMsg)
		return upload{}, false
	}
	if fh.Size > maxBytes {
		fe.add(field, fmt.Sprintf("File too large, max %s", humanize.IBytes(uint64(maxBytes))))
		return upload{}, false
	}

	ct, err := sniffContentType(fh)
	if err != nil {
		fe.add(field, "Could not read file")
		return upload{}, false
	}
	ext, ok := allowed[ct]
	if !ok {
		fe.add(field, formatMsg)
		return upload{}, false
	}
	return upload{header: fh, contentType: ct, ext: ext}, true
}

func sniffContentType(fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}
	ct := http.DetectContentType(buf[:n])
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	return ct, nil
}

func formFile(form *multipart.Form, field string) *multipart.FileHeader {
	if form == nil || len(form.File[field]) == 0 {
		return nil
	}
	return form.File[field][0]
}

// safeFileName keeps the base name of a client-supplied file name with
// anything outside [a-zA-Z0-9._-] collapsed to underscores.
func safeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = unsafeName.ReplaceAllString(strings.TrimSpace(name), "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return "file"
	}
	return name
}

// titleCase normalizes state names ("rivers" -> "Rivers", "AKWA IBOM" -> "Akwa Ibom").
func titleCase(s string) string {
	return cases.Title(language.English).String(strings.ToLower(strings.TrimSpace(s)))
}

func clean(s string) string {
	return content.SanitizeText(s)
}
