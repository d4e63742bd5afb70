package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	ahocorasick "github.com/petar-dambovaliev/aho-corasick"
)

const maxMessageLen = 300

// decodeErrorMessage extracts a human readable message from an error answer.
// It understands {error}, {detail}, {non_field_errors}, DRF field lists and Django's
// HTML debug pages.
func decodeErrorMessage(resp *http.Response) string {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil || len(bytes.TrimSpace(raw)) == 0 {
		return http.StatusText(resp.StatusCode)
	}

	if strings.Contains(resp.Header.Get("Content-Type"), "html") {
		if msg := messageFromHTML(raw); msg != "" {
			return msg
		}
		return http.StatusText(resp.StatusCode)
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return truncate(strings.TrimSpace(string(raw)))
	}
	if msg := messageFromJSON(payload); msg != "" {
		return msg
	}
	return http.StatusText(resp.StatusCode)
}

func messageFromHTML(raw []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return ""
	}
	if v := strings.TrimSpace(doc.Find(".exception_value").First().Text()); v != "" {
		return truncate(v)
	}
	return truncate(strings.TrimSpace(doc.Find("title").First().Text()))
}

func messageFromJSON(payload map[string]any) string {
	for _, key := range []string{"error", "detail", "message"} {
		if s, ok := payload[key].(string); ok && s != "" {
			return truncate(s)
		}
	}
	if msg := firstString(payload["non_field_errors"]); msg != "" {
		return truncate(msg)
	}

	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if msg := firstString(payload[k]); msg != "" {
			parts = append(parts, fmt.Sprintf("%s: %s", k, msg))
		}
	}
	return truncate(strings.Join(parts, "; "))
}

func firstString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

func truncate(s string) string {
	if len(s) <= maxMessageLen {
		return s
	}
	cut := maxMessageLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}

// Wizard field names a conflict can be attributed to.
const (
	FieldUsername    = "username"
	FieldEmail       = "email"
	FieldPhoneNumber = "phoneNumber"
	FieldIDNumber    = "idNumber"
)

var fieldPatterns = []struct {
	pattern string
	field   string
}{
	{"phone number", FieldPhoneNumber},
	{"phone_number", FieldPhoneNumber},
	{"username", FieldUsername},
	{"email", FieldEmail},
	{"id_number", FieldIDNumber},
	{"id number", FieldIDNumber},
}

var conflictMarkers = []string{
	"unique constraint failed",
	"already exists",
	"already registered",
	"already in use",
	"duplicate key",
	"must be unique",
}

// ConflictClassifier turns the backend's free-text uniqueness failures into a structured
// field attribution. It is the only place that inspects error text.
type ConflictClassifier struct {
	fields  ahocorasick.AhoCorasick
	markers ahocorasick.AhoCorasick
}

func NewConflictClassifier() *ConflictClassifier {
	opts := ahocorasick.Opts{
		AsciiCaseInsensitive: true,
		MatchOnlyWholeWords:  false,
		MatchKind:            ahocorasick.LeftMostLongestMatch,
		DFA:                  true,
	}

	patterns := make([]string, len(fieldPatterns))
	for i, p := range fieldPatterns {
		patterns[i] = p.pattern
	}
	fb := ahocorasick.NewAhoCorasickBuilder(opts)
	mb := ahocorasick.NewAhoCorasickBuilder(opts)
	return &ConflictClassifier{
		fields:  fb.Build(patterns),
		markers: mb.Build(conflictMarkers),
	}
}

// Classify reports the conflicting field when the answer is a uniqueness conflict
// attributable to a known field.
func (c *ConflictClassifier) Classify(status int, message string) (string, bool) {
	conflict := status == http.StatusConflict || len(c.markers.FindAll(message)) > 0
	if !conflict {
		return "", false
	}
	matches := c.fields.FindAll(message)
	if len(matches) == 0 {
		return "", false
	}
	return fieldPatterns[matches[0].Pattern()].field, true
}
