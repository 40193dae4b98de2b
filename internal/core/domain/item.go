package domain

import (
	"regexp"
	"strings"
)

// Item represents a piece of content that can be embedded and scored.
// It carries the minimal text fields needed to build the embedding input
// and the fields needed for filtering and display.
type Item struct {
	// ID is the opaque identifier, unique within a pool.
	ID string

	// Title is the human-readable title. It is the strongest topical
	// signal and is weighted double in the embedding text.
	Title string

	// Description is the long-form description, if any.
	Description string

	// Tags are topical labels attached by the upstream source.
	Tags []string

	// ChannelTitle names the content creator, for context.
	ChannelTitle string

	// Available is false for private or removed items; unavailable
	// items are excluded during ranking.
	Available bool

	// DedupKey groups near-identical items. Defaults to ID when empty.
	DedupKey string

	// Embedding is the cached vector for this item, nil until resolved.
	Embedding Embedding
}

// DeduplicationKey returns the key used for duplicate elimination.
func (it *Item) DeduplicationKey() string {
	if it.DedupKey != "" {
		return it.DedupKey
	}
	return it.ID
}

// descriptionLimit caps how much of the description feeds the embedding.
// Long descriptions trail off into links and boilerplate; the opening
// portion carries most of the topical signal.
const descriptionLimit = 500

var (
	urlPattern        = regexp.MustCompile(`https?://\S+|www\.\S+`)
	emailPattern      = regexp.MustCompile(`\S+@\S+`)
	whitespacePattern = regexp.MustCompile(`\s+`)
	specialPattern    = regexp.MustCompile(`[^\w\s.,!?-]`)
)

// CleanText strips URLs, e-mail addresses and special characters from raw
// metadata text and collapses whitespace, keeping basic punctuation.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	text = urlPattern.ReplaceAllString(text, "")
	text = emailPattern.ReplaceAllString(text, "")
	text = specialPattern.ReplaceAllString(text, "")
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// EmbeddingText combines the item's text fields into the string fed to the
// embedding provider. The title appears twice to weight it above the other
// fields, followed by tags, channel title and a truncated description.
func (it *Item) EmbeddingText() string {
	var parts []string

	if title := CleanText(it.Title); title != "" {
		parts = append(parts, title, title)
	}

	if len(it.Tags) > 0 {
		if tags := CleanText(strings.Join(it.Tags, " ")); tags != "" {
			parts = append(parts, tags)
		}
	}

	if channel := CleanText(it.ChannelTitle); channel != "" {
		parts = append(parts, channel)
	}

	if it.Description != "" {
		desc := it.Description
		if runes := []rune(desc); len(runes) > descriptionLimit {
			desc = string(runes[:descriptionLimit])
		}
		if desc = CleanText(desc); desc != "" {
			parts = append(parts, desc)
		}
	}

	return strings.Join(parts, " ")
}
