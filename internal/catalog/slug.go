// internal/catalog/slug.go
package catalog

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// NamespaceSeparator joins a parent category slug and its child's own slug.
// Slugify never emits it, so a namespaced slug splits unambiguously.
const NamespaceSeparator = "_"

// Slugify folds s to lowercase ASCII words joined by single hyphens.
// Accented letters lose their marks, other non-ASCII runes and punctuation are
// dropped, and whitespace, hyphens and underscores act as word breaks.
func Slugify(s string) string {
	var b strings.Builder
	pendingBreak := false

	for _, r := range norm.NFKD.String(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		case r >= 'A' && r <= 'Z':
			r = unicode.ToLower(r)
		case r == '-' || r == '_' || unicode.IsSpace(r):
			pendingBreak = b.Len() > 0
			continue
		default:
			continue
		}

		if pendingBreak {
			b.WriteByte('-')
			pendingBreak = false
		}
		b.WriteRune(r)
	}

	return b.String()
}

// NamespacedSlug returns the slug of title, prefixed with parentSlug and the
// namespace separator when the category has a parent.
func NamespacedSlug(parentSlug, title string) string {
	own := Slugify(title)
	if parentSlug == "" {
		return own
	}
	return parentSlug + NamespaceSeparator + own
}

// OfferSlug derives an offer slug from its title and persisted id.
func OfferSlug(title string, id uint) string {
	return Slugify(title + "-" + strconv.FormatUint(uint64(id), 10))
}

// Permalink builds "/{parent}/{sub}/{offer}.html" from the namespaced slug of
// the offer's subcategory.
func Permalink(subcategorySlug, offerSlug string) string {
	parent, sub, ok := strings.Cut(subcategorySlug, NamespaceSeparator)
	if !ok {
		return "/" + subcategorySlug + "/" + offerSlug + ".html"
	}
	return "/" + parent + "/" + sub + "/" + offerSlug + ".html"
}

// ShortDescription keeps the leading whole words of description that fit in
// maxLength characters. It stops at the first word that does not fit.
func ShortDescription(description string, maxLength int) string {
	var b strings.Builder
	length := 0

	for _, word := range strings.Fields(description) {
		wordLength := utf8.RuneCountInString(word)
		if length+wordLength > maxLength {
			break
		}
		b.WriteString(word)
		b.WriteByte(' ')
		length += wordLength + 1
	}

	return strings.TrimRight(b.String(), " ")
}
