package catalog

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Hello World", "hello-world"},
		{"Muebles de Oficina", "muebles-de-oficina"},
		{"Decoración", "decoracion"},
		{"Señal Ñandú", "senal-nandu"},
		{"  leading and trailing  ", "leading-and-trailing"},
		{"rock'n'roll", "rocknroll"},
		{"snake_case_title", "snake-case-title"},
		{"multiple---hyphens", "multiple-hyphens"},
		{"Chair 2000", "chair-2000"},
		{"café-25", "cafe-25"},
		{"日本", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Slugify(tt.input))
		})
	}
}

func TestSlugifyNeverEmitsSeparator(t *testing.T) {
	for _, input := range []string{"a_b", "__x__", "Sofás_y_Sillas", "_"} {
		assert.NotContains(t, Slugify(input), NamespaceSeparator, input)
	}
}

func TestNamespacedSlug(t *testing.T) {
	assert.Equal(t, "furniture", NamespacedSlug("", "Furniture"))
	assert.Equal(t, "furniture_chairs", NamespacedSlug("furniture", "Chairs"))
	assert.Equal(t, "muebles_sillas-de-oficina", NamespacedSlug("muebles", "Sillas de Oficina"))
}

func TestOfferSlug(t *testing.T) {
	assert.Equal(t, "ergonomic-chair-42", OfferSlug("Ergonomic Chair", 42))
	assert.Equal(t, "silla-ergonomica-7", OfferSlug("Silla Ergonómica", 7))
}

func TestPermalink(t *testing.T) {
	assert.Equal(t, "/furniture/chairs/ergonomic-chair-42.html", Permalink("furniture_chairs", "ergonomic-chair-42"))
	assert.Equal(t, "/muebles/sillas-de-oficina/silla-7.html", Permalink("muebles_sillas-de-oficina", "silla-7"))
	assert.Equal(t, "/orphan/offer-1.html", Permalink("orphan", "offer-1"))
}

func TestShortDescription(t *testing.T) {
	tests := []struct {
		name        string
		description string
		max         int
		expected    string
	}{
		{"fits entirely", "a short text", 100, "a short text"},
		{"cut at word boundary", "alpha beta gamma delta", 12, "alpha beta"},
		{"word exactly fills", "alpha beta", 10, "alpha beta"},
		{"first word too long", "supercalifragilistic word", 5, ""},
		{"stops at first overflow", "aa bbbbbbbbbb c", 6, "aa"},
		{"collapses whitespace", "one   two\tthree", 9, "one two"},
		{"counts characters not bytes", "ñañaña ñoño", 11, "ñañaña ñoño"},
		{"empty", "", 10, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ShortDescription(tt.description, tt.max))
		})
	}
}

func TestShortDescriptionIsWordPrefix(t *testing.T) {
	description := "Lorem ipsum dolor sit amet consectetur adipiscing elit sed do eiusmod tempor incididunt"
	words := strings.Fields(description)

	for max := 0; max <= len(description)+5; max++ {
		short := ShortDescription(description, max)
		assert.LessOrEqual(t, utf8.RuneCountInString(short), max)

		if short == "" {
			continue
		}
		got := strings.Fields(short)
		assert.Equal(t, words[:len(got)], got)
		if len(got) < len(words) {
			// the next word would have overflowed
			assert.Greater(t, utf8.RuneCountInString(short)+1+len(words[len(got)]), max)
		}
	}
}
