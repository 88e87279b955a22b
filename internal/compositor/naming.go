package compositor

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slug lowercases s, strips diacritics (e.g. "Kávovar Říp" -> "kavovar-rip")
// and joins alphanumeric runs with dashes.
func Slug(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, _ := transform.String(t, s)

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(plain) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}

// Filename builds a download name such as "acme-spring-sale-1a2b3c4d-composite.png".
func Filename(clientName, adName, versionID, suffix, ext string) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{Slug(clientName), Slug(adName)} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		parts = append(parts, "ad")
	}
	if id := Slug(versionID); id != "" {
		parts = append(parts, shortID(id))
	}
	if suffix != "" {
		parts = append(parts, suffix)
	}
	name := strings.Join(parts, "-")
	if ext != "" {
		name += "." + strings.TrimPrefix(ext, ".")
	}
	return name
}

func shortID(id string) string {
	id = strings.ReplaceAll(id, "-", "")
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
