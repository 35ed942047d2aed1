package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/beevik/etree"
)

// Canonicalize serializes an element deterministically: attributes sorted by
// key, whitespace-only text dropped, remaining text kept verbatim. Two
// semantically equal trees always canonicalize to identical bytes, which is
// what makes fingerprint comparison across runs sound.
func Canonicalize(el *etree.Element) []byte {
	var b strings.Builder
	writeCanonical(&b, el)
	return []byte(b.String())
}

// Fingerprint returns the hex sha256 of the canonical serialization. The hash
// guards against accidental collision between unrelated cards, not against
// tampering.
func Fingerprint(el *etree.Element) string {
	sum := sha256.Sum256(Canonicalize(el))
	return hex.EncodeToString(sum[:])
}

func writeCanonical(b *strings.Builder, el *etree.Element) {
	b.WriteByte('<')
	b.WriteString(el.Tag)

	attrs := make([]etree.Attr, len(el.Attr))
	copy(attrs, el.Attr)
	sort.Slice(attrs, func(i, j int) bool {
		if attrs[i].Space != attrs[j].Space {
			return attrs[i].Space < attrs[j].Space
		}
		return attrs[i].Key < attrs[j].Key
	})
	for _, attr := range attrs {
		b.WriteByte(' ')
		if attr.Space != "" {
			b.WriteString(attr.Space)
			b.WriteByte(':')
		}
		b.WriteString(attr.Key)
		b.WriteString(`="`)
		b.WriteString(escapeXML(attr.Value))
		b.WriteByte('"')
	}
	b.WriteByte('>')

	for _, token := range el.Child {
		switch t := token.(type) {
		case *etree.Element:
			writeCanonical(b, t)
		case *etree.CharData:
			if strings.TrimSpace(t.Data) == "" {
				continue
			}
			b.WriteString(escapeXML(t.Data))
		}
	}

	b.WriteString("</")
	b.WriteString(el.Tag)
	b.WriteByte('>')
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}
