package service

import (
	"strings"
)

type Disposition string

const (
	DispositionInline     Disposition = "inline"
	DispositionAttachment Disposition = "attachment"
)

// inlineTypes render safely in a browser tab. Everything else downloads.
var inlineTypes = map[string]struct{}{
	"application/pdf": {},
	"text/plain":      {},
	"text/markdown":   {},
}

// ResolveDisposition decides how a download is presented. SVG is excluded
// from the image/* rule because it can carry script.
func ResolveDisposition(mimeType string, forceAttachment bool) Disposition {
	if forceAttachment {
		return DispositionAttachment
	}
	base := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(base, ';'); i >= 0 {
		base = strings.TrimSpace(base[:i])
	}
	if strings.HasPrefix(base, "image/") && base != "image/svg+xml" {
		return DispositionInline
	}
	if _, ok := inlineTypes[base]; ok {
		return DispositionInline
	}
	return DispositionAttachment
}

var quotedEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// ContentDisposition renders the header value. Attachments carry the stored
// file name; non-ASCII names get an ASCII fallback plus an RFC 5987
// filename* parameter.
func ContentDisposition(d Disposition, fileName string) string {
	if d == DispositionInline || fileName == "" {
		return string(d)
	}

	fallback, ascii := asciiFallback(fileName)
	header := string(d) + `; filename="` + quotedEscaper.Replace(fallback) + `"`
	if !ascii {
		header += "; filename*=UTF-8''" + extValueEscape(fileName)
	}
	return header
}

func asciiFallback(name string) (string, bool) {
	ascii := true
	var b strings.Builder
	for _, r := range name {
		if r < 0x20 || r > 0x7e {
			ascii = false
			b.WriteByte('_')
			continue
		}
		b.WriteRune(r)
	}
	return b.String(), ascii
}

// extValueEscape percent-encodes every byte that is not an RFC 5987
// attr-char.
func extValueEscape(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isAttrChar(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func isAttrChar(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("!#$&+-.^_`|~", c) >= 0
}
