package service

import (
	"mime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDisposition(t *testing.T) {
	tests := []struct {
		mime  string
		force bool
		want  Disposition
	}{
		{mime: "image/png", want: DispositionInline},
		{mime: "image/jpeg", want: DispositionInline},
		{mime: "IMAGE/GIF", want: DispositionInline},
		{mime: "application/pdf", want: DispositionInline},
		{mime: "text/plain; charset=utf-8", want: DispositionInline},
		{mime: "text/markdown", want: DispositionInline},
		{mime: "text/csv", want: DispositionAttachment},
		{mime: "text/html", want: DispositionAttachment},
		{mime: "image/svg+xml", want: DispositionAttachment},
		{mime: "application/zip", want: DispositionAttachment},
		{mime: "", want: DispositionAttachment},
		{mime: "image/png", force: true, want: DispositionAttachment},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ResolveDisposition(tt.mime, tt.force), "%s force=%v", tt.mime, tt.force)
	}
}

func TestContentDisposition(t *testing.T) {
	assert.Equal(t, "inline", ContentDisposition(DispositionInline, "plot.png"))
	assert.Equal(t, `attachment; filename="report.csv"`, ContentDisposition(DispositionAttachment, "report.csv"))
	assert.Equal(t, `attachment; filename="say \"hi\".txt"`, ContentDisposition(DispositionAttachment, `say "hi".txt`))
	assert.Equal(t, `attachment; filename="r_sum_.pdf"; filename*=UTF-8''r%C3%A9sum%C3%A9.pdf`, ContentDisposition(DispositionAttachment, "résumé.pdf"))
	assert.Equal(t, "attachment", ContentDisposition(DispositionAttachment, ""))
}

func TestContentDisposition_Parses(t *testing.T) {
	names := []string{
		"report.csv",
		`say "hi".txt`,
		"a;b=c.txt",
		"é;x=1,y.csv",
		"naïve a@b:c=d?.txt",
		"数据 (final).xlsx",
	}
	for _, name := range names {
		header := ContentDisposition(DispositionAttachment, name)
		disposition, params, err := mime.ParseMediaType(header)
		require.NoError(t, err, header)
		assert.Equal(t, "attachment", disposition)
		assert.Equal(t, name, params["filename"], header)
	}
}

func TestExtValueEscape(t *testing.T) {
	assert.Equal(t, "%C3%A9%3Bx%3D1%2Cy.csv", extValueEscape("é;x=1,y.csv"))
	assert.Equal(t, "a%40b%3Ac%20d", extValueEscape("a@b:c d"))
	assert.Equal(t, "keep!#$&+-.^_`|~", extValueEscape("keep!#$&+-.^_`|~"))
}

func TestMarkdownLink(t *testing.T) {
	assert.Equal(t, "[plot.png](<https://x/y?a=1&b=2>)", MarkdownLink("plot.png", "https://x/y?a=1&b=2"))
	assert.Equal(t, `[a\]b\\c](<u>)`, MarkdownLink(`a]b\c`, "u"))
}
