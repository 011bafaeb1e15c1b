package webclient

import (
	"strings"
	"testing"
)

func TestHTMLToText_StripsMarkup(t *testing.T) {
	html := `<html><body><h1>Title</h1><p>First paragraph.</p><p>Second   paragraph.</p></body></html>`
	got := HTMLToText(html)

	if strings.Contains(got, "<") || strings.Contains(got, ">") {
		t.Errorf("tags survived: %q", got)
	}
	for _, want := range []string{"Title", "First paragraph.", "Second paragraph."} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in %q", want, got)
		}
	}
}

func TestHTMLToText_DropsScriptAndStyle(t *testing.T) {
	html := `<p>visible</p><script>var hidden = "code";</script><style>.x{color:red}</style><p>also visible</p>`
	got := HTMLToText(html)

	if strings.Contains(got, "hidden") || strings.Contains(got, "color") {
		t.Errorf("script/style content leaked: %q", got)
	}
	if !strings.Contains(got, "visible") || !strings.Contains(got, "also visible") {
		t.Errorf("visible content lost: %q", got)
	}
}

func TestHTMLToText_CaseInsensitiveScriptTags(t *testing.T) {
	html := `<P>text</P><SCRIPT>evil()</SCRIPT><p>more</p>`
	got := HTMLToText(html)
	if strings.Contains(got, "evil") {
		t.Errorf("uppercase script tag not skipped: %q", got)
	}
}

func TestHTMLToText_CollapsesWhitespace(t *testing.T) {
	got := HTMLToText("a\n\n\t  b   c")
	if got != "a b c" {
		t.Errorf("got %q, want %q", got, "a b c")
	}
}

func TestHTMLToText_PlainTextPassthrough(t *testing.T) {
	got := HTMLToText("no markup here at all")
	if got != "no markup here at all" {
		t.Errorf("plain text mangled: %q", got)
	}
}
