package htmlsanitize

import (
	"strings"
	"testing"
)

func TestRich_RemovesScripts(t *testing.T) {
	in := `<p>Kia ora</p><script>alert("x")</script>`
	out := Rich(in)

	if strings.Contains(out, "script") || strings.Contains(out, "alert") {
		t.Errorf("script survived sanitization: %q", out)
	}
	if !strings.Contains(out, "<p>Kia ora</p>") {
		t.Errorf("allowed markup was stripped: %q", out)
	}
}

func TestRich_KeepsBasicFormatting(t *testing.T) {
	in := `<h3>Hui</h3><ul><li><strong>Saturday</strong></li></ul>`
	out := Rich(in)

	for _, want := range []string{"<h3>", "<ul>", "<li>", "<strong>"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in output, got %q", want, out)
		}
	}
}

func TestRich_RemovesEventHandlers(t *testing.T) {
	in := `<p onclick="steal()">text</p>`
	out := Rich(in)

	if strings.Contains(out, "onclick") {
		t.Errorf("event handler survived: %q", out)
	}
}

func TestRich_LinksGetNoFollow(t *testing.T) {
	in := `<a href="https://example.com">link</a>`
	out := Rich(in)

	if !strings.Contains(out, `rel="nofollow"`) {
		t.Errorf("expected nofollow on links: %q", out)
	}
}

func TestRich_RejectsJavascriptURLs(t *testing.T) {
	in := `<a href="javascript:alert(1)">link</a>`
	out := Rich(in)

	if strings.Contains(out, "javascript") {
		t.Errorf("javascript URL survived: %q", out)
	}
}

func TestPlain_StripsEverything(t *testing.T) {
	in := `<p><b>Nau mai</b></p>`
	out := Plain(in)

	if out != "Nau mai" {
		t.Errorf("Plain = %q, want %q", out, "Nau mai")
	}
}
