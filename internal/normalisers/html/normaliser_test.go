package html

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
)

const accommodationPage = `<!DOCTYPE html>
<html>
<head><title>Accommodation | NTU</title><style>body { color: red; }</style></head>
<body>
<nav><a href="/">Home</a> <a href="/life">Life at NTU</a></nav>
<article>
<h1>Graduate Hall Accommodation</h1>
<p>Graduate Hall 1 offers single rooms at S&amp;D 700 per month.</p>
<p>Twin rooms are available at a lower rate for full-time graduate students.</p>
<p>Applications open two months before the start of each semester.</p>
</article>
<script>var tracking = "should not appear";</script>
<footer>Copyright NTU</footer>
</body>
</html>`

func webPage(content string) *domain.RawDocument {
	return &domain.RawDocument{
		Origin:   domain.Origin{Kind: domain.SourceKindURL, Identifier: "https://www.ntu.edu.sg/life-at-ntu/accommodation"},
		URI:      "https://www.ntu.edu.sg/life-at-ntu/accommodation",
		MIMEType: "text/html; charset=utf-8",
		Content:  []byte(content),
		Metadata: map[string]string{domain.MetaURL: "https://www.ntu.edu.sg/life-at-ntu/accommodation"},
	}
}

func TestNormaliser_Metadata(t *testing.T) {
	n := New()
	assert.Equal(t, 50, n.Priority())
	assert.Contains(t, n.SupportedMIMETypes(), "text/html")
	assert.Contains(t, n.SupportedMIMETypes(), "application/xhtml+xml")
}

func TestNormalise_Readability(t *testing.T) {
	docs, err := New().Normalise(context.Background(), webPage(accommodationPage))
	require.NoError(t, err)
	require.Len(t, docs, 1)

	doc := docs[0]
	assert.Contains(t, doc.Text, "Graduate Hall 1 offers single rooms")
	assert.NotContains(t, doc.Text, "should not appear")
	assert.NotContains(t, doc.Text, "color: red")
	assert.NotEmpty(t, doc.Title)
	assert.Equal(t, "https://www.ntu.edu.sg/life-at-ntu/accommodation", doc.Metadata[domain.MetaURL])
	assert.Equal(t, "html", doc.Metadata["format"])
}

func TestNormalise_TagStripper(t *testing.T) {
	docs, err := New(WithReadability(false)).Normalise(context.Background(), webPage(accommodationPage))
	require.NoError(t, err)
	require.Len(t, docs, 1)

	doc := docs[0]
	assert.Equal(t, "Accommodation | NTU", doc.Title)
	assert.Equal(t, "Graduate Hall Accommodation\n"+
		"Graduate Hall 1 offers single rooms at S&D 700 per month.\n"+
		"Twin rooms are available at a lower rate for full-time graduate students.\n"+
		"Applications open two months before the start of each semester.", doc.Text)
}

func TestNormalise_EmptyPage(t *testing.T) {
	_, err := New(WithReadability(false)).Normalise(context.Background(),
		webPage("<html><head><title>x</title></head><body><script>1</script></body></html>"))
	assert.ErrorIs(t, err, domain.ErrEmpty)
}

func TestNormalise_NilDocument(t *testing.T) {
	_, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"paragraphs", "<p>one</p><p>two</p>", "one\ntwo"},
		{"entities", "<div>fees &lt; $500</div>", "fees < $500"},
		{"comments", "<!-- hidden --><span>shown</span>", "shown"},
		{"line breaks", "a<br/>b<br>c", "a\nb\nc"},
		{"whitespace", "<p>  many \t spaces  </p>", "many spaces"},
		{"aside", "<aside>related</aside><p>main</p>", "main"},
		{"nested noise", "<header><nav>Menu</nav><div>BANNER</div></header><p>main</p>", "main"},
		{"header after head", "<head><title>t</title></head><header>top</header><p>body</p>", "body"},
		{"attributes", `<script type="text/javascript">var x = "</p>";</script><p>kept</p>`, "kept"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripHTML(tt.input))
		})
	}
}

func TestExtractHTMLTitle(t *testing.T) {
	assert.Equal(t, "A &B", extractHTMLTitle("<title> A &amp;B </title>", "page.html"))
	assert.Equal(t, "hall guide", extractHTMLTitle("<p>none</p>", "/tmp/hall_guide.html"))
}
