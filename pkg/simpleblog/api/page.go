package api

import (
	"html/template"
	"io"
	"time"

	"github.com/tendant/simple-blog/pkg/simpleblog"
)

// articleTemplate is the standalone article page. The content body is
// produced by RenderBlocks, which escapes all user text itself, so it is
// injected as trusted HTML.
const articleTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8" />
<meta name="viewport" content="width=device-width, initial-scale=1" />
<title>{{.Title}}</title>
</head>
<body>
<article>
<header>
<h1>{{.Title}}</h1>
{{if .SubTitle}}<h2>{{.SubTitle}}</h2>{{end}}
{{if .PublishedAt}}<time datetime="{{.PublishedAt.Format "2006-01-02"}}">{{.PublishedAt.Format "January 2, 2006"}}</time>{{end}}
{{if .CoverImage}}<img src="{{.CoverImage}}" alt="cover-image" />{{end}}
</header>
{{.Body}}
{{if .Tags}}<footer><ul>{{range .Tags}}<li>{{.}}</li>{{end}}</ul></footer>{{end}}
</article>
</body>
</html>
`

type articleData struct {
	Title       string
	SubTitle    string
	PublishedAt *time.Time
	CoverImage  *string
	Body        template.HTML
	Tags        []string
}

// PageRenderer renders published blogs as HTML pages.
type PageRenderer struct {
	tmpl *template.Template
}

// NewPageRenderer creates a page renderer from the built-in article template.
func NewPageRenderer() (*PageRenderer, error) {
	tmpl, err := template.New("article").Parse(articleTemplate)
	if err != nil {
		return nil, err
	}
	return &PageRenderer{tmpl: tmpl}, nil
}

// RenderArticle writes the article page for a blog.
func (p *PageRenderer) RenderArticle(w io.Writer, blog *simpleblog.Blog) error {
	return p.tmpl.Execute(w, articleData{
		Title:       blog.Title,
		SubTitle:    blog.SubTitle,
		PublishedAt: blog.PublishedAt,
		CoverImage:  blog.CoverImage,
		Body:        template.HTML(simpleblog.RenderBlocks(blog.Content)),
		Tags:        blog.Tags,
	})
}
