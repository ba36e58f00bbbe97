// Package export serializes an email document to a self-contained HTML
// document built from nested tables with inline styles, the layout legacy
// email clients render reliably.
package export

import (
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/starford/mailcraft/internal/models"
	"github.com/starford/mailcraft/internal/style"
)

// Mobile and desktop preview widths in pixels.
const (
	DesktopWidth = 600
	MobileWidth  = 320
)

const head = `<!DOCTYPE html>
<html lang="pt-BR">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>`

const reset = `</title>
  <style>
    body { margin: 0; padding: 0; font-family: Arial, sans-serif; }
    table { border-collapse: collapse; width: 100%; }
    td { padding: 0; }
    img { border: 0; display: block; }
  </style>
</head>
<body>
  <table role="presentation" style="width:100%;border-collapse:collapse;border:0;border-spacing:0;">
    <tr>
      <td align="center" style="padding:0;">
        <table role="presentation" style="width:600px;border-collapse:collapse;border:1px solid #cccccc;border-spacing:0;text-align:left;">
`

const tail = `        </table>
      </td>
    </tr>
  </table>
</body>
</html>
`

var socialLabels = map[string]string{
	"instagram": "Instagram",
	"facebook":  "Facebook",
	"linkedin":  "LinkedIn",
	"twitter":   "Twitter",
	"youtube":   "YouTube",
}

// Renderer produces HTML for documents. The zero value is ready to use.
type Renderer struct {
	// Now supplies the year for the default copyright line. Defaults to time.Now.
	Now func() time.Time
}

func (r Renderer) year() int {
	if r.Now != nil {
		return r.Now().Year()
	}
	return time.Now().Year()
}

// Document returns the full HTML export of doc. Output depends only on doc
// and, when a footer has no copyrightText, on the current year.
func (r Renderer) Document(doc models.Document) string {
	var b strings.Builder
	b.WriteString(head)
	b.WriteString(html.EscapeString(doc.Title))
	b.WriteString(reset)
	r.rows(&b, doc.Components)
	b.WriteString(tail)
	return b.String()
}

// Preview wraps the component rows in a container as wide as the chosen
// device, for the on-screen preview.
func (r Renderer) Preview(doc models.Document, mobile bool) string {
	width := DesktopWidth
	if mobile {
		width = MobileWidth
	}
	var b strings.Builder
	b.WriteString(`<div class="email-preview" style="width:`)
	b.WriteString(strconv.Itoa(width))
	b.WriteString(`px;max-width:100%;margin:0 auto;">` + "\n")
	b.WriteString(`<table role="presentation" style="width:100%;border-collapse:collapse;border:1px solid #cccccc;border-spacing:0;text-align:left;">` + "\n")
	r.rows(&b, doc.Components)
	b.WriteString("</table>\n</div>\n")
	return b.String()
}

func (r Renderer) rows(b *strings.Builder, components []models.Component) {
	for _, c := range components {
		b.WriteString("          <tr>\n")
		r.cell(b, c)
		b.WriteString("          </tr>\n")
	}
}

func (r Renderer) cell(b *strings.Builder, c models.Component) {
	p := c.Props
	if p == nil {
		p = models.Props{}
	}
	res := style.Resolve(c)

	b.WriteString("            <td")
	if res.ID != "" {
		attr(b, "id", res.ID)
	}
	if res.Classes != "" {
		attr(b, "class", res.Classes)
	}
	attr(b, "style", res.Style.String())
	b.WriteString(">")

	switch c.Type {
	case models.TypeHeader:
		header(b, p)
	case models.TypeText:
		// content is trusted HTML authored in the editor.
		b.WriteString(p.StringOr("content", style.DefaultTextContent))
	case models.TypeImage:
		image(b, p)
	case models.TypeButton:
		button(b, p)
	case models.TypeDivider:
		b.WriteString(`<hr style="border:none;border-top:`)
		b.WriteString(esc(style.Length(p, "thickness", style.DefaultDividerThickness) + " " +
			p.StringOr("style", style.DefaultDividerStyle) + " " +
			p.StringOr("color", style.DefaultDividerColor)))
		b.WriteString(`;margin:0;">`)
	case models.TypeSpacer:
	case models.TypeFooter:
		r.footer(b, p)
	case models.TypeColumns:
		r.columns(b, c, p)
	}
	b.WriteString("</td>\n")
}

func header(b *strings.Builder, p models.Props) {
	b.WriteString(`<img src="`)
	b.WriteString(esc(p.StringOr("logo", style.DefaultLogoURL)))
	b.WriteString(`" alt="`)
	b.WriteString(esc(p.StringOr("companyName", style.DefaultLogoAlt)))
	b.WriteString(`" width="200" style="height:auto;display:block;margin:0 auto;">`)
	b.WriteString(`<h1 style="font-size:24px;margin:10px 0 0 0;color:#333333;">`)
	b.WriteString(esc(p.StringOr("companyName", style.DefaultCompanyName)))
	b.WriteString(`</h1>`)
	b.WriteString(`<p style="margin:5px 0 0 0;color:#555555;font-size:16px;">`)
	b.WriteString(esc(p.StringOr("tagline", style.DefaultTagline)))
	b.WriteString(`</p>`)
}

func image(b *strings.Builder, p models.Props) {
	img := `<img src="` + esc(p.StringOr("src", style.DefaultImageSrc)) +
		`" alt="` + esc(p.StringOr("alt", style.DefaultImageAlt)) +
		`" width="` + strconv.FormatFloat(style.ImageWidth(p), 'f', -1, 64) + `%"` +
		` style="height:auto;display:block;margin:0 auto;">`
	if link, ok := p.String("link"); ok {
		img = `<a href="` + esc(link) + `">` + img + `</a>`
	}
	b.WriteString(img)
}

func button(b *strings.Builder, p models.Props) {
	b.WriteString(`<table role="presentation" style="border-collapse:collapse;border:0;border-spacing:0;margin:0 auto;"><tr>`)
	b.WriteString(`<td style="border-radius:`)
	b.WriteString(esc(style.ButtonRadius(p)))
	b.WriteString(`;background-color:`)
	b.WriteString(esc(p.StringOr("buttonColor", style.DefaultButtonColor)))
	b.WriteString(`;text-align:center;padding:0 30px;">`)
	b.WriteString(`<a href="`)
	b.WriteString(esc(p.StringOr("url", style.DefaultButtonURL)))
	b.WriteString(`" style="color:`)
	b.WriteString(esc(p.StringOr("textColor", style.DefaultButtonTextColor)))
	b.WriteString(`;text-decoration:none;font-weight:bold;display:inline-block;padding:12px 0;font-size:16px;">`)
	b.WriteString(esc(p.StringOr("text", style.DefaultButtonText)))
	b.WriteString(`</a></td></tr></table>`)
}

func (r Renderer) footer(b *strings.Builder, p models.Props) {
	links := p.SocialLinks()
	if len(links) > 0 {
		b.WriteString(`<div style="margin-bottom:10px;">`)
		for _, l := range links {
			b.WriteString(`<a href="`)
			b.WriteString(esc(l.URL))
			b.WriteString(`" style="text-decoration:none;margin:0 10px;color:` + style.DefaultSocialLinkColor + `;">`)
			b.WriteString(esc(SocialLabel(l.Platform)))
			b.WriteString(`</a>`)
		}
		b.WriteString(`</div>`)
	}
	b.WriteString(`<p style="margin:5px 0;">`)
	b.WriteString(esc(p.StringOr("companyAddress", style.DefaultCompanyAddress)))
	b.WriteString(`</p><p style="margin:5px 0;">`)
	copyright, ok := p.String("copyrightText")
	if !ok {
		copyright = style.DefaultCopyright(r.year())
	}
	b.WriteString(esc(copyright))
	b.WriteString(`</p>`)
}

func (r Renderer) columns(b *strings.Builder, c models.Component, p models.Props) {
	b.WriteString(`<table role="presentation" style="width:100%;border-collapse:collapse;border:0;border-spacing:0;"><tr>`)
	if len(c.Children) > 0 {
		width := strconv.Itoa(100/len(c.Children)) + "%"
		for _, child := range c.Children {
			b.WriteString(`<td valign="top" style="width:` + width + `;">`)
			b.WriteString(`<table role="presentation" style="width:100%;border-collapse:collapse;border:0;border-spacing:0;"><tr>`)
			r.cell(b, child)
			b.WriteString(`</tr></table></td>`)
		}
	} else {
		n := style.ColumnCount(p)
		width := strconv.Itoa(100/n) + "%"
		for range n {
			b.WriteString(`<td valign="top" style="width:` + width + `;"></td>`)
		}
	}
	b.WriteString(`</tr></table>`)
}

// SocialLabel returns the display text for a social platform identifier.
// Unknown platforms are shown as given.
func SocialLabel(platform string) string {
	if label, ok := socialLabels[strings.ToLower(platform)]; ok {
		return label
	}
	return platform
}

func attr(b *strings.Builder, name, value string) {
	b.WriteByte(' ')
	b.WriteString(name)
	b.WriteString(`="`)
	b.WriteString(esc(value))
	b.WriteByte('"')
}

func esc(s string) string {
	return html.EscapeString(s)
}
