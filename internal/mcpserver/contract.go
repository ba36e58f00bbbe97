package mcpserver

// ComponentCatalogURI is the resource URI of ComponentCatalog.
const ComponentCatalogURI = "mailcraft://component-catalog"

// ComponentCatalog documents the component types and the props each one
// understands. LLM clients should read it before adding or updating
// components.
const ComponentCatalog = `# Mailcraft Component Catalog

An email is an ordered list of components. The document always starts with a
single ` + "`header`" + ` and ends with a single ` + "`footer`" + `; those two cannot be removed,
duplicated or moved. New components are inserted just before the footer.

Props are a free-form JSON object. Unknown keys are kept but ignored by the
exporter. Numbers may be sent as numbers or numeric strings; lengths without a
unit are read as pixels.

## Types

| type    | props |
|---------|-------|
| header  | logo, companyName, tagline, alignment, textColor |
| text    | content (HTML allowed), fontSize, textColor, alignment |
| image   | src, alt, width (percent, 0-100), alignment, link |
| button  | text, url, buttonColor, textColor, borderRadius, alignment |
| divider | color, thickness, style (solid, dashed, dotted) |
| spacer  | height |
| columns | count (1-6); children rendered one per cell |
| footer  | companyAddress, copyrightText, socialLinks [{platform, url, icon}], textColor |

## Styling props (every type)

- ` + "`backgroundColor`" + `, ` + "`padding`" + ` (CSS shorthand)
- ` + "`paddingTop`" + `, ` + "`paddingRight`" + `, ` + "`paddingBottom`" + `, ` + "`paddingLeft`" + ` (missing sides default to 20px)
- ` + "`hasBorder`" + ` with ` + "`borderWidth`" + `, ` + "`borderStyle`" + `, ` + "`borderColor`" + `, ` + "`borderRadius`" + `
- ` + "`hasShadow`" + ` with ` + "`shadowIntensity`" + ` and ` + "`shadowColor`" + `
- ` + "`customStyle`" + `: raw CSS declarations, applied last and overriding everything
- ` + "`customClasses`" + `, ` + "`customId`" + `: copied onto the row cell

## Images

Upload images with the ` + "`upload_image`" + ` tool and put the returned ` + "`url`" + ` into an
image component's ` + "`src`" + ` or the header's ` + "`logo`" + `. Supported formats: png, jpg,
jpeg, gif, webp, svg.

## Example

` + "```" + `json
{"type": "button", "props": {"text": "Ver ofertas", "url": "https://example.com",
 "buttonColor": "#4A6DA7", "borderRadius": 8, "alignment": "center"}}
` + "```" + `
`
