package style

import "fmt"

// Literal fallbacks shared by the resolver and the HTML exporter. Both must
// agree, so every default lives here and nowhere else.
const (
	DefaultPadding          = "20px"
	DefaultDividerPadding   = "10px 20px"
	DefaultBackground       = "#ffffff"
	DefaultFooterBackground = "#f5f5f5"
	DefaultTextColor        = "#333333"
	DefaultFooterTextColor  = "#555555"
	DefaultFontSize         = 16
	DefaultFooterFontSize   = "14px"

	DefaultLogoURL     = "/assets/logo.png"
	DefaultLogoAlt     = "Company Logo"
	DefaultCompanyName = "qvaestvm"
	DefaultTagline     = "tecnologia e inovação"

	DefaultTextContent = "Coloque seu texto aqui"

	DefaultImageSrc   = "https://via.placeholder.com/600x300"
	DefaultImageAlt   = "Image"
	DefaultImageWidth = 100

	DefaultButtonText      = "Clique aqui"
	DefaultButtonURL       = "#"
	DefaultButtonColor     = "#4A6DA7"
	DefaultButtonTextColor = "#ffffff"
	DefaultButtonRadius    = 4

	DefaultDividerThickness = "1px"
	DefaultDividerStyle     = "solid"
	DefaultDividerColor     = "#dddddd"

	DefaultSpacerHeight = 20

	DefaultCompanyAddress  = "Seu endereço aqui"
	DefaultSocialLinkColor = "#4A6DA7"

	DefaultColumnCount = 2

	DefaultBorderWidth     = "1px"
	DefaultBorderStyle     = "solid"
	DefaultBorderColor     = "#cccccc"
	DefaultBorderRadius    = "0px"
	DefaultShadowIntensity = 5
	DefaultShadowColor     = "rgba(0,0,0,0.2)"
)

// DefaultCopyright is the footer copyright line used when the user has not
// set copyrightText.
func DefaultCopyright(year int) string {
	return fmt.Sprintf("© %d qvaestvm. Todos os direitos reservados.", year)
}
