package views

import (
	"log"
	"strings"

	"github.com/skip2/go-qrcode"
)

// ShareRenderer renders the shareable link popup
type ShareRenderer struct {
	styles *Styles
}

// NewShareRenderer creates a new share renderer
func NewShareRenderer(styles *Styles) *ShareRenderer {
	return &ShareRenderer{styles: styles}
}

// Render shows the link and, when it fits, a QR code for it
func (sr *ShareRenderer) Render(link string) string {
	var b strings.Builder
	b.WriteString(sr.styles.Confirm.Render("Share these results"))
	b.WriteString("\n\n")
	b.WriteString(link)

	if qr := QRCode(link); qr != "" {
		b.WriteString("\n\n")
		b.WriteString(qr)
	}

	b.WriteString("\n")
	b.WriteString(sr.styles.Help.Render("press any key to close"))
	return b.String()
}

// QRCode renders link as a compact terminal QR code
func QRCode(link string) string {
	code, err := qrcode.New(link, qrcode.Low)
	if err != nil {
		log.Printf("failed to build QR code: %v", err)
		return ""
	}
	return strings.TrimRight(code.ToSmallString(false), "\n")
}
