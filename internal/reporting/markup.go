package reporting

import (
	"regexp"
	"strings"
)

var (
	reBareHeading = regexp.MustCompile(`(?m)^\s*#{1,6}\s*$`)
	reH2          = regexp.MustCompile(`(?m)^##\s+`)
	reH1          = regexp.MustCompile(`(?m)^#\s+`)
	reBold        = regexp.MustCompile(`\*\*(.*?)\*\*`)
	reItalic      = regexp.MustCompile(`\*(.*?)\*`)
	reBullet      = regexp.MustCompile(`(?m)^-\s+`)
	reBlankRuns   = regexp.MustCompile(`\n\s*\n\s*\n+`)
)

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// Markup converts the small markdown subset the model emits into the inline
// tags understood by the PDF body writer: <b>, <i> and <br/>.
func Markup(text string) string {
	if text == "" {
		return ""
	}
	text = escaper.Replace(text)
	text = reBareHeading.ReplaceAllString(text, "")
	text = reH2.ReplaceAllString(text, "")
	text = reH1.ReplaceAllString(text, "")
	text = reBold.ReplaceAllString(text, "<b>$1</b>")
	text = reItalic.ReplaceAllString(text, "<i>$1</i>")
	text = reBullet.ReplaceAllString(text, "• ")
	text = reBlankRuns.ReplaceAllString(text, "\n\n")
	return strings.ReplaceAll(text, "\n", "<br/>")
}
