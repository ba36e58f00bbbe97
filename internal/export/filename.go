package export

import (
	"regexp"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// FileName derives the download filename from a document title: whitespace
// runs become hyphens and ".html" is appended. Leading and trailing
// whitespace is dropped first so names never start or end with a hyphen;
// a blank title gives "email.html".
func FileName(title string) string {
	name := whitespaceRun.ReplaceAllString(strings.TrimSpace(title), "-")
	if name == "" {
		return "email.html"
	}
	return name + ".html"
}
