package domain

import "regexp"

// referencesHeading matches a short heading line that opens a bibliography
// section: "References", "Bibliography", "Works Cited", "Literature Cited",
// optionally preceded by markdown heading markers or wrapped in bold markers.
var referencesHeading = regexp.MustCompile(
	`(?im)^(?:#{1,3}\s+|\*\*)?(?:References|Bibliography|Works Cited|Literature Cited)(?:\*\*)?\s*$`,
)

// SplitReferences truncates the body at the first references heading and
// returns (body, references). The references tail is retained as document
// metadata and never chunked. Text without such a heading is returned whole.
func SplitReferences(text string) (body, references string) {
	loc := referencesHeading.FindStringIndex(text)
	if loc == nil {
		return text, ""
	}
	body = text[:loc[0]]
	for len(body) > 0 && (body[len(body)-1] == '\n' || body[len(body)-1] == '\r' ||
		body[len(body)-1] == ' ' || body[len(body)-1] == '\t') {
		body = body[:len(body)-1]
	}
	return body, text[loc[0]:]
}
