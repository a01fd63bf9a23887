package trailer

import "regexp"

const embedBaseURL = "https://www.youtube.com/embed/"

var videoIDRe = regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/)([^&\n?#]+)`)

// VideoID extracts the video identifier from a watch or short link.
func VideoID(raw string) (string, bool) {
	m := videoIDRe.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// EmbedURL converts a stored trailer link into an embeddable player URL.
// Links without an extractable identifier are returned unchanged.
func EmbedURL(raw string) string {
	id, ok := VideoID(raw)
	if !ok {
		return raw
	}
	return embedBaseURL + id
}
