package web

import (
	"fmt"
	"regexp"
)

var mediaIDPattern = regexp.MustCompile(`(?:v=|/)([0-9A-Za-z_-]{11})`)

// MediaID extracts the 11 character video token that follows "v=" or a "/" in url.
func MediaID(url string) (string, bool) {
	m := mediaIDPattern.FindStringSubmatch(url)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Thumbnail returns the preview image URL for a media id.
func Thumbnail(id string) string {
	return fmt.Sprintf("https://img.youtube.com/vi/%s/0.jpg", id)
}
