package track

import "strings"

// PlaceholderThumbnail is served when no usable artwork exists at any size.
const PlaceholderThumbnail = "https://www.gstatic.com/youtube/media/ytm/images/pbg/liked-music-@576.png"

// googleusercontent thumbnails carry a trailing "=wNNN-hNNN-..." size
// directive that can be swapped for a larger one without re-fetching
// metadata.
const userContentSizeDirective = "=w544-h544-l90-rj"

// UpgradeThumbnail rewrites a thumbnail URL to its highest-resolution
// variant. The rewrite is a pure string transform keyed on the URL host:
// googleusercontent size directives are replaced with a large fixed size,
// ytimg default-quality filenames become maxresdefault. URLs from any
// other host pass through unchanged.
func UpgradeThumbnail(url string) string {
	if url == "" {
		return url
	}

	if strings.Contains(url, "googleusercontent.com") {
		if idx := strings.LastIndex(url, "="); idx != -1 {
			return url[:idx] + userContentSizeDirective
		}
		return url
	}

	if strings.Contains(url, "i.ytimg.com") || strings.Contains(url, "img.youtube.com") {
		for _, name := range []string{"default.jpg", "mqdefault.jpg", "hqdefault.jpg", "sddefault.jpg"} {
			if strings.HasSuffix(url, "/"+name) {
				return strings.TrimSuffix(url, name) + "maxresdefault.jpg"
			}
		}
		return url
	}

	return url
}

// DowngradeThumbnail steps a failed thumbnail URL down the resolution
// ladder: maxres -> hq -> mq -> placeholder. The second return value is
// false once the placeholder is reached, signalling callers to stop
// retrying.
func DowngradeThumbnail(url string) (string, bool) {
	switch {
	case strings.Contains(url, "maxresdefault.jpg"):
		return strings.Replace(url, "maxresdefault.jpg", "hqdefault.jpg", 1), true
	case strings.Contains(url, "hqdefault.jpg"):
		return strings.Replace(url, "hqdefault.jpg", "mqdefault.jpg", 1), true
	default:
		return PlaceholderThumbnail, false
	}
}
