package catalog

import "github.com/chorusfm/chorus-backend/internal/domain/track"

// fallbackTracks is served when every metadata source fails, so the home
// surface never renders completely blank. Evergreen picks that are very
// unlikely to disappear upstream.
var fallbackTracks = []track.Track{
	{ID: "dQw4w9WgXcQ", Title: "Never Gonna Give You Up", Artist: "Rick Astley", Thumbnail: "https://i.ytimg.com/vi/dQw4w9WgXcQ/maxresdefault.jpg", Duration: 213},
	{ID: "kJQP7kiw5Fk", Title: "Despacito", Artist: "Luis Fonsi", Thumbnail: "https://i.ytimg.com/vi/kJQP7kiw5Fk/maxresdefault.jpg", Duration: 282},
	{ID: "9bZkp7q19f0", Title: "Gangnam Style", Artist: "PSY", Thumbnail: "https://i.ytimg.com/vi/9bZkp7q19f0/maxresdefault.jpg", Duration: 253},
	{ID: "JGwWNGJdvx8", Title: "Shape of You", Artist: "Ed Sheeran", Thumbnail: "https://i.ytimg.com/vi/JGwWNGJdvx8/maxresdefault.jpg", Duration: 263},
	{ID: "RgKAFK5djSk", Title: "See You Again", Artist: "Wiz Khalifa", Thumbnail: "https://i.ytimg.com/vi/RgKAFK5djSk/maxresdefault.jpg", Duration: 237},
	{ID: "OPf0YbXqDm0", Title: "Uptown Funk", Artist: "Mark Ronson", Thumbnail: "https://i.ytimg.com/vi/OPf0YbXqDm0/maxresdefault.jpg", Duration: 270},
	{ID: "CevxZvSJLk8", Title: "Roar", Artist: "Katy Perry", Thumbnail: "https://i.ytimg.com/vi/CevxZvSJLk8/maxresdefault.jpg", Duration: 269},
	{ID: "hT_nvWreIhg", Title: "Counting Stars", Artist: "OneRepublic", Thumbnail: "https://i.ytimg.com/vi/hT_nvWreIhg/maxresdefault.jpg", Duration: 257},
}

// FallbackTracks returns a copy of the built-in fallback set.
func FallbackTracks() []track.Track {
	out := make([]track.Track, len(fallbackTracks))
	copy(out, fallbackTracks)
	return out
}
