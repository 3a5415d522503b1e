package models

// ArtDNA is the AI analysis of an artwork's title and story.
type ArtDNA struct {
	Tags    []string `json:"tags"`
	Palette []string `json:"palette"`
	Mood    string   `json:"mood"`
	Style   string   `json:"style"`
}

// DailyMix is a mood-driven playlist concept.
type DailyMix struct {
	PlaylistTitle     string   `json:"playlistTitle"`
	PoeticDescription string   `json:"poeticDescription"`
	Themes            []string `json:"themes"`
}

// NewsSource is a web page grounding an art news summary.
type NewsSource struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// ArtNews is a summary of current exhibitions for a location.
type ArtNews struct {
	Text    string       `json:"text"`
	Sources []NewsSource `json:"sources"`
}
