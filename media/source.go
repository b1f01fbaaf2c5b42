package media

// Source is the media currently loaded into a player.
type Source struct {
	Title string
	URL   string
	// ViewerID is an optional viewer identity configured with the source.
	ViewerID string
	// CustomData carries free-form integration tags attached to the source.
	CustomData map[string]string
}

// VideoQuality is the rendition currently being played.
type VideoQuality struct {
	// Bitrate in bits per second.
	Bitrate   int
	Width     int
	Height    int
	FrameRate float64
}

// Kbps converts the bitrate for analytics reporting.
func (q VideoQuality) Kbps() int {
	return q.Bitrate / 1000
}

// AudioTrack is the active audio rendition.
type AudioTrack struct {
	ID       string
	Language string
	Label    string
}

// SubtitleKind distinguishes subtitle tracks from closed captions.
type SubtitleKind int

const (
	KindSubtitles SubtitleKind = iota
	KindCaptions
)

// SubtitleTrack is a text track the player can render.
type SubtitleTrack struct {
	ID       string
	Language string
	Label    string
	Kind     SubtitleKind
	Enabled  bool
}

// AdPosition is the placement of an ad relative to the content.
type AdPosition string

const (
	AdPreroll  AdPosition = "PREROLL"
	AdMidroll  AdPosition = "MIDROLL"
	AdPostroll AdPosition = "POSTROLL"
)

// AdInfo describes a client-side ad as reported by the player.
type AdInfo struct {
	ID       string
	Title    string
	System   string
	Position AdPosition
	// Duration in seconds.
	Duration float64
	MediaURL string
	Message  string
}
