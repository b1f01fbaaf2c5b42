package analytics

// MetricName is the fixed set of playback metrics understood by the backend.
type MetricName string

const (
	MetricBitrate                MetricName = "BITRATE"
	MetricPlayerState            MetricName = "PLAYER_STATE"
	MetricPlayHeadTime           MetricName = "PLAY_HEAD_TIME"
	MetricBufferLength           MetricName = "BUFFER_LENGTH"
	MetricSeekStarted            MetricName = "SEEK_STARTED"
	MetricSeekEnded              MetricName = "SEEK_ENDED"
	MetricAudioLanguage          MetricName = "AUDIO_LANGUAGE"
	MetricSubtitlesLanguage      MetricName = "SUBTITLES_LANGUAGE"
	MetricClosedCaptionsLanguage MetricName = "CLOSED_CAPTIONS_LANGUAGE"
	MetricResolution             MetricName = "RESOLUTION"
	MetricRenderedFrameRate      MetricName = "RENDERED_FRAMERATE"
	MetricEncodedFrameRate       MetricName = "ENCODED_FRAMERATE"
)

// PlayerState is the value carried by MetricPlayerState.
type PlayerState string

const (
	StateStopped   PlayerState = "STOPPED"
	StatePlaying   PlayerState = "PLAYING"
	StateBuffering PlayerState = "BUFFERING"
	StatePaused    PlayerState = "PAUSED"
	StateUnknown   PlayerState = "UNKNOWN"
)

// AdType is the ad insertion technology.
type AdType string

const (
	AdClientSide AdType = "CLIENT_SIDE"
	AdServerSide AdType = "SERVER_SIDE"
)

// AdPlayer tells the backend whether ads render in the content player or a separate one.
type AdPlayer string

const (
	AdPlayerContent  AdPlayer = "CONTENT"
	AdPlayerSeparate AdPlayer = "SEPARATE"
)

// Severity grades a playback error.
type Severity string

const (
	SeverityFatal   Severity = "FATAL"
	SeverityWarning Severity = "WARNING"
)

// StreamType values for KeyStreamType.
const (
	StreamLive    = "LIVE"
	StreamVOD     = "VOD"
	StreamUnknown = "UNKNOWN"
)

// LanguageOff is reported for subtitle and caption channels that are not rendering.
const LanguageOff = "off"

// Standard content info keys.
const (
	KeyAssetName        = "assetName"
	KeyViewerID         = "viewerId"
	KeyStreamType       = "streamType"
	KeyPlayerName       = "playerName"
	KeyApplicationName  = "applicationName"
	KeyStreamURL        = "streamUrl"
	KeyDefaultResource  = "defaultResource"
	KeyDuration         = "duration"
	KeyEncodedFrameRate = "encodedFrameRate"
)

// Custom tags the integration itself contributes.
const (
	TagIntegrationVersion = "integrationVersion"
	TagPlayerType         = "playerType"
)

// Ad content info keys.
const (
	KeyAdID         = "ad.id"
	KeyAdSystem     = "ad.system"
	KeyAdPosition   = "ad.position"
	KeyAdIsSlate    = "ad.isSlate"
	KeyAdStitcher   = "ad.stitcher"
	KeyAdTechnology = "ad.technology"
	KeyAdMediaURL   = "ad.mediaUrl"
)

// Ad technology labels for KeyAdTechnology.
const (
	TechnologyClientSide = "Client Side"
	TechnologyServerSide = "Server Side"
)
