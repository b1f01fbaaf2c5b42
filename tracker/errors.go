package tracker

import "errors"

var (
	ErrPlayerNotAttached = errors.New("player is not attached, set an asset name override or attach a player")
	ErrNoSourceLoaded    = errors.New("player has no source loaded, set an asset name override or load a source")
	ErrMissingAssetName  = errors.New("asset name is missing")
	ErrReleased          = errors.New("tracker is released")
)
