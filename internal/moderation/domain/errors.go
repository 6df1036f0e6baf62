package domain

import "errors"

var (
	// ErrVideoNotFound the video row does not exist (already deleted or never created)
	ErrVideoNotFound = errors.New("video not found")
	// ErrAssetNotFound the remote asset does not exist
	ErrAssetNotFound = errors.New("remote asset not found")
	// ErrJobInFlight another job for the same video id holds the lock
	ErrJobInFlight = errors.New("moderation job already in flight for video")
	// ErrInvalidJob the job message is missing video_id or video_url
	ErrInvalidJob = errors.New("invalid moderation job")
)
