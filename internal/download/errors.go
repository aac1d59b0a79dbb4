package download

import "errors"

// ErrYTDLPNotFound indicates no usable yt-dlp binary could be located.
var ErrYTDLPNotFound = errors.New("yt-dlp not found")

// ErrDownloadFailed indicates the audio for a URL could not be fetched.
var ErrDownloadFailed = errors.New("download failed")
