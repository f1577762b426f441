// Package adapter lets an AudioPlayer, which only understands mp3 and wav,
// play vlc and mp4 files through an AdvancedMediaPlayer it was never
// written for.
package adapter

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var ErrUnsupportedFormat = errors.New("unsupported format")

const (
	FormatMP3 = "mp3"
	FormatWAV = "wav"
	FormatVLC = "vlc"
	FormatMP4 = "mp4"
)

type MediaPlayer interface {
	Play(format, filename string) (string, error)
}

// AdvancedMediaPlayer is the incompatible interface being adapted.
type AdvancedMediaPlayer interface {
	PlayVLC(filename string) string
	PlayMP4(filename string) string
}

type VLCPlayer struct{}

func (VLCPlayer) PlayVLC(filename string) string { return "playing VLC file: " + filename }
func (VLCPlayer) PlayMP4(filename string) string { return "playing MP4 file: " + filename }

// MediaAdapter presents an AdvancedMediaPlayer as a MediaPlayer.
type MediaAdapter struct {
	advanced AdvancedMediaPlayer
}

func NewMediaAdapter(p AdvancedMediaPlayer) *MediaAdapter {
	return &MediaAdapter{advanced: p}
}

func (a *MediaAdapter) Play(format, filename string) (string, error) {
	switch format {
	case FormatVLC:
		return a.advanced.PlayVLC(filename), nil
	case FormatMP4:
		return a.advanced.PlayMP4(filename), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// AudioPlayer plays mp3 and wav itself and hands anything else to its
// adapter, if it has one.
type AudioPlayer struct {
	adapter MediaPlayer
}

// NewAudioPlayer accepts a nil adapter.
func NewAudioPlayer(adapter MediaPlayer) *AudioPlayer {
	return &AudioPlayer{adapter: adapter}
}

func (p *AudioPlayer) Play(format, filename string) (string, error) {
	switch format {
	case FormatMP3:
		return "playing MP3 file: " + filename, nil
	case FormatWAV:
		return "playing WAV file: " + filename, nil
	}
	if p.adapter == nil {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return p.adapter.Play(format, filename)
}

// PlayFile plays path with the format taken from its extension.
func PlayFile(p MediaPlayer, path string) (string, error) {
	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if format == "" {
		return "", fmt.Errorf("%w: %s has no extension", ErrUnsupportedFormat, path)
	}
	return p.Play(format, path)
}
