package handlers_test

import (
	"testing"

	"github.com/transcodelab/transcribe-server/internal/handlers"
)

func TestValidMediaFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		filename string
		want     bool
	}{
		{name: "mp3", filename: "episode.mp3", want: true},
		{name: "wav", filename: "take.wav", want: true},
		{name: "uppercase extension", filename: "MEETING.M4A", want: true},
		{name: "video container", filename: "talk.mp4", want: true},
		{name: "opus", filename: "clip.opus", want: true},
		{name: "text file", filename: "notes.txt", want: false},
		{name: "no extension", filename: "mystery", want: false},
		{name: "double extension uses last", filename: "a.mp3.exe", want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := handlers.ValidMediaFormat(tt.filename); got != tt.want {
				t.Errorf("ValidMediaFormat(%q) = %v, want %v", tt.filename, got, tt.want)
			}
		})
	}
}
