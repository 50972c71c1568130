package views

import (
	"strings"
	"time"
)

const (
	TypeDelay   = 100 * time.Millisecond
	DeleteDelay = 50 * time.Millisecond
	HoldDelay   = 2 * time.Second
)

// Frame is one state of the hero title. Delay is how long it stays on
// screen before the next frame.
type Frame struct {
	Text    string `json:"text"`
	DelayMS int64  `json:"delayMs"`
}

// Titles splits a profile title on commas.
func Titles(title string) []string {
	titles := []string{}
	for _, part := range strings.Split(title, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			titles = append(titles, trimmed)
		}
	}
	return titles
}

// TypewriterFrames returns one full cycle: each title is typed one
// character at a time, held, then deleted one character at a time. After
// the last title's empty frame the cycle starts over with the first. A
// single title is one static frame.
func TypewriterFrames(titles []string) []Frame {
	switch len(titles) {
	case 0:
		return []Frame{}
	case 1:
		return []Frame{{Text: titles[0]}}
	}

	var frames []Frame
	for _, title := range titles {
		runes := []rune(title)
		for i := 1; i <= len(runes); i++ {
			delay := TypeDelay
			if i == len(runes) {
				delay = HoldDelay
			}
			frames = append(frames, Frame{Text: string(runes[:i]), DelayMS: delay.Milliseconds()})
		}
		for i := len(runes) - 1; i >= 0; i-- {
			frames = append(frames, Frame{Text: string(runes[:i]), DelayMS: DeleteDelay.Milliseconds()})
		}
	}
	return frames
}
