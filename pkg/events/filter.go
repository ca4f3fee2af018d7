package events

import (
	"github.com/moby/patternmatcher"
)

// MuteFilter silences events whose names match any of the configured
// patterns. Patterns use the familiar glob syntax from .dockerignore files:
// "staff:*" mutes all staff events, "!staff:clock_out" re-enables one.
type MuteFilter struct {
	matcher *patternmatcher.PatternMatcher
}

// NewMuteFilter compiles the given patterns. An empty pattern list yields a
// filter that mutes nothing.
func NewMuteFilter(patterns []string) (*MuteFilter, error) {
	if len(patterns) == 0 {
		return &MuteFilter{}, nil
	}
	matcher, err := patternmatcher.New(patterns)
	if err != nil {
		return nil, err
	}
	return &MuteFilter{matcher: matcher}, nil
}

// Muted reports whether the event name matches a mute pattern.
func (f *MuteFilter) Muted(event string) bool {
	if f == nil || f.matcher == nil {
		return false
	}
	muted, err := f.matcher.MatchesOrParentMatches(event)
	if err != nil {
		return false
	}
	return muted
}
