package form

import (
	"fmt"
	"strings"
)

// Tone is the register requested for the generated reply.
type Tone string

const (
	ToneFormal       Tone = "formal"
	ToneProfessional Tone = "professional"
	ToneCasual       Tone = "casual"
	ToneFriendly     Tone = "friendly"
)

// DefaultTone is the tone a fresh or cleared form starts with.
const DefaultTone = ToneProfessional

// allTones lists tones in display order.
var allTones = []Tone{ToneFormal, ToneProfessional, ToneCasual, ToneFriendly}

// Tones returns every supported tone in display order.
func Tones() []Tone {
	out := make([]Tone, len(allTones))
	copy(out, allTones)
	return out
}

// ParseTone converts a user-supplied name into a Tone.
// Matching ignores case and surrounding whitespace.
func ParseTone(s string) (Tone, error) {
	t := Tone(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q (valid: %s)", ErrInvalidTone, s, toneNames())
	}
	return t, nil
}

// Valid reports whether t is one of the supported tones.
func (t Tone) Valid() bool {
	for _, known := range allTones {
		if t == known {
			return true
		}
	}
	return false
}

// Label returns the display label (e.g. "Professional").
func (t Tone) Label() string {
	if t == "" {
		return ""
	}
	return strings.ToUpper(string(t[:1])) + string(t[1:])
}

// String implements fmt.Stringer
func (t Tone) String() string {
	return string(t)
}

// Next returns the tone after t in display order, wrapping around.
func (t Tone) Next() Tone {
	return allTones[(t.index()+1)%len(allTones)]
}

// Prev returns the tone before t in display order, wrapping around.
func (t Tone) Prev() Tone {
	return allTones[(t.index()+len(allTones)-1)%len(allTones)]
}

// index returns the display position of t, treating unknown tones as the default
func (t Tone) index() int {
	for i, known := range allTones {
		if t == known {
			return i
		}
	}
	for i, known := range allTones {
		if known == DefaultTone {
			return i
		}
	}
	return 0
}

func toneNames() string {
	names := make([]string, len(allTones))
	for i, t := range allTones {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
