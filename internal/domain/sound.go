package domain

// SoundEvent is the closed set of audio cue names handed to the
// presentation collaborator. Cues are fire-and-forget; a failed playback
// never reaches core logic.
type SoundEvent string

const (
	SoundBeep  SoundEvent = "beep"
	SoundError SoundEvent = "error"
	SoundCash  SoundEvent = "cash"
	SoundClear SoundEvent = "clear"
)
