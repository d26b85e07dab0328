package model

// Tone is the badge colour the console renders for a status value.
type Tone string

const (
	TonePrimary Tone = "primary"
	ToneSuccess Tone = "success"
	ToneWarning Tone = "warning"
	ToneInfo    Tone = "info"
	ToneError   Tone = "error"
	ToneNeutral Tone = "default"

	// ToneUnknown is returned for values the console does not recognise.
	// Declared constants never map to it.
	ToneUnknown Tone = "unknown"
)
