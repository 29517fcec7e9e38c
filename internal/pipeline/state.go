package pipeline

// State is a step of a single download request.
type State int

const (
	StateStart State = iota
	StateFetchingVideo
	StateFetchingAudio
	StateInspecting
	StateRenamingVideo
	StateRenamingAudio
	StateMuxing
	StateDone
	StateFailed
)

var stateNames = [...]string{
	StateStart:         "start",
	StateFetchingVideo: "fetching-video",
	StateFetchingAudio: "fetching-audio",
	StateInspecting:    "inspecting",
	StateRenamingVideo: "renaming-video",
	StateRenamingAudio: "renaming-audio",
	StateMuxing:        "muxing",
	StateDone:          "done",
	StateFailed:        "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}
