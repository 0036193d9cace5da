package installer

// State is a step of the installation state machine.
type State int

const (
	StateStart State = iota
	StateAlreadyInstalled
	StateDownloadingBinary
	StateSettingPermissions
	StateDownloadingLicense
	StateDone
	StateFatalExit
)

var stateNames = [...]string{
	StateStart:              "start",
	StateAlreadyInstalled:   "already-installed",
	StateDownloadingBinary:  "downloading-binary",
	StateSettingPermissions: "setting-permissions",
	StateDownloadingLicense: "downloading-license",
	StateDone:               "done",
	StateFatalExit:          "fatal-exit",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether the machine stops in s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFatalExit
}
