package session

// LoaderAction toggles the global loading indicator.
type LoaderAction string

const (
	ShowLoader LoaderAction = "SHOW_LOADER"
	HideLoader LoaderAction = "HIDE_LOADER"
)

type LoaderState struct {
	Loading bool `json:"loading"`
}

// InitialLoaderState starts loading: nothing is known about the session yet.
var InitialLoaderState = LoaderState{Loading: true}

func (a LoaderAction) Type() string { return string(a) }

// ReduceLoader is pure; unknown actions leave the state unchanged.
func ReduceLoader(state LoaderState, action LoaderAction) LoaderState {
	switch action {
	case ShowLoader:
		return LoaderState{Loading: true}
	case HideLoader:
		return LoaderState{Loading: false}
	default:
		return state
	}
}
