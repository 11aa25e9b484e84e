package user

const (
	ActionLoginUser  = "LOGIN_USER"
	ActionLogoutUser = "LOGOUT_USER"
)

// State is the session's view of the authenticated user. A nil User means anonymous.
type State struct {
	User *User `json:"user"`
}

var InitialState = State{}

// Action is one of LoginUser or LogoutUser.
type Action interface {
	Type() string
	isUserAction()
}

type LoginUser struct {
	Payload User
}

func (LoginUser) Type() string  { return ActionLoginUser }
func (LoginUser) isUserAction() {}

type LogoutUser struct{}

func (LogoutUser) Type() string  { return ActionLogoutUser }
func (LogoutUser) isUserAction() {}

// Reduce returns the state that follows `action`. It never mutates `state`.
func Reduce(state State, action Action) State {
	switch a := action.(type) {
	case LoginUser:
		usr := a.Payload
		return State{User: &usr}
	case LogoutUser:
		return State{User: nil}
	default:
		return state
	}
}
