package handler

// Route pattern constants for chi router registration.
const (
	// RouteRoot is the root path.
	RouteRoot = "/"
	// RouteGetUser is the user directory route.
	RouteGetUser = "/get_user"
	// RouteRegister is the registration route.
	RouteRegister = "/register"
	// RouteLogin is the login route.
	RouteLogin = "/login"
	// RouteLogout is the logout route.
	RouteLogout = "/logout"
	// RouteProfile is the profile route pattern.
	RouteProfile = "/profile/{username}"
	// RouteCreateEvent is the event creation route.
	RouteCreateEvent = "/create_event"
	// RouteEditEvent is the event edit route pattern.
	RouteEditEvent = "/edit_event/{eventID}"
	// RouteDeleteEvent is the event deletion route pattern.
	RouteDeleteEvent = "/delete_event/{eventID}"
)

// Redirect targets.
const (
	redirectRoot        = "/"
	redirectLogin       = "/login"
	redirectRegister    = "/register"
	redirectCreateEvent = "/create_event"
)

// profileURL builds the profile redirect target for a username.
func profileURL(username string) string {
	return "/profile/" + username
}
