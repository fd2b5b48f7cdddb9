package httpserver

import "net/http"

// User is the signed-in user as asserted by the authenticating proxy in
// front of this app. The app itself performs no authentication.
type User struct {
	ID           string
	MobileNumber string
	EmailAddress string
}

func currentUser(r *http.Request) User {
	return User{
		ID:           r.Header.Get("X-Notify-User-Id"),
		MobileNumber: r.Header.Get("X-Notify-User-Phone-Number"),
		EmailAddress: r.Header.Get("X-Notify-User-Email"),
	}
}
