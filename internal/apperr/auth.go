package apperr

import "net/http"

const (
	AuthUserNotFound       = "auth/user-not-found"
	AuthWrongPassword      = "auth/wrong-password"
	AuthEmailAlreadyInUse  = "auth/email-already-in-use"
	AuthWeakPassword       = "auth/weak-password"
	AuthInvalidEmail       = "auth/invalid-email"
	AuthUserDisabled       = "auth/user-disabled"
	AuthTooManyRequests    = "auth/too-many-requests"
	AuthUnauthenticated    = "unauthenticated"
	AuthInvalidCredentials = "auth/invalid-credential"
)

var authMessages = map[string]string{
	AuthUserNotFound:       "user not found",
	AuthWrongPassword:      "wrong password",
	AuthEmailAlreadyInUse:  "this email address is already in use",
	AuthWeakPassword:       "the password is too weak",
	AuthInvalidEmail:       "the email address is not valid",
	AuthUserDisabled:       "this account has been disabled",
	AuthTooManyRequests:    "too many requests, please wait and try again",
	AuthUnauthenticated:    "please log in",
	AuthInvalidCredentials: "invalid credentials",
}

// Auth builds an authentication failure for a known code. Unknown codes fall
// back to the generic message.
func Auth(code string) *Error {
	msg, ok := authMessages[code]
	if !ok {
		msg = GenericMessage
	}
	return &Error{Kind: KindAuth, Code: code, Message: msg}
}

func authStatus(code string) int {
	switch code {
	case AuthEmailAlreadyInUse:
		return http.StatusConflict
	case AuthWeakPassword, AuthInvalidEmail:
		return http.StatusBadRequest
	case AuthTooManyRequests:
		return http.StatusTooManyRequests
	case AuthUserDisabled:
		return http.StatusForbidden
	}
	return http.StatusUnauthorized
}
