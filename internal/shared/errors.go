package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure. The same value covers
	// unknown email and wrong password so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrAccountInactive indicates a login attempt on a deactivated account.
	ErrAccountInactive = errors.New("account is inactive")
	// ErrEmailInUse indicates a registration conflict.
	ErrEmailInUse = errors.New("email already in use")
	// ErrUserNotFoundOrInactive indicates session issuance for a missing or
	// deactivated user.
	ErrUserNotFoundOrInactive = errors.New("user not found or inactive")
	// ErrCannotDeleteSelf indicates a user tried to delete their own account.
	ErrCannotDeleteSelf = errors.New("cannot delete your own account")
	// ErrPermissionDenied indicates the actor lacks the required permission.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrSystemRoleProtected indicates an edit or delete on a system role.
	ErrSystemRoleProtected = errors.New("system role cannot be modified")
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)

// UserSafeMessage maps an error to a message suitable for end users.
// Store-layer failures collapse into an opaque message; callers log the
// detailed error before surfacing this.
func UserSafeMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid email or password"
	case errors.Is(err, ErrAccountInactive):
		return "Your account is inactive"
	case errors.Is(err, ErrEmailInUse):
		return "Email already in use"
	case errors.Is(err, ErrUserNotFoundOrInactive):
		return "User not found or inactive"
	case errors.Is(err, ErrCannotDeleteSelf):
		return "Cannot delete your own account"
	case errors.Is(err, ErrPermissionDenied):
		return "You do not have permission to perform this action"
	case errors.Is(err, ErrSystemRoleProtected):
		return "System roles cannot be modified or deleted"
	case errors.Is(err, ErrNotFound):
		return "The requested record was not found"
	default:
		return "Something went wrong, please try again"
	}
}
