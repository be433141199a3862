// internal/app/system/authz/decision.go
package authz

// Decision is the result of a policy check. Reason carries the
// user-facing message when the action is denied, so handlers render
// the same wording everywhere a rule is enforced.
type Decision struct {
	Allowed bool
	Reason  string
}

// Allow returns a permitting decision.
func Allow() Decision { return Decision{Allowed: true} }

// Deny returns a refusing decision with a user-facing reason.
func Deny(reason string) Decision { return Decision{Allowed: false, Reason: reason} }
