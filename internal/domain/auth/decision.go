package auth

// Guard decision state machine. A guard evaluates PENDING -> DECIDING ->
// {RENDER, REDIRECT} per navigation; it is re-entered on every path or
// snapshot change. Keeping the machine explicit (rather than re-deriving the
// outcome from render timing) is what prevents redirect loops.

// DecisionKind is the terminal outcome of a guard evaluation.
type DecisionKind int

const (
	// DecisionPending renders the loading placeholder and issues no redirect.
	DecisionPending DecisionKind = iota
	// DecisionRender admits the request into the protected area.
	DecisionRender
	// DecisionRedirect navigates to Decision.Target.
	DecisionRedirect
	// DecisionError surfaces a visible error state (transient role-lookup
	// failure with a retry affordance). Never a redirect.
	DecisionError
)

// Decision is the outcome of evaluating a snapshot against a route area.
type Decision struct {
	Kind   DecisionKind
	Target string // redirect target when Kind == DecisionRedirect
}

// Decide evaluates the guard state machine for the given path.
//
//  1. Session still loading: pending, no redirect.
//  2. Session resolved, no identity: redirect to sign-in.
//  3. Identity present, role pending: pending. Never guess a default role.
//  4. Role loaded: exact match, or admin where instructor is required,
//     renders; otherwise redirect to the canonical home for the ACTUAL
//     resolved role (nil role goes to sign-in).
//  5. Idempotence: when the computed redirect target equals the current
//     path, no redirect is issued.
func Decide(snap Snapshot, path string, area RouteArea) Decision {
	if snap.SessionLoading {
		return Decision{Kind: DecisionPending}
	}
	if snap.Identity == nil {
		return redirectUnlessAt(path, SignInPath)
	}
	if !snap.RoleLoaded {
		if snap.RoleErr != nil {
			return Decision{Kind: DecisionError}
		}
		return Decision{Kind: DecisionPending}
	}
	if snap.Role != nil && snap.Role.Satisfies(area.RequiredRole) {
		return Decision{Kind: DecisionRender}
	}
	return redirectUnlessAt(path, HomePath(snap.Role))
}

// redirectUnlessAt guards against a redirect loop: a guard re-evaluating
// after its own navigation must not bounce again.
func redirectUnlessAt(path, target string) Decision {
	if path == target {
		return Decision{Kind: DecisionRender}
	}
	return Decision{Kind: DecisionRedirect, Target: target}
}
