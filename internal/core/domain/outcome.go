package domain

// Outcome is the closed classification set a session runner produces for one
// attempt. It replaces the free-form status strings earlier iterations of
// this logic passed around: every consumer switches exhaustively, so an
// unknown value can never fall through silently.
type Outcome int

const (
	// OutcomeSuccess means the login completed and a token was captured.
	OutcomeSuccess Outcome = iota

	// OutcomeCredentialInvalid means the target evaluated and rejected the
	// username/password pair.
	OutcomeCredentialInvalid

	// OutcomeAccountBanned means the target reported the account as banned.
	OutcomeAccountBanned

	// OutcomeAccountDisabled means the target reported the account as disabled.
	OutcomeAccountDisabled

	// OutcomeDefenseBlock means the target's anti-automation system rejected
	// the session before credentials were evaluated.
	OutcomeDefenseBlock

	// OutcomeNavigationTimeout means the attempt timed out before the target
	// produced a real response.
	OutcomeNavigationTimeout

	// OutcomeNoResponse means the target never answered at all.
	OutcomeNoResponse

	// OutcomeUnclassified is the catch-all for anything else.
	OutcomeUnclassified
)

// String returns the stable label used in logs and metrics.
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeCredentialInvalid:
		return "credential_invalid"
	case OutcomeAccountBanned:
		return "account_banned"
	case OutcomeAccountDisabled:
		return "account_disabled"
	case OutcomeDefenseBlock:
		return "defense_block"
	case OutcomeNavigationTimeout:
		return "navigation_timeout"
	case OutcomeNoResponse:
		return "no_response"
	default:
		return "unclassified"
	}
}

// MarshalJSON emits the string label so API payloads stay readable.
func (o Outcome) MarshalJSON() ([]byte, error) {
	return []byte(`"` + o.String() + `"`), nil
}

// Retryable reports whether the attempt may be repeated with another resource.
func (o Outcome) Retryable() bool {
	switch o {
	case OutcomeDefenseBlock, OutcomeNavigationTimeout, OutcomeNoResponse:
		return true
	default:
		return false
	}
}

// TargetReached reports whether the target actually received the session and
// evaluated the credentials. These outcomes vindicate the resource: the
// network path worked even when the login itself failed.
func (o Outcome) TargetReached() bool {
	switch o {
	case OutcomeSuccess, OutcomeCredentialInvalid, OutcomeAccountBanned, OutcomeAccountDisabled:
		return true
	default:
		return false
	}
}

// Classification is the pool-facing report for a resource after an attempt.
type Classification int

const (
	ClassSuccess Classification = iota
	ClassSoftFailure
)

// String returns the stable label used in logs.
func (c Classification) String() string {
	if c == ClassSuccess {
		return "success"
	}
	return "soft_failure"
}

// TerminalStatus is the final, caller-visible result of one logical login
// request after retries are exhausted or a non-retryable outcome is reached.
type TerminalStatus int

const (
	StatusSuccess TerminalStatus = iota
	StatusCredentialRejected
	StatusTargetRejected
	StatusDefenseBlocked
	StatusResourceUnresponsive
	StatusPoolExhausted
	StatusUnclassified
)

// String returns the stable label used in logs and API responses.
func (s TerminalStatus) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusCredentialRejected:
		return "credential_rejected"
	case StatusTargetRejected:
		return "target_rejected"
	case StatusDefenseBlocked:
		return "defense_blocked"
	case StatusResourceUnresponsive:
		return "resource_unresponsive"
	case StatusPoolExhausted:
		return "pool_exhausted"
	default:
		return "unclassified"
	}
}

// MarshalJSON emits the string label so API payloads stay readable.
func (s TerminalStatus) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// TerminalFor maps the last attempt's outcome to the terminal status reported
// to the caller.
func TerminalFor(o Outcome) TerminalStatus {
	switch o {
	case OutcomeSuccess:
		return StatusSuccess
	case OutcomeCredentialInvalid:
		return StatusCredentialRejected
	case OutcomeAccountBanned, OutcomeAccountDisabled:
		return StatusTargetRejected
	case OutcomeDefenseBlock:
		return StatusDefenseBlocked
	case OutcomeNavigationTimeout, OutcomeNoResponse:
		return StatusResourceUnresponsive
	default:
		return StatusUnclassified
	}
}
