package domain

import "testing"

func TestOutcomeRetryable(t *testing.T) {
	retryable := map[Outcome]bool{
		OutcomeSuccess:           false,
		OutcomeCredentialInvalid: false,
		OutcomeAccountBanned:     false,
		OutcomeAccountDisabled:   false,
		OutcomeDefenseBlock:      true,
		OutcomeNavigationTimeout: true,
		OutcomeNoResponse:        true,
		OutcomeUnclassified:      false,
	}

	for outcome, want := range retryable {
		if got := outcome.Retryable(); got != want {
			t.Errorf("%s.Retryable() = %t, want %t", outcome, got, want)
		}
	}
}

func TestTerminalFor(t *testing.T) {
	tests := []struct {
		outcome Outcome
		want    TerminalStatus
	}{
		{OutcomeSuccess, StatusSuccess},
		{OutcomeCredentialInvalid, StatusCredentialRejected},
		{OutcomeAccountBanned, StatusTargetRejected},
		{OutcomeAccountDisabled, StatusTargetRejected},
		{OutcomeDefenseBlock, StatusDefenseBlocked},
		{OutcomeNavigationTimeout, StatusResourceUnresponsive},
		{OutcomeNoResponse, StatusResourceUnresponsive},
		{OutcomeUnclassified, StatusUnclassified},
	}

	for _, tt := range tests {
		if got := TerminalFor(tt.outcome); got != tt.want {
			t.Errorf("TerminalFor(%s) = %s, want %s", tt.outcome, got, tt.want)
		}
	}
}

func TestTargetReached(t *testing.T) {
	reached := []Outcome{OutcomeSuccess, OutcomeCredentialInvalid, OutcomeAccountBanned, OutcomeAccountDisabled}
	for _, o := range reached {
		if !o.TargetReached() {
			t.Errorf("%s.TargetReached() = false, want true", o)
		}
	}

	notReached := []Outcome{OutcomeDefenseBlock, OutcomeNavigationTimeout, OutcomeNoResponse, OutcomeUnclassified}
	for _, o := range notReached {
		if o.TargetReached() {
			t.Errorf("%s.TargetReached() = true, want false", o)
		}
	}
}
