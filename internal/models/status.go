package models

import (
	"fmt"
	"strings"
)

// TenantStatus is the lifecycle stage of a tenant in the onboarding
// pipeline. The backend has historically been inconsistent about casing,
// so statuses are always canonicalized to upper-case before comparison.
type TenantStatus string

const (
	StatusUnprocessed           TenantStatus = "UNPROCESSED"
	StatusSetDemoDate           TenantStatus = "SET_DEMO_DATE"
	StatusPending               TenantStatus = "PENDING"
	StatusOnboardPaymentDetails TenantStatus = "ONBOARD_PAYMENT_DETAILS"
	StatusOnboardCustomization  TenantStatus = "ONBOARD_CUSTOMIZATION"
	StatusOnboardRole           TenantStatus = "ONBOARD_ROLE"
	StatusOnboardTeammate       TenantStatus = "ONBOARD_TEAMMATE"
	StatusActive                TenantStatus = "ACTIVE"
	StatusRejected              TenantStatus = "REJECTED"
	StatusDeactivated           TenantStatus = "DEACTIVATED"
)

// pipelineOrder is the canonical forward progression. Terminal statuses
// (REJECTED, DEACTIVATED) are absorbing and do not appear here.
var pipelineOrder = []TenantStatus{
	StatusUnprocessed,
	StatusSetDemoDate,
	StatusPending,
	StatusOnboardPaymentDetails,
	StatusOnboardCustomization,
	StatusOnboardRole,
	StatusOnboardTeammate,
	StatusActive,
}

var statusIndex = func() map[TenantStatus]int {
	m := make(map[TenantStatus]int, len(pipelineOrder))
	for i, s := range pipelineOrder {
		m[s] = i
	}
	return m
}()

var badgeLabels = map[TenantStatus]string{
	StatusUnprocessed:           "Unprocessed",
	StatusSetDemoDate:           "Demo Date Set",
	StatusPending:               "Pending Payment",
	StatusOnboardPaymentDetails: "Onboarding",
	StatusOnboardCustomization:  "Onboarding",
	StatusOnboardRole:           "Onboarding",
	StatusOnboardTeammate:       "Onboarding",
	StatusActive:                "Active",
	StatusRejected:              "Rejected",
	StatusDeactivated:           "Deactivated",
}

// ParseTenantStatus canonicalizes a raw status string. Unknown values
// return an error so callers can fall back to the legacy display fields.
func ParseTenantStatus(raw string) (TenantStatus, error) {
	s := TenantStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := badgeLabels[s]; !ok {
		return "", fmt.Errorf("unknown tenant status %q", raw)
	}
	return s, nil
}

// IsTerminal reports whether the status is absorbing.
func (s TenantStatus) IsTerminal() bool {
	return s == StatusRejected || s == StatusDeactivated
}

// Position returns the 0-based pipeline index of a non-terminal status.
func (s TenantStatus) Position() (int, bool) {
	i, ok := statusIndex[s]
	return i, ok
}

// BadgeLabel is the single display label for each status.
func (s TenantStatus) BadgeLabel() string {
	return badgeLabels[s]
}

// CanTransition reports whether moving from s to next is a legal
// lifecycle transition. The pipeline is strictly forward-only, one stage
// at a time; the terminal statuses are reachable from any non-terminal
// state and absorb everything afterwards.
func (s TenantStatus) CanTransition(next TenantStatus) bool {
	if s.IsTerminal() {
		return false
	}
	if next.IsTerminal() {
		return true
	}
	from, ok := s.Position()
	if !ok {
		return false
	}
	to, ok := next.Position()
	if !ok {
		return false
	}
	return to == from+1
}
