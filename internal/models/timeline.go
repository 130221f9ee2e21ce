package models

import (
	"fmt"
	"time"
)

// TimelineEntry is one synthetic event in the derived activity timeline.
type TimelineEntry struct {
	Icon    string `json:"icon"`
	Label   string `json:"label"`
	Caption string `json:"caption"`
}

// timelineStage describes one canonical stage in display order. The value
// is read from the tenant field expected to have been populated at that
// stage, so the history is reconstructed without an event log.
type timelineStage struct {
	status  TenantStatus
	icon    string
	label   string
	caption func(t *Tenant, formatDate func(time.Time) string) string
}

var timelineStages = []timelineStage{
	{
		status: StatusSetDemoDate,
		icon:   "calendar",
		label:  "Demo Set",
		caption: func(t *Tenant, f func(time.Time) string) string {
			if t.DemoDate == nil {
				return "Awaiting scheduling"
			}
			return f(*t.DemoDate)
		},
	},
	{
		status: StatusPending,
		icon:   "check-circle",
		label:  "Demo Completed",
		caption: func(t *Tenant, _ func(time.Time) string) string {
			if t.MonthlyFee == nil {
				return ""
			}
			return fmt.Sprintf("Monthly fee set to $%g", *t.MonthlyFee)
		},
	},
	{
		status: StatusOnboardPaymentDetails,
		icon:   "credit-card",
		label:  "Payment Details",
		caption: func(t *Tenant, _ func(time.Time) string) string {
			if t.PaymentProvider == nil {
				return ""
			}
			return "Paid via " + *t.PaymentProvider
		},
	},
	{
		status: StatusOnboardCustomization,
		icon:   "palette",
		label:  "Branding",
		caption: func(t *Tenant, _ func(time.Time) string) string {
			if t.BrandingStatus == nil {
				return ""
			}
			return *t.BrandingStatus
		},
	},
	{
		status: StatusOnboardRole,
		icon:   "shield",
		label:  "Role",
		caption: func(t *Tenant, _ func(time.Time) string) string {
			if t.RoleName == nil {
				return ""
			}
			return *t.RoleName
		},
	},
	{
		status: StatusOnboardTeammate,
		icon:   "user",
		label:  "Teammate",
		caption: func(t *Tenant, _ func(time.Time) string) string {
			if t.TeammateName == nil {
				return ""
			}
			if t.TeammateRole != nil {
				return fmt.Sprintf("%s (%s)", *t.TeammateName, *t.TeammateRole)
			}
			return *t.TeammateName
		},
	},
	{
		status: StatusActive,
		icon:   "zap",
		label:  "Activated",
		caption: func(t *Tenant, f func(time.Time) string) string {
			if t.ActivationDate == nil {
				return ""
			}
			return f(*t.ActivationDate)
		},
	},
}

// FormatTimelineDate is the shared date formatter for timeline captions.
func FormatTimelineDate(t time.Time) string {
	return t.Format("Jan 2, 2006 15:04")
}

// BuildTimeline reconstructs the implied stage history of a tenant from
// its current status and the fields populated along the way. It is a pure
// function of the tenant snapshot: for a non-terminal status the result
// is exactly the prefix of the canonical stage list up to the status's
// position, never fewer than one entry (the demo stage is always shown,
// even before a date is set). Terminal tenants get the prefix implied by
// their furthest populated field plus one closing entry with the reason.
func BuildTimeline(t *Tenant) []TimelineEntry {
	status, err := ParseTenantStatus(string(t.Status))
	if err != nil {
		status = StatusUnprocessed
	}

	n := 1
	if status.IsTerminal() {
		n = furthestStage(t)
	} else if pos, ok := status.Position(); ok && pos > n {
		n = pos
	}
	if n > len(timelineStages) {
		n = len(timelineStages)
	}

	entries := make([]TimelineEntry, 0, n+1)
	for _, stage := range timelineStages[:n] {
		entries = append(entries, TimelineEntry{
			Icon:    stage.icon,
			Label:   stage.label,
			Caption: stage.caption(t, FormatTimelineDate),
		})
	}

	switch status {
	case StatusRejected:
		entries = append(entries, TimelineEntry{
			Icon:    "x-circle",
			Label:   "Rejected",
			Caption: safeReason(t.RejectionReason),
		})
	case StatusDeactivated:
		entries = append(entries, TimelineEntry{
			Icon:    "x-circle",
			Label:   "Deactivated",
			Caption: safeReason(t.DeactivationReason),
		})
	}

	return entries
}

// furthestStage infers how far a terminal tenant had progressed by
// checking which stage fields were populated before it was closed out.
func furthestStage(t *Tenant) int {
	populated := []bool{
		t.DemoDate != nil,
		t.MonthlyFee != nil,
		t.PaymentProvider != nil,
		t.BrandingStatus != nil,
		t.RoleName != nil,
		t.TeammateName != nil,
		t.ActivationDate != nil,
	}
	n := 1
	for i, ok := range populated {
		if ok {
			n = i + 1
		}
	}
	return n
}

func safeReason(reason *string) string {
	if reason == nil || *reason == "" {
		return "No reason recorded"
	}
	return *reason
}
