// internal/phase/phase.go
//
// Phase detection for the assessment journey. The current phase is never
// persisted: it is derived fresh on every read from the signals in the
// record store plus the current navigation route, so scattered writers can
// stay independent and the indicator can never drift from the underlying
// state.

package phase

// Phase represents a stage in the assessment journey.
type Phase int

const (
	PhaseProfile Phase = iota
	PhaseBehaviors
	PhaseInsights
	PhaseCampaignBuild
	PhaseSelfAssess
	PhaseTeamAssess
	PhaseReview
)

// Order is the fixed journey sequence.
var Order = []Phase{
	PhaseProfile,
	PhaseBehaviors,
	PhaseInsights,
	PhaseCampaignBuild,
	PhaseSelfAssess,
	PhaseTeamAssess,
	PhaseReview,
}

// Last returns the final phase in the journey.
func Last() Phase {
	return Order[len(Order)-1]
}

// String returns a human-readable name for the phase
func (p Phase) String() string {
	switch p {
	case PhaseProfile:
		return "Profile"
	case PhaseBehaviors:
		return "Behaviors"
	case PhaseInsights:
		return "Insights"
	case PhaseCampaignBuild:
		return "Campaign Build"
	case PhaseSelfAssess:
		return "Self Assessment"
	case PhaseTeamAssess:
		return "Team Assessment"
	case PhaseReview:
		return "Review"
	default:
		return "Unknown"
	}
}

// FriendlyName returns a short description suitable for menu display
func (p Phase) FriendlyName() string {
	switch p {
	case PhaseProfile:
		return "Set Up Profile"
	case PhaseBehaviors:
		return "Rate Behaviors"
	case PhaseInsights:
		return "Review Insights"
	case PhaseCampaignBuild:
		return "Build Campaign"
	case PhaseSelfAssess:
		return "Self Benchmark"
	case PhaseTeamAssess:
		return "Team Feedback"
	case PhaseReview:
		return "Results Review"
	default:
		return p.String()
	}
}

// Next returns the next phase in the journey
func (p Phase) Next() Phase {
	if p >= Last() {
		return Last()
	}
	return p + 1
}

// IsTerminal returns true when no phase follows this one.
func (p Phase) IsTerminal() bool {
	return p == Last()
}
