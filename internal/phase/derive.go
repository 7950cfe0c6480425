package phase

import (
	"net/url"
	"strings"

	"github.com/kingrea/lodestar/internal/store"
)

// Route is the current navigation location: a path plus query parameters.
type Route struct {
	Path  string
	Query url.Values
}

// Derivation is the output of one derivation pass.
type Derivation struct {
	Current Phase
	// Completion holds one entry per phase, computed independently from
	// the store signals.
	Completion map[Phase]bool
	// Links maps each phase to its navigable target. An empty string means
	// "not yet reachable" (for example the self/team phases before an
	// instrument has been generated); callers must treat it as pending,
	// not as an error.
	Links map[Phase]string
}

// Deriver reads store signals and a route and produces the current phase.
type Deriver struct {
	records *store.Records
}

// NewDeriver builds a deriver over the given record repository.
func NewDeriver(records *store.Records) *Deriver {
	return &Deriver{records: records}
}

// Derive computes the journey state in two passes.
//
// Pass one builds the completion map from presence checks on the persisted
// signals. Pass two pattern-matches the route; when the route implies a
// known phase it is authoritative, because phase must reflect where the
// user currently is. When the route is ambiguous (a generic entry path),
// the first incomplete phase in journey order wins, degrading to "how far
// has the user progressed". All phases complete falls through to the last
// phase. An unresolvable route is a defined fallback, never an error.
func (d *Deriver) Derive(route Route) Derivation {
	completion := d.completionMap()

	current, ok := d.routeImpliedPhase(route)
	if !ok {
		current = firstIncomplete(completion)
	}

	return Derivation{
		Current:    current,
		Completion: completion,
		Links:      d.phaseLinks(),
	}
}

func (d *Deriver) completionMap() map[Phase]bool {
	rec := d.records
	completion := make(map[Phase]bool, len(Order))

	completion[PhaseProfile] = !rec.Profile().Empty()

	_, intakeOK := rec.IntakeLatest()
	completion[PhaseBehaviors] = intakeOK

	completion[PhaseInsights] = strings.TrimSpace(rec.InsightsSummary()) != ""

	summary, hasBundle := rec.BundleSummary()
	completion[PhaseCampaignBuild] = len(rec.CampaignAuthored()) > 0 || hasBundle

	selfDone := rec.SelfCompleted()
	if hasBundle && rec.SelfCompletedFor(summary.SelfInstrumentID) {
		selfDone = true
	}
	completion[PhaseSelfAssess] = selfDone
	completion[PhaseTeamAssess] = rec.TeamCompleted()
	completion[PhaseReview] = selfDone && rec.TeamCompleted()

	return completion
}

// routeImpliedPhase maps the navigation path to a phase, most specific
// pattern first. The generic instrument route is disambiguated by the mode
// query parameter, then by the instrument's recorded campaign type.
func (d *Deriver) routeImpliedPhase(route Route) (Phase, bool) {
	path := strings.TrimRight(strings.TrimSpace(route.Path), "/")

	if id, ok := instrumentID(path); ok {
		if route.Query.Get("mode") == "self" {
			return PhaseSelfAssess, true
		}
		switch d.records.CampaignTypeFor(id) {
		case "self":
			return PhaseSelfAssess, true
		case "team":
			return PhaseTeamAssess, true
		}
		return 0, false
	}

	switch path {
	case "/profile":
		return PhaseProfile, true
	case "/behaviors":
		return PhaseBehaviors, true
	case "/insights":
		return PhaseInsights, true
	case "/campaign":
		return PhaseCampaignBuild, true
	case "/review":
		return PhaseReview, true
	}
	return 0, false
}

func (d *Deriver) phaseLinks() map[Phase]string {
	links := map[Phase]string{
		PhaseProfile:       "/profile",
		PhaseBehaviors:     "/behaviors",
		PhaseInsights:      "/insights",
		PhaseCampaignBuild: "/campaign",
		PhaseSelfAssess:    "",
		PhaseTeamAssess:    "",
		PhaseReview:        "/review",
	}
	if summary, ok := d.records.BundleSummary(); ok {
		links[PhaseSelfAssess] = summary.SelfLink
		links[PhaseTeamAssess] = summary.TeamLink
	}
	return links
}

func firstIncomplete(completion map[Phase]bool) Phase {
	for _, p := range Order {
		if !completion[p] {
			return p
		}
	}
	return Last()
}

// instrumentID extracts the document id from /instrument/<id> paths.
func instrumentID(path string) (string, bool) {
	const prefix = "/instrument/"
	if !strings.HasPrefix(path, prefix) {
		return "", false
	}
	id := strings.TrimPrefix(path, prefix)
	if id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}
