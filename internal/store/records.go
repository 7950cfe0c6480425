package store

import (
	"strings"
	"time"

	"github.com/kingrea/lodestar/internal/taxonomy"
)

// Logical record keys. Boolean signals are stored as "true"/"false" strings
// because the original intake surface recorded them that way; the accessors
// keep that shape on disk.
const (
	keyProfile             = "profile"
	keyIntakeLatest        = "intakeLatest"
	keyInsightsSummary     = "insightsSummary"
	keyCampaignAuthored    = "campaignAuthored"
	keyBundleSummary       = "bundleSummary"
	keySelfCompleted       = "selfInstrumentCompleted"
	keyTeamCompleted       = "teamInstrumentCompleted"
	keyDashboardCredential = "dashboardCredential"
	keyCampaignTypePrefix  = "campaignType:"
)

// Profile is the user's identity signal.
type Profile struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Empty reports whether no usable identity was recorded.
func (p Profile) Empty() bool {
	return strings.TrimSpace(p.Name) == "" && strings.TrimSpace(p.Email) == ""
}

// Credential is the stored results-dashboard login.
type Credential struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// BundleSummary is the local bookkeeping record written after a campaign
// bundle is generated, so both instruments can be rendered without
// re-querying the document store.
type BundleSummary struct {
	BundleID         string    `json:"bundleId"`
	OwnerID          string    `json:"ownerId"`
	SelfInstrumentID string    `json:"selfInstrumentId"`
	TeamInstrumentID string    `json:"teamInstrumentId"`
	SelfLink         string    `json:"selfLink"`
	SelfPassword     string    `json:"selfPassword"`
	TeamLink         string    `json:"teamLink"`
	TeamPassword     string    `json:"teamPassword"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Profile returns the stored profile, zero-valued when absent or malformed.
func (r *Records) Profile() Profile {
	var p Profile
	r.get(keyProfile, &p)
	return p
}

// SetProfile stores the profile signal.
func (r *Records) SetProfile(p Profile) error {
	return r.set(keyProfile, p)
}

// IntakeLatest returns the most recent behaviors intake submission. The
// payload is shaped by the intake surface, so it stays an untyped object
// here; ok is false when nothing parseable was recorded.
func (r *Records) IntakeLatest() (map[string]any, bool) {
	var payload map[string]any
	if !r.get(keyIntakeLatest, &payload) || payload == nil {
		return nil, false
	}
	return payload, true
}

// SetIntakeLatest stores the intake submission.
func (r *Records) SetIntakeLatest(payload map[string]any) error {
	return r.set(keyIntakeLatest, payload)
}

// InsightsSummary returns the stored insights summary text ("" when absent).
func (r *Records) InsightsSummary() string {
	var s string
	r.get(keyInsightsSummary, &s)
	return s
}

// SetInsightsSummary stores the insights summary text.
func (r *Records) SetInsightsSummary(summary string) error {
	return r.set(keyInsightsSummary, summary)
}

// CampaignAuthored returns the authored trait/statement list (nil when
// absent or malformed).
func (r *Records) CampaignAuthored() taxonomy.Set {
	var set taxonomy.Set
	if !r.get(keyCampaignAuthored, &set) {
		return nil
	}
	return set
}

// SetCampaignAuthored stores the authored trait/statement list.
func (r *Records) SetCampaignAuthored(set taxonomy.Set) error {
	return r.set(keyCampaignAuthored, set)
}

// BundleSummary returns the local bundle record.
func (r *Records) BundleSummary() (BundleSummary, bool) {
	var summary BundleSummary
	if !r.get(keyBundleSummary, &summary) || summary.BundleID == "" {
		return BundleSummary{}, false
	}
	return summary, true
}

// SetBundleSummary stores the local bundle record.
func (r *Records) SetBundleSummary(summary BundleSummary) error {
	return r.set(keyBundleSummary, summary)
}

// SelfCompleted reports the unkeyed "most recent self instrument completed"
// convenience signal.
func (r *Records) SelfCompleted() bool {
	return r.flag(keySelfCompleted)
}

// SelfCompletedFor reports completion of one specific self instrument.
func (r *Records) SelfCompletedFor(instrumentID string) bool {
	if strings.TrimSpace(instrumentID) == "" {
		return false
	}
	return r.flag(keySelfCompleted + ":" + instrumentID)
}

// MarkSelfCompleted records completion for the given self instrument and
// mirrors it into the unkeyed convenience signal.
func (r *Records) MarkSelfCompleted(instrumentID string) error {
	if strings.TrimSpace(instrumentID) != "" {
		if err := r.setFlag(keySelfCompleted+":"+instrumentID, true); err != nil {
			return err
		}
	}
	return r.setFlag(keySelfCompleted, true)
}

// TeamCompleted reports the team instrument completion signal.
func (r *Records) TeamCompleted() bool {
	return r.flag(keyTeamCompleted)
}

// MarkTeamCompleted records team instrument completion.
func (r *Records) MarkTeamCompleted() error {
	return r.setFlag(keyTeamCompleted, true)
}

// DashboardCredential returns the stored results-dashboard login.
func (r *Records) DashboardCredential() (Credential, bool) {
	var cred Credential
	if !r.get(keyDashboardCredential, &cred) || cred.Password == "" {
		return Credential{}, false
	}
	return cred, true
}

// SetDashboardCredential stores the results-dashboard login.
func (r *Records) SetDashboardCredential(cred Credential) error {
	return r.set(keyDashboardCredential, cred)
}

// CampaignTypeFor returns the recorded instrument type ("self"/"team") for
// an instrument id, or "" when unknown.
func (r *Records) CampaignTypeFor(instrumentID string) string {
	if strings.TrimSpace(instrumentID) == "" {
		return ""
	}
	var kind string
	r.get(keyCampaignTypePrefix+instrumentID, &kind)
	return kind
}

// SetCampaignTypeFor records the instrument type for an instrument id.
func (r *Records) SetCampaignTypeFor(instrumentID, kind string) error {
	return r.set(keyCampaignTypePrefix+instrumentID, kind)
}

// flag reads a boolean-as-string signal; anything but "true" is false.
func (r *Records) flag(key string) bool {
	var s string
	if !r.get(key, &s) {
		return false
	}
	return s == "true"
}

func (r *Records) setFlag(key string, value bool) error {
	if value {
		return r.set(key, "true")
	}
	return r.set(key, "false")
}
