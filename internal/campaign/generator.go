// internal/campaign/generator.go
//
// The bundle generator turns an authored trait/statement list into a pair
// of deployable instruments: a first-person self assessment and a
// leader-directed team assessment, linked by a shared bundle id. The two
// documents are written to the remote store one after the other; there is
// no transaction, so a failed second write is surfaced as a typed partial
// failure carrying the orphaned self document's id.
package campaign

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kingrea/lodestar/internal/docstore"
	"github.com/kingrea/lodestar/internal/store"
	"github.com/kingrea/lodestar/internal/taxonomy"
	"github.com/kingrea/lodestar/internal/voice"
)

// ErrMissingAuthoringData is returned when bundle generation starts without
// an authored trait/statement list on record.
var ErrMissingAuthoringData = errors.New("campaign: no authored trait list on record")

// PartialWriteError reports a bundle whose self document was persisted but
// whose team document write failed. The orphaned self id lets a caller or
// operator reconcile the remote store by hand.
type PartialWriteError struct {
	OrphanedSelfID string
	Err            error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("campaign: team document write failed, self document %s orphaned: %v", e.OrphanedSelfID, e.Err)
}

func (e *PartialWriteError) Unwrap() error {
	return e.Err
}

// Generator builds and persists instrument bundles.
type Generator struct {
	docs    docstore.Creator
	records *store.Records
	origin  string
	now     func() time.Time
	entropy io.Reader
}

// Option customizes a Generator.
type Option func(*Generator)

// WithClock overrides the clock used for bundle ids and timestamps.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithEntropy overrides the randomness source used for credentials.
func WithEntropy(r io.Reader) Option {
	return func(g *Generator) { g.entropy = r }
}

// NewGenerator wires a generator against the document store and the local
// record store. origin is the base URL instrument links are built from.
func NewGenerator(docs docstore.Creator, records *store.Records, origin string, opts ...Option) *Generator {
	g := &Generator{
		docs:    docs,
		records: records,
		origin:  strings.TrimRight(origin, "/"),
		now:     time.Now,
		entropy: rand.Reader,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate builds the self/team instrument pair from the authored trait
// list on record, persists both documents remotely, and records the bundle
// summary locally. The authored list must exist; the owner profile may be
// empty (documents are still usable, just unattributed).
func (g *Generator) Generate(ctx context.Context) (store.BundleSummary, error) {
	authored := g.records.CampaignAuthored()
	if authored.FlatCount() == 0 {
		return store.BundleSummary{}, ErrMissingAuthoringData
	}

	profile := g.records.Profile()
	ownerID := ownerIdentity(profile)
	now := g.now()
	bundleID := newBundleID(now)

	if err := g.ensureDashboardCredential(profile); err != nil {
		return store.BundleSummary{}, err
	}

	selfPassword, err := randomString(g.entropy, instrumentPasswordLength)
	if err != nil {
		return store.BundleSummary{}, err
	}
	teamPassword, err := randomString(g.entropy, instrumentPasswordLength)
	if err != nil {
		return store.BundleSummary{}, err
	}

	owner := docstore.OwnerInfo{Name: profile.Name, Email: profile.Email}
	selfDoc := docstore.InstrumentDocument{
		OwnerInfo:      owner,
		OwnerID:        ownerID,
		BundleID:       bundleID,
		InstrumentType: docstore.TypeSelf,
		Campaign:       selfVoiceSet(authored, profile.Name),
		Password:       selfPassword,
		CreatedAt:      now,
	}
	selfID, err := g.docs.Create(ctx, selfDoc)
	if err != nil {
		return store.BundleSummary{}, fmt.Errorf("campaign: persist self document: %w", err)
	}

	teamDoc := docstore.InstrumentDocument{
		OwnerInfo:        owner,
		OwnerID:          ownerID,
		BundleID:         bundleID,
		InstrumentType:   docstore.TypeTeam,
		Campaign:         authored.Clone(),
		Password:         teamPassword,
		CreatedAt:        now,
		SelfInstrumentID: selfID,
	}
	teamID, err := g.docs.Create(ctx, teamDoc)
	if err != nil {
		return store.BundleSummary{}, &PartialWriteError{OrphanedSelfID: selfID, Err: err}
	}

	summary := store.BundleSummary{
		BundleID:         bundleID,
		OwnerID:          ownerID,
		SelfInstrumentID: selfID,
		TeamInstrumentID: teamID,
		SelfLink:         g.instrumentLink(selfID) + "?mode=self",
		SelfPassword:     selfPassword,
		TeamLink:         g.instrumentLink(teamID),
		TeamPassword:     teamPassword,
		CreatedAt:        now,
	}
	if err := g.records.SetCampaignTypeFor(selfID, docstore.TypeSelf); err != nil {
		return store.BundleSummary{}, err
	}
	if err := g.records.SetCampaignTypeFor(teamID, docstore.TypeTeam); err != nil {
		return store.BundleSummary{}, err
	}
	if err := g.records.SetBundleSummary(summary); err != nil {
		return store.BundleSummary{}, err
	}
	return summary, nil
}

// TeamUnlocked reports whether the team instrument may be shared. The
// gate is the completion signal of the bundle's own self instrument; the
// unkeyed mirror signal is a convenience read and must not unlock a team
// instrument whose linked self was never completed.
func TeamUnlocked(records *store.Records, summary store.BundleSummary) bool {
	return records.SelfCompletedFor(summary.SelfInstrumentID)
}

// ensureDashboardCredential generates and stores the long-lived results
// credential if none exists yet. An existing credential is never rotated.
func (g *Generator) ensureDashboardCredential(profile store.Profile) error {
	if _, ok := g.records.DashboardCredential(); ok {
		return nil
	}
	password, err := randomString(g.entropy, dashboardCredentialLength)
	if err != nil {
		return err
	}
	return g.records.SetDashboardCredential(store.Credential{
		Email:    profile.Email,
		Password: password,
	})
}

func (g *Generator) instrumentLink(instrumentID string) string {
	return g.origin + "/instrument/" + instrumentID
}

// selfVoiceSet produces the first-person copy of the authored statements.
// The leader's name, when known, is treated as a leader-referential term.
func selfVoiceSet(authored taxonomy.Set, leaderName string) taxonomy.Set {
	var terms []string
	name := strings.TrimSpace(leaderName)
	if name != "" {
		terms = append(terms, name)
		if first := strings.Fields(name); len(first) > 1 {
			terms = append(terms, first[0])
		}
	}
	rewriter := voice.NewFirstPerson(terms...)

	out := authored.Clone()
	for ti := range out {
		for si := range out[ti].Statements {
			out[ti].Statements[si] = rewriter.Rewrite(out[ti].Statements[si])
		}
	}
	return out
}

// ownerIdentity prefers the profile email as the stable owner id and falls
// back to a random id for anonymous profiles.
func ownerIdentity(profile store.Profile) string {
	if email := strings.TrimSpace(profile.Email); email != "" {
		return email
	}
	return uuid.New().String()
}
