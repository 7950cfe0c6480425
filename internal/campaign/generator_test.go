package campaign

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kingrea/lodestar/internal/docstore"
	"github.com/kingrea/lodestar/internal/store"
	"github.com/kingrea/lodestar/internal/taxonomy"
)

// stubCreator records every document it is asked to persist and can fail a
// chosen write to exercise the partial-failure path.
type stubCreator struct {
	docs   []docstore.InstrumentDocument
	failAt int // 1-based write index to fail, 0 = never
}

func (s *stubCreator) Create(_ context.Context, doc docstore.InstrumentDocument) (string, error) {
	s.docs = append(s.docs, doc)
	if s.failAt == len(s.docs) {
		return "", errors.New("store unavailable")
	}
	return fmt.Sprintf("doc-%d", len(s.docs)), nil
}

// zeroReader is a deterministic entropy source; every credential drawn from
// it is the first charset character repeated.
type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

func testRecords(t *testing.T) *store.Records {
	t.Helper()
	return store.Open(filepath.Join(t.TempDir(), "records.json"))
}

func authoredSet() taxonomy.Set {
	return taxonomy.Set{
		{Name: "Clarity", Statements: []string{
			"The leader communicates goals clearly.",
			"The leader holds themselves to a high standard.",
		}},
	}
}

func newTestGenerator(t *testing.T, creator docstore.Creator, records *store.Records) *Generator {
	t.Helper()
	fixed := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	return NewGenerator(creator, records, "https://app.example.com/",
		WithClock(func() time.Time { return fixed }),
		WithEntropy(zeroReader{}),
	)
}

func TestGenerateRequiresAuthoredList(t *testing.T) {
	records := testRecords(t)
	gen := newTestGenerator(t, &stubCreator{}, records)

	if _, err := gen.Generate(context.Background()); !errors.Is(err, ErrMissingAuthoringData) {
		t.Fatalf("expected ErrMissingAuthoringData, got %v", err)
	}
}

func TestGenerateWritesLinkedPair(t *testing.T) {
	records := testRecords(t)
	if err := records.SetProfile(store.Profile{Name: "Brian Ortiz", Email: "brian@example.com"}); err != nil {
		t.Fatalf("set profile: %v", err)
	}
	if err := records.SetCampaignAuthored(authoredSet()); err != nil {
		t.Fatalf("set authored: %v", err)
	}
	creator := &stubCreator{}
	gen := newTestGenerator(t, creator, records)

	summary, err := gen.Generate(context.Background())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(creator.docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(creator.docs))
	}

	self, team := creator.docs[0], creator.docs[1]
	if self.InstrumentType != docstore.TypeSelf || team.InstrumentType != docstore.TypeTeam {
		t.Fatalf("unexpected write order: %q then %q", self.InstrumentType, team.InstrumentType)
	}
	if team.SelfInstrumentID != summary.SelfInstrumentID {
		t.Errorf("team document back-reference = %q, want %q", team.SelfInstrumentID, summary.SelfInstrumentID)
	}
	if self.BundleID != team.BundleID || self.BundleID != summary.BundleID {
		t.Errorf("bundle id mismatch: self %q team %q summary %q", self.BundleID, team.BundleID, summary.BundleID)
	}
	if !strings.HasPrefix(summary.BundleID, "20260314T092653-") {
		t.Errorf("bundle id %q lacks timestamp prefix", summary.BundleID)
	}
	if summary.OwnerID != "brian@example.com" {
		t.Errorf("owner id = %q", summary.OwnerID)
	}
	if summary.SelfLink != "https://app.example.com/instrument/"+summary.SelfInstrumentID+"?mode=self" {
		t.Errorf("self link = %q", summary.SelfLink)
	}
	if summary.TeamLink != "https://app.example.com/instrument/"+summary.TeamInstrumentID {
		t.Errorf("team link = %q", summary.TeamLink)
	}

	if got := records.CampaignTypeFor(summary.SelfInstrumentID); got != docstore.TypeSelf {
		t.Errorf("campaign type for self id = %q", got)
	}
	if got := records.CampaignTypeFor(summary.TeamInstrumentID); got != docstore.TypeTeam {
		t.Errorf("campaign type for team id = %q", got)
	}
	stored, ok := records.BundleSummary()
	if !ok || stored.BundleID != summary.BundleID {
		t.Errorf("stored summary = %+v, ok=%v", stored, ok)
	}
}

func TestGenerateRewritesSelfVoice(t *testing.T) {
	records := testRecords(t)
	if err := records.SetProfile(store.Profile{Name: "Brian Ortiz"}); err != nil {
		t.Fatalf("set profile: %v", err)
	}
	if err := records.SetCampaignAuthored(authoredSet()); err != nil {
		t.Fatalf("set authored: %v", err)
	}
	creator := &stubCreator{}
	gen := newTestGenerator(t, creator, records)

	if _, err := gen.Generate(context.Background()); err != nil {
		t.Fatalf("generate: %v", err)
	}

	self, team := creator.docs[0], creator.docs[1]
	want := []string{
		"I communicate goals clearly.",
		"I hold myself to a high standard.",
	}
	for i, statement := range self.Campaign[0].Statements {
		if statement != want[i] {
			t.Errorf("self statement %d = %q, want %q", i, statement, want[i])
		}
	}
	// The team instrument keeps the leader-directed originals.
	if team.Campaign[0].Statements[0] != "The leader communicates goals clearly." {
		t.Errorf("team statement rewritten: %q", team.Campaign[0].Statements[0])
	}
}

func TestGenerateTeamWriteFailure(t *testing.T) {
	records := testRecords(t)
	if err := records.SetCampaignAuthored(authoredSet()); err != nil {
		t.Fatalf("set authored: %v", err)
	}
	creator := &stubCreator{failAt: 2}
	gen := newTestGenerator(t, creator, records)

	_, err := gen.Generate(context.Background())
	var partial *PartialWriteError
	if !errors.As(err, &partial) {
		t.Fatalf("expected PartialWriteError, got %v", err)
	}
	if partial.OrphanedSelfID != "doc-1" {
		t.Errorf("orphaned self id = %q", partial.OrphanedSelfID)
	}
	if _, ok := records.BundleSummary(); ok {
		t.Error("bundle summary persisted despite partial failure")
	}
}

func TestGenerateKeepsExistingDashboardCredential(t *testing.T) {
	records := testRecords(t)
	existing := store.Credential{Email: "brian@example.com", Password: "keepme42"}
	if err := records.SetDashboardCredential(existing); err != nil {
		t.Fatalf("set credential: %v", err)
	}
	if err := records.SetCampaignAuthored(authoredSet()); err != nil {
		t.Fatalf("set authored: %v", err)
	}
	gen := newTestGenerator(t, &stubCreator{}, records)

	if _, err := gen.Generate(context.Background()); err != nil {
		t.Fatalf("generate: %v", err)
	}
	cred, ok := records.DashboardCredential()
	if !ok || cred.Password != existing.Password {
		t.Errorf("credential rotated: %+v", cred)
	}
}

func TestGenerateCreatesDashboardCredential(t *testing.T) {
	records := testRecords(t)
	if err := records.SetCampaignAuthored(authoredSet()); err != nil {
		t.Fatalf("set authored: %v", err)
	}
	gen := newTestGenerator(t, &stubCreator{}, records)

	if _, err := gen.Generate(context.Background()); err != nil {
		t.Fatalf("generate: %v", err)
	}
	cred, ok := records.DashboardCredential()
	if !ok {
		t.Fatal("no dashboard credential persisted")
	}
	if len(cred.Password) != dashboardCredentialLength {
		t.Errorf("credential length = %d, want %d", len(cred.Password), dashboardCredentialLength)
	}
}

func TestTeamUnlocked(t *testing.T) {
	records := testRecords(t)
	summary := store.BundleSummary{SelfInstrumentID: "doc-1"}

	if TeamUnlocked(records, summary) {
		t.Error("unlocked with nothing completed")
	}
	if err := records.MarkSelfCompleted("doc-1"); err != nil {
		t.Fatalf("mark completed: %v", err)
	}
	if !TeamUnlocked(records, summary) {
		t.Error("locked after scoped completion")
	}
}

func TestTeamUnlockedNotInheritedAcrossRegeneration(t *testing.T) {
	records := testRecords(t)
	if err := records.SetCampaignAuthored(authoredSet()); err != nil {
		t.Fatalf("set authored: %v", err)
	}
	gen := newTestGenerator(t, &stubCreator{}, records)

	first, err := gen.Generate(context.Background())
	if err != nil {
		t.Fatalf("generate first bundle: %v", err)
	}
	if err := records.MarkSelfCompleted(first.SelfInstrumentID); err != nil {
		t.Fatalf("mark completed: %v", err)
	}

	second, err := gen.Generate(context.Background())
	if err != nil {
		t.Fatalf("generate second bundle: %v", err)
	}

	if !TeamUnlocked(records, first) {
		t.Error("first bundle locked despite its self instrument completing")
	}
	if TeamUnlocked(records, second) {
		t.Error("team instrument unlocked although its linked self instrument was never completed")
	}
}
