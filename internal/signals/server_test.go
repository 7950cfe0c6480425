package signals

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/kingrea/lodestar/internal/config"
)

func TestSettingsFromConfigHonorsEnv(t *testing.T) {
	t.Setenv("LODESTAR_SIGNALS_PORT", "9001")
	t.Setenv("LODESTAR_SIGNALS_HOST", "0.0.0.0")
	t.Setenv("LODESTAR_SIGNALS_ENABLED", "false")
	cfg := &config.Config{}
	settings := SettingsFromConfig(cfg)
	if settings.Port != 9001 {
		t.Fatalf("expected port 9001, got %d", settings.Port)
	}
	if settings.Host != "0.0.0.0" {
		t.Fatalf("expected host override, got %s", settings.Host)
	}
	if settings.Enabled {
		t.Fatalf("expected enabled=false from env override")
	}
}

func TestSignalValidate(t *testing.T) {
	sig := Signal{
		Version:      SignalSchemaVersion,
		SignalID:     "sig-1",
		Type:         TypeSelfCompleted,
		InstrumentID: "doc-1",
	}
	if err := sig.Validate(); err != nil {
		t.Fatalf("expected valid signal, got %v", err)
	}
	sig.InstrumentID = ""
	if err := sig.Validate(); err == nil {
		t.Fatal("expected instrument_id error")
	}
	sig = Signal{Version: SignalSchemaVersion, SignalID: "sig-2", Type: "unknown-type"}
	if err := sig.Validate(); err == nil {
		t.Fatal("expected type error")
	}
	sig = Signal{Version: 99, SignalID: "sig-3", Type: TypeTeamCompleted, InstrumentID: "doc-2"}
	if err := sig.Validate(); err == nil {
		t.Fatal("expected version error")
	}
}

func testSettings() Settings {
	return Settings{
		Enabled:      true,
		Host:         "127.0.0.1",
		Port:         0,
		MaxBodyBytes: 1024,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		IdleTimeout:  time.Second,
	}
}

func TestServerAcceptsSignals(t *testing.T) {
	t.Parallel()
	fixed := time.Unix(1770000000, 0).UTC()
	recorded := make(chan Signal, 1)
	srv := NewServer(testSettings(),
		WithClock(func() time.Time { return fixed }),
		WithProcessor(ProcessorFunc(func(s Signal) error {
			recorded <- s
			return nil
		})))
	t.Cleanup(func() {
		_ = srv.Shutdown(context.Background())
	})
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("start server: %v", err)
	}
	base := srv.BaseURL()
	resp, err := http.Get(base + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 health, got %d", resp.StatusCode)
	}
	payload := Signal{
		Version:      SignalSchemaVersion,
		SignalID:     "sig-1",
		Type:         TypeSelfCompleted,
		InstrumentID: "doc-1",
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal signal: %v", err)
	}
	resp, err = http.Post(base+"/signals", "application/json", bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("post signal: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", resp.StatusCode)
	}
	select {
	case sig := <-recorded:
		if !sig.ServerTime.Equal(fixed) {
			t.Fatalf("expected server time %s, got %s", fixed, sig.ServerTime)
		}
	default:
		t.Fatal("signal not forwarded to processor")
	}
}

func TestServerEnforcesPayloadLimit(t *testing.T) {
	t.Parallel()
	settings := testSettings()
	settings.MaxBodyBytes = 64
	srv := NewServer(settings)
	t.Cleanup(func() {
		_ = srv.Shutdown(context.Background())
	})
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("start server: %v", err)
	}
	tooLarge := bytes.Repeat([]byte("a"), 512)
	payload := map[string]any{
		"version":   SignalSchemaVersion,
		"signal_id": "sig",
		"type":      TypeIntake,
		"payload":   string(tooLarge),
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(srv.BaseURL()+"/signals", "application/json", bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", resp.StatusCode)
	}
}

func TestServerDisabled(t *testing.T) {
	settings := testSettings()
	settings.Enabled = false
	srv := NewServer(settings)
	if err := srv.Start(context.Background()); err != ErrDisabled {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}
}
