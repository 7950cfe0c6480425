package campaign

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/google/uuid"
)

// credentialCharset excludes visually ambiguous characters (0/O, 1/I/l) so
// passwords survive being read aloud or retyped from a printout.
const credentialCharset = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"

// Credential lengths. The dashboard credential guards the owner's results
// over a long horizon; instrument passwords are shared with respondents
// and kept shorter.
const (
	dashboardCredentialLength = 10
	instrumentPasswordLength  = 8
)

// randomString draws length characters from the unambiguous charset using
// the provided entropy source.
func randomString(entropy io.Reader, length int) (string, error) {
	out := make([]byte, length)
	max := big.NewInt(int64(len(credentialCharset)))
	for i := range out {
		n, err := rand.Int(entropy, max)
		if err != nil {
			return "", fmt.Errorf("campaign: draw credential character: %w", err)
		}
		out[i] = credentialCharset[n.Int64()]
	}
	return string(out), nil
}

// newBundleID composes a time-based prefix with a random suffix, so ids
// sort chronologically yet never collide within a second.
func newBundleID(now time.Time) string {
	return fmt.Sprintf("%s-%s", now.UTC().Format("20060102T150405"), uuid.New().String()[:8])
}
