package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainJob = "gkquad/job/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// JobHash computes the content address of a job.
//
// The hash covers integrand, params, bounds, tolerances and max step; it is
// stable across processes and ignores the job's name. Returns an error if a
// field cannot be canonically marshaled (NaN or Inf).
func JobHash(j Job) (string, error) {
	canonical, err := MarshalCanonical(j.Canonical())
	if err != nil {
		return "", fmt.Errorf("JobHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainJob, canonical), nil
}
