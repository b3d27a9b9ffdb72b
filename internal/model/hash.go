package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for fingerprints. The version suffix leaves room for a
// future change of algorithm.
const (
	DomainMatch = "snooker/match/v1"
	DomainFrame = "snooker/frame/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint returns a stable content hash of a match document.
// Two documents with the same fingerprint are equal field for field.
func Fingerprint(m *Match) (string, error) {
	canonical, err := MarshalCanonical(m)
	if err != nil {
		return "", fmt.Errorf("fingerprint match: %w", err)
	}
	return hashWithDomain(DomainMatch, canonical), nil
}

// FrameFingerprint returns a stable content hash of a single frame.
func FrameFingerprint(f *Frame) (string, error) {
	canonical, err := MarshalCanonical(f)
	if err != nil {
		return "", fmt.Errorf("fingerprint frame: %w", err)
	}
	return hashWithDomain(DomainFrame, canonical), nil
}
