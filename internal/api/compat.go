package api

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// ProtocolVersion is the backend API version this client speaks.
const ProtocolVersion = "v1.0.0"

// IncompatibleError indicates the backend speaks a different major version.
type IncompatibleError struct {
	Client string
	Server string
}

func (e *IncompatibleError) Error() string {
	return fmt.Sprintf("backend version %s is not compatible with client version %s", e.Server, e.Client)
}

// canonical adds the "v" prefix semver expects and rejects garbage.
func canonical(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", fmt.Errorf("empty version")
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return "", fmt.Errorf("invalid semantic version %q", v)
	}
	return v, nil
}

// CheckCompatible reports whether a backend at serverVersion can serve a
// client at clientVersion. Major versions must match; during v0 the minor
// version must match too.
func CheckCompatible(clientVersion, serverVersion string) error {
	cv, err := canonical(clientVersion)
	if err != nil {
		return fmt.Errorf("client version: %w", err)
	}
	sv, err := canonical(serverVersion)
	if err != nil {
		return fmt.Errorf("server version: %w", err)
	}

	if semver.Major(cv) != semver.Major(sv) {
		return &IncompatibleError{Client: cv, Server: sv}
	}
	if semver.Major(cv) == "v0" && semver.MajorMinor(cv) != semver.MajorMinor(sv) {
		return &IncompatibleError{Client: cv, Server: sv}
	}
	return nil
}

// Handshake checks the backend health and version compatibility.
func (c *Client) Handshake(ctx context.Context) (*HealthInfo, error) {
	h, err := c.Health(ctx)
	if err != nil {
		return nil, err
	}
	if err := CheckCompatible(ProtocolVersion, h.Version); err != nil {
		return h, err
	}
	return h, nil
}
