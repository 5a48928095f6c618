package services

import (
	"strings"

	"github.com/ochairo/tinsrecipe/internal/domain/entities"
)

// ParseReference parses name/version@user/channel. The @user/channel part
// is optional.
func ParseReference(ref string) (entities.PackageReference, error) {
	invalid := func(reason string) (entities.PackageReference, error) {
		return entities.PackageReference{}, &entities.InvalidReferenceError{Reference: ref, Reason: reason}
	}

	nameVersion, origin, hasOrigin := strings.Cut(ref, "@")
	name, version, ok := strings.Cut(nameVersion, "/")
	if !ok || name == "" || version == "" || strings.Contains(version, "/") {
		return invalid("expected name/version")
	}

	result := entities.PackageReference{Name: name, Version: version}
	if !hasOrigin {
		return result, nil
	}

	user, channel, ok := strings.Cut(origin, "/")
	if !ok || user == "" || channel == "" || strings.Contains(channel, "/") {
		return invalid("expected @user/channel")
	}
	result.User = user
	result.Channel = channel

	return result, nil
}
