package entities

import (
	"fmt"
	"strings"
)

// PackageReference identifies a published package as name/version@user/channel
type PackageReference struct {
	Name    string `json:"name" yaml:"name" toml:"name"`
	Version string `json:"version" yaml:"version" toml:"version"`
	User    string `json:"user" yaml:"user" toml:"user"`
	Channel string `json:"channel" yaml:"channel" toml:"channel"`
}

func (r PackageReference) String() string {
	if r.User == "" && r.Channel == "" {
		return fmt.Sprintf("%s/%s", r.Name, r.Version)
	}
	return fmt.Sprintf("%s/%s@%s/%s", r.Name, r.Version, r.User, r.Channel)
}

// ArchiveName returns the file name a package archive is published under
func (r PackageReference) ArchiveName(platform string) string {
	return fmt.Sprintf("%s-%s-%s.tar.gz", r.Name, strings.TrimPrefix(r.Version, "v"), strings.ToLower(platform))
}
