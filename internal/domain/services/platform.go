package services

import (
	"runtime"
	"strings"

	"github.com/ochairo/tinsrecipe/internal/domain/entities"
)

var knownPlatforms = map[string]entities.Platform{
	"windows":      {OS: "Windows", Family: entities.FamilyWindows},
	"win32":        {OS: "Windows", Family: entities.FamilyWindows},
	"windowsstore": {OS: "WindowsStore", Family: entities.FamilyWindows},
	"windowsce":    {OS: "WindowsCE", Family: entities.FamilyWindows},
	"linux":        {OS: "Linux", Family: entities.FamilyPOSIX},
	"macos":        {OS: "Macos", Family: entities.FamilyPOSIX},
	"darwin":       {OS: "Macos", Family: entities.FamilyPOSIX},
	"ios":          {OS: "iOS", Family: entities.FamilyPOSIX},
	"android":      {OS: "Android", Family: entities.FamilyPOSIX},
	"freebsd":      {OS: "FreeBSD", Family: entities.FamilyPOSIX},
	"openbsd":      {OS: "OpenBSD", Family: entities.FamilyPOSIX},
	"netbsd":       {OS: "NetBSD", Family: entities.FamilyPOSIX},
	"sunos":        {OS: "SunOS", Family: entities.FamilyPOSIX},
	"solaris":      {OS: "SunOS", Family: entities.FamilyPOSIX},
	"aix":          {OS: "AIX", Family: entities.FamilyPOSIX},
}

// ParsePlatform classifies an OS name. Names that cannot be classified as
// Windows or POSIX are rejected rather than guessed.
func ParsePlatform(name string) (entities.Platform, error) {
	p, ok := knownPlatforms[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return entities.Platform{}, &entities.UnknownPlatformError{Name: name}
	}
	return p, nil
}

// HostPlatform returns the platform the process runs on
func HostPlatform() (entities.Platform, error) {
	return ParsePlatform(runtime.GOOS)
}
