package entities

// OSFamily classifies target operating systems for dependency selection
type OSFamily int

// Known OS families. FamilyUnknown is the zero value and is never resolvable.
const (
	FamilyUnknown OSFamily = iota
	FamilyWindows
	FamilyPOSIX
)

func (f OSFamily) String() string {
	switch f {
	case FamilyWindows:
		return "windows"
	case FamilyPOSIX:
		return "posix"
	default:
		return "unknown"
	}
}

// Platform describes the target of a resolution
type Platform struct {
	OS     string // Canonical OS name, e.g. "Windows", "Linux", "Macos"
	Family OSFamily
}

// IsWindows reports whether the platform belongs to the Windows family
func (p Platform) IsWindows() bool {
	return p.Family == FamilyWindows
}

// SharedLibraryExtension returns the dynamic library suffix used on the platform
func (p Platform) SharedLibraryExtension() string {
	switch {
	case p.IsWindows():
		return ".dll"
	case p.OS == "Macos" || p.OS == "iOS":
		return ".dylib"
	default:
		return ".so"
	}
}

func (p Platform) String() string {
	if p.OS == "" {
		return p.Family.String()
	}
	return p.OS
}
