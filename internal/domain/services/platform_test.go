package services

import (
	"errors"
	"testing"

	"github.com/ochairo/tinsrecipe/internal/domain/entities"
)

func TestParsePlatform(t *testing.T) {
	tests := []struct {
		name   string
		os     string
		family entities.OSFamily
	}{
		{"Windows", "Windows", entities.FamilyWindows},
		{"windows", "Windows", entities.FamilyWindows},
		{"WindowsStore", "WindowsStore", entities.FamilyWindows},
		{"Linux", "Linux", entities.FamilyPOSIX},
		{"darwin", "Macos", entities.FamilyPOSIX},
		{" Macos ", "Macos", entities.FamilyPOSIX},
		{"FreeBSD", "FreeBSD", entities.FamilyPOSIX},
		{"Android", "Android", entities.FamilyPOSIX},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePlatform(tt.name)
			if err != nil {
				t.Fatalf("ParsePlatform() error = %v", err)
			}
			if p.OS != tt.os || p.Family != tt.family {
				t.Errorf("ParsePlatform(%q) = %+v, want %s/%s", tt.name, p, tt.os, tt.family)
			}
		})
	}
}

func TestParsePlatform_Unknown(t *testing.T) {
	for _, name := range []string{"", "Plan9", "Arduino"} {
		_, err := ParsePlatform(name)
		if !errors.Is(err, entities.ErrUnknownPlatform) {
			t.Errorf("ParsePlatform(%q) error = %v, want ErrUnknownPlatform", name, err)
		}
	}
}

func TestHostPlatform(t *testing.T) {
	p, err := HostPlatform()
	if err != nil {
		t.Skipf("host OS not classified: %v", err)
	}
	if p.Family == entities.FamilyUnknown {
		t.Error("HostPlatform() returned unknown family without error")
	}
}
