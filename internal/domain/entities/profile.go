package entities

// Profile holds caller-selected settings and option values before validation
type Profile struct {
	OS      string
	Options map[string]string
}
