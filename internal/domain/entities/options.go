package entities

// OptionName identifies a recipe option flag
type OptionName string

// Recognized recipe options
const (
	OptionShared                    OptionName = "shared"
	OptionEnablePcap                OptionName = "enable_pcap"
	OptionEnableCXX11               OptionName = "enable_cxx11"
	OptionEnableDot11               OptionName = "enable_dot11"
	OptionEnableWPA2                OptionName = "enable_wpa2"
	OptionEnableTCPIP               OptionName = "enable_tcpip"
	OptionEnableAckTracker          OptionName = "enable_ack_tracker"
	OptionEnableTCPStreamCustomData OptionName = "enable_tcp_stream_custom_data"
)

// OptionNames lists every recognized option in declaration order
var OptionNames = []OptionName{
	OptionShared,
	OptionEnablePcap,
	OptionEnableCXX11,
	OptionEnableDot11,
	OptionEnableWPA2,
	OptionEnableTCPIP,
	OptionEnableAckTracker,
	OptionEnableTCPStreamCustomData,
}

// IsKnownOption reports whether name is a recognized option
func IsKnownOption(name string) bool {
	for _, n := range OptionNames {
		if string(n) == name {
			return true
		}
	}
	return false
}

// OptionSet holds the value of every recognized option.
// The zero value has every option disabled; use DefaultOptionSet for
// the recipe defaults.
type OptionSet struct {
	Shared                    bool `json:"shared" yaml:"shared" toml:"shared"`
	EnablePcap                bool `json:"enable_pcap" yaml:"enable_pcap" toml:"enable_pcap"`
	EnableCXX11               bool `json:"enable_cxx11" yaml:"enable_cxx11" toml:"enable_cxx11"`
	EnableDot11               bool `json:"enable_dot11" yaml:"enable_dot11" toml:"enable_dot11"`
	EnableWPA2                bool `json:"enable_wpa2" yaml:"enable_wpa2" toml:"enable_wpa2"`
	EnableTCPIP               bool `json:"enable_tcpip" yaml:"enable_tcpip" toml:"enable_tcpip"`
	EnableAckTracker          bool `json:"enable_ack_tracker" yaml:"enable_ack_tracker" toml:"enable_ack_tracker"`
	EnableTCPStreamCustomData bool `json:"enable_tcp_stream_custom_data" yaml:"enable_tcp_stream_custom_data" toml:"enable_tcp_stream_custom_data"`
}

// DefaultOptionSet returns an OptionSet with every option enabled
func DefaultOptionSet() OptionSet {
	return OptionSet{
		Shared:                    true,
		EnablePcap:                true,
		EnableCXX11:               true,
		EnableDot11:               true,
		EnableWPA2:                true,
		EnableTCPIP:               true,
		EnableAckTracker:          true,
		EnableTCPStreamCustomData: true,
	}
}

// Get returns the value of the named option
func (o OptionSet) Get(name OptionName) (bool, bool) {
	if p := o.field(name); p != nil {
		return *p, true
	}
	return false, false
}

// With returns a copy of the set with the named option changed.
// Unknown names leave the set untouched.
func (o OptionSet) With(name OptionName, value bool) OptionSet {
	if p := o.field(name); p != nil {
		*p = value
	}
	return o
}

// Values returns the options as a name to value map
func (o OptionSet) Values() map[OptionName]bool {
	values := make(map[OptionName]bool, len(OptionNames))
	for _, name := range OptionNames {
		values[name], _ = o.Get(name)
	}
	return values
}

func (o *OptionSet) field(name OptionName) *bool {
	switch name {
	case OptionShared:
		return &o.Shared
	case OptionEnablePcap:
		return &o.EnablePcap
	case OptionEnableCXX11:
		return &o.EnableCXX11
	case OptionEnableDot11:
		return &o.EnableDot11
	case OptionEnableWPA2:
		return &o.EnableWPA2
	case OptionEnableTCPIP:
		return &o.EnableTCPIP
	case OptionEnableAckTracker:
		return &o.EnableAckTracker
	case OptionEnableTCPStreamCustomData:
		return &o.EnableTCPStreamCustomData
	default:
		return nil
	}
}
