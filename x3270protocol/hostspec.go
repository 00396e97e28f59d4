package x3270protocol

import (
	"strconv"
	"strings"
)

const (
	// invalidHostCharacters may not appear in a host name.
	invalidHostCharacters = "@,[]="

	// invalidAcceptCharacters may not appear in an accept name.
	invalidAcceptCharacters = invalidHostCharacters + ":"

	maxPort = 65535
)

// HostSpecification describes how an emulator should reach a host. Its
// String form is the host argument of the Connect() action:
//
//	[L:][Y:][lu1,lu2@]host[:port][=acceptname]
//
// The zero value is the unset specification and formats as "". Setters
// validate their input and never store a rejected value.
type HostSpecification struct {
	hostName     string
	port         int // 0 means DefaultPort
	tlsTunnel    bool
	skipVerify   bool
	logicalUnits []string
	acceptName   string
}

// NewHostSpecification creates a specification for hostName with default
// settings.
func NewHostSpecification(hostName string) (*HostSpecification, error) {
	h := &HostSpecification{}
	if err := h.SetHostName(hostName); err != nil {
		return nil, err
	}
	return h, nil
}

// HostName returns the host name, or "" if unset.
func (h *HostSpecification) HostName() string {
	return h.hostName
}

// SetHostName sets the host name. Surrounding whitespace is trimmed.
func (h *HostSpecification) SetHostName(hostName string) error {
	if strings.TrimSpace(hostName) == "" {
		return newArgumentError("host name", hostName, "is empty")
	}
	if strings.ContainsAny(hostName, invalidHostCharacters) {
		return newArgumentError("host name", hostName, "contains invalid character(s)")
	}
	h.hostName = strings.TrimSpace(hostName)
	return nil
}

// Port returns the TCP port.
func (h *HostSpecification) Port() int {
	if h.port == 0 {
		return DefaultPort
	}
	return h.port
}

// SetPort sets the TCP port, which must be in [1, 65535].
func (h *HostSpecification) SetPort(port int) error {
	if port < 1 || port > maxPort {
		return newArgumentError("port", strconv.Itoa(port), "must be non-zero and fit in 16 bits")
	}
	h.port = port
	return nil
}

// TLSTunnel reports whether the connection is tunneled through TLS.
func (h *HostSpecification) TLSTunnel() bool {
	return h.tlsTunnel
}

// SetTLSTunnel enables or disables the TLS tunnel.
func (h *HostSpecification) SetTLSTunnel(on bool) {
	h.tlsTunnel = on
}

// ValidateHostCertificate reports whether the host's certificate is
// verified. It defaults to true.
func (h *HostSpecification) ValidateHostCertificate() bool {
	return !h.skipVerify
}

// SetValidateHostCertificate enables or disables certificate validation.
func (h *HostSpecification) SetValidateHostCertificate(on bool) {
	h.skipVerify = !on
}

// LogicalUnits returns a copy of the logical unit names, in order.
func (h *HostSpecification) LogicalUnits() []string {
	if len(h.logicalUnits) == 0 {
		return nil
	}
	return append([]string(nil), h.logicalUnits...)
}

// AddLogicalUnit appends a logical unit name. Names may contain only
// ASCII letters, digits, '_' and '-'.
func (h *HostSpecification) AddLogicalUnit(name string) error {
	if err := validateLogicalUnit(name); err != nil {
		return err
	}
	h.logicalUnits = append(h.logicalUnits, name)
	return nil
}

// SetLogicalUnits replaces the logical unit names. Nothing changes unless
// every name is valid.
func (h *HostSpecification) SetLogicalUnits(names []string) error {
	for _, name := range names {
		if err := validateLogicalUnit(name); err != nil {
			return err
		}
	}
	h.logicalUnits = append([]string(nil), names...)
	return nil
}

// AcceptName returns the name expected in the host's certificate, or "".
func (h *HostSpecification) AcceptName() string {
	return h.acceptName
}

// SetAcceptName sets the name to match against the host's TLS certificate.
func (h *HostSpecification) SetAcceptName(name string) error {
	if strings.TrimSpace(name) == "" {
		return newArgumentError("accept name", name, "is empty")
	}
	if strings.ContainsAny(name, invalidAcceptCharacters) {
		return newArgumentError("accept name", name, "contains invalid character(s)")
	}
	h.acceptName = name
	return nil
}

// ClearAcceptName removes the accept name.
func (h *HostSpecification) ClearAcceptName() {
	h.acceptName = ""
}

// String formats the specification for the Connect() action. Fields are
// always emitted in the same order; defaults are omitted.
func (h *HostSpecification) String() string {
	if h == nil || h.hostName == "" {
		return ""
	}

	var sb strings.Builder
	if h.tlsTunnel {
		sb.WriteString("L:")
	}
	if h.skipVerify {
		sb.WriteString("Y:")
	}
	if len(h.logicalUnits) > 0 {
		sb.WriteString(strings.Join(h.logicalUnits, ","))
		sb.WriteByte('@')
	}
	if strings.Contains(h.hostName, ":") || h.looksLikePrefix() {
		sb.WriteString("[" + h.hostName + "]")
	} else {
		sb.WriteString(h.hostName)
	}
	if h.Port() != DefaultPort {
		sb.WriteString(":" + strconv.Itoa(h.Port()))
	}
	if h.acceptName != "" {
		sb.WriteString("=" + h.acceptName)
	}
	return sb.String()
}

// looksLikePrefix reports whether the host name followed by a port would be
// read back as an L: or Y: prefix.
func (h *HostSpecification) looksLikePrefix() bool {
	return len(h.hostName) == 1 && strings.ContainsAny(h.hostName, "LlYy") && h.Port() != DefaultPort
}

// ParseHostSpecification decodes the String form of a specification.
// An empty string yields the unset specification.
func ParseHostSpecification(s string) (*HostSpecification, error) {
	h := &HostSpecification{}
	rest := strings.TrimSpace(s)
	if rest == "" {
		return h, nil
	}

	// Prefixes. Like the emulator, a one-letter host named L or Y followed
	// by a port is read as a prefix; String brackets such hosts.
prefixes:
	for len(rest) >= 2 && rest[1] == ':' {
		switch rest[0] {
		case 'L', 'l':
			h.tlsTunnel = true
		case 'Y', 'y':
			h.skipVerify = true
		default:
			break prefixes
		}
		rest = rest[2:]
	}

	// Accept name.
	if before, after, found := strings.Cut(rest, "="); found {
		if err := h.SetAcceptName(after); err != nil {
			return nil, err
		}
		rest = before
	}

	// Logical units.
	if before, after, found := strings.Cut(rest, "@"); found {
		if err := h.SetLogicalUnits(strings.Split(before, ",")); err != nil {
			return nil, err
		}
		rest = after
	}

	// Host and port.
	host, port := rest, ""
	if strings.HasPrefix(rest, "[") {
		end := strings.Index(rest, "]")
		if end < 0 {
			return nil, newArgumentError("host specification", s, "missing ']'")
		}
		host = rest[1:end]
		tail := rest[end+1:]
		if tail != "" {
			if !strings.HasPrefix(tail, ":") {
				return nil, newArgumentError("host specification", s, "unexpected text after ']'")
			}
			port = tail[1:]
		}
	} else if i := strings.LastIndex(rest, ":"); i >= 0 {
		host, port = rest[:i], rest[i+1:]
	}

	if err := h.SetHostName(host); err != nil {
		return nil, err
	}
	if port != "" {
		n, err := strconv.Atoi(port)
		if err != nil {
			return nil, newArgumentError("port", port, "is not a number")
		}
		if err := h.SetPort(n); err != nil {
			return nil, err
		}
	}
	return h, nil
}

func validateLogicalUnit(name string) error {
	if strings.TrimSpace(name) == "" {
		return newArgumentError("logical unit name", name, "is empty")
	}
	for _, r := range name {
		if !isLogicalUnitChar(r) {
			return newArgumentError("logical unit name", name, "contains invalid character(s)")
		}
	}
	return nil
}

func isLogicalUnitChar(r rune) bool {
	switch {
	case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return true
	case r == '_', r == '-':
		return true
	default:
		return false
	}
}
