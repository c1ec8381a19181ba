package wire

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/netdoc/netdoc/pkg/protoerr"
)

// Endpoint is a storage node's address as handed to a client for
// content I/O.
type Endpoint struct {
	Host string
	Port int
}

func (e Endpoint) String() string {
	return fmt.Sprintf("%s:%d", e.Host, e.Port)
}

// RedirectPayload is the ASCII endpoint-redirect format from spec.md §6:
//
//	SS:<ip>:<port>[|REPLICA:<ip>:<port>][|SENTENCE:<n>][|CMD:<subcmd>]
type RedirectPayload struct {
	Primary  Endpoint
	Replica  *Endpoint
	Sentence *int
	Cmd      string
}

// Encode renders the redirect payload in wire form.
func (p RedirectPayload) Encode() []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "SS:%s", p.Primary)
	if p.Replica != nil {
		fmt.Fprintf(&b, "|REPLICA:%s", *p.Replica)
	}
	if p.Sentence != nil {
		fmt.Fprintf(&b, "|SENTENCE:%d", *p.Sentence)
	}
	if p.Cmd != "" {
		fmt.Fprintf(&b, "|CMD:%s", p.Cmd)
	}
	return []byte(b.String())
}

// ParseRedirectPayload parses the ASCII format produced by Encode.
func ParseRedirectPayload(payload []byte) (*RedirectPayload, error) {
	parts := strings.Split(string(payload), "|")
	if len(parts) == 0 {
		return nil, protoerr.BadParam("empty redirect payload")
	}

	out := &RedirectPayload{}
	for i, part := range parts {
		switch {
		case i == 0:
			ep, err := parseEndpoint(part, "SS:")
			if err != nil {
				return nil, err
			}
			out.Primary = ep
		case strings.HasPrefix(part, "REPLICA:"):
			ep, err := parseEndpoint(part, "REPLICA:")
			if err != nil {
				return nil, err
			}
			out.Replica = &ep
		case strings.HasPrefix(part, "SENTENCE:"):
			n, err := strconv.Atoi(strings.TrimPrefix(part, "SENTENCE:"))
			if err != nil {
				return nil, protoerr.BadParam("malformed SENTENCE field: " + part)
			}
			out.Sentence = &n
		case strings.HasPrefix(part, "CMD:"):
			out.Cmd = strings.TrimPrefix(part, "CMD:")
		default:
			return nil, protoerr.BadParam("unrecognized redirect field: " + part)
		}
	}
	return out, nil
}

func parseEndpoint(field, prefix string) (Endpoint, error) {
	rest := strings.TrimPrefix(field, prefix)
	host, portStr, ok := strings.Cut(rest, ":")
	if !ok {
		return Endpoint{}, protoerr.BadParam("malformed endpoint field: " + field)
	}
	// The remainder after the last colon may itself contain no further
	// colons for IPv4 addresses; for the loopback/IPv4 addresses this
	// protocol targets that is the common case.
	lastColon := strings.LastIndex(portStr, ":")
	if lastColon >= 0 {
		host = host + ":" + portStr[:lastColon]
		portStr = portStr[lastColon+1:]
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return Endpoint{}, protoerr.BadParam("malformed port in endpoint field: " + field)
	}
	return Endpoint{Host: host, Port: port}, nil
}

// Perm is the ADDACCESS permission bitmask from spec.md §6.
type Perm int

const (
	PermRead      Perm = 1
	PermWrite     Perm = 2
	PermReadWrite Perm = PermRead | PermWrite
)

// Satisfies reports whether the grant (the receiver) is sufficient for
// the required permission, per spec.md §4.1: (permissions & required) == required.
func (p Perm) Satisfies(required Perm) bool {
	return p&required == required
}

// AccessPayload is the "<target_user>|<perms_integer>" format used by
// ADDACCESS (spec.md §6).
type AccessPayload struct {
	TargetUser string
	Perms      Perm
}

func (a AccessPayload) Encode() []byte {
	return []byte(fmt.Sprintf("%s|%d", a.TargetUser, a.Perms))
}

func ParseAccessPayload(payload []byte) (*AccessPayload, error) {
	user, permStr, ok := strings.Cut(string(payload), "|")
	if !ok || user == "" {
		return nil, protoerr.BadParam("malformed access payload: " + string(payload))
	}
	n, err := strconv.Atoi(permStr)
	if err != nil || n < int(PermRead) || n > int(PermReadWrite) {
		return nil, protoerr.BadParam("malformed permission bitmask: " + permStr)
	}
	return &AccessPayload{TargetUser: user, Perms: Perm(n)}, nil
}
