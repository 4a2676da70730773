package auth

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Provider names an external identity service.
type Provider string

const (
	Google Provider = "google"
	Kakao  Provider = "kakao"
	Naver  Provider = "naver"
)

// Providers lists every supported provider in a stable order.
var Providers = []Provider{Google, Kakao, Naver}

// ParseProvider accepts a provider name in any case.
func ParseProvider(name string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(name)))
	switch p {
	case Google, Kakao, Naver:
		return p, nil
	}
	return "", fmt.Errorf("unknown oauth provider: %s", name)
}

func (p Provider) String() string { return string(p) }

// Identity represents a normalized external authentication identity
// returned by an OAuth provider. It is produced per login and never persisted
// here.
type Identity struct {
	Provider    Provider
	ExternalID  string // provider-scoped user identifier
	Email       string // optional
	DisplayName string // optional
}

// UserID is the public identifier returned to clients, e.g. "kakao_12345".
func (i *Identity) UserID() string {
	return i.Provider.String() + "_" + i.ExternalID
}

// Subject is the numeric internal subject carried in session tokens.
type Subject int64

// SubjectFor derives the internal subject for an external id. Numeric ids
// are used as-is; anything else is reduced with a 64-bit hash, so distinct
// non-numeric ids may collide.
func SubjectFor(externalID string) Subject {
	if n, err := strconv.ParseInt(externalID, 10, 64); err == nil {
		return Subject(n)
	}
	return Subject(xxhash.Sum64String(externalID) & (1<<63 - 1))
}

func (s Subject) String() string {
	return strconv.FormatInt(int64(s), 10)
}
