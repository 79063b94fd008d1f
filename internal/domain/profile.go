package domain

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// Well-known profile paths, in gjson syntax.
const (
	PathName            = "name"
	PathEmail           = "email"
	PathRole            = "role"
	PathLeadershipLevel = "leadership_level"
	PathBioLeadership   = "cached_bio.leadership_level"
	PathBioGender       = "cached_bio.gender"
	PathBioPhoneContact = "cached_bio.phone_contact"
	PathBioPassport     = "cached_bio.passport"
	PathBioSignature    = "cached_bio.signature"
)

// Profile is an arbitrary user record as issued by the central system.
type Profile map[string]any

// String returns the value at path as a string, or "" when absent. Callers
// reading several paths should take a Lookup once instead.
func (p Profile) String(path string) string {
	return p.Lookup().String(path)
}

// Lookup serializes the profile once for repeated path reads.
func (p Profile) Lookup() Lookup {
	if len(p) == 0 {
		return Lookup{}
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return Lookup{}
	}
	return Lookup{raw: raw}
}

// LeadershipLevel prefers the top-level field and falls back to the cached bio.
func (p Profile) LeadershipLevel() string {
	return p.Lookup().LeadershipLevel()
}

func (p Profile) Role() string { return p.String(PathRole) }

// Lookup is a profile's JSON form. The zero value reads "" for every path.
type Lookup struct {
	raw []byte
}

func (l Lookup) String(path string) string {
	if len(l.raw) == 0 {
		return ""
	}
	return gjson.GetBytes(l.raw, path).String()
}

func (l Lookup) LeadershipLevel() string {
	if lvl := l.String(PathLeadershipLevel); lvl != "" {
		return lvl
	}
	return l.String(PathBioLeadership)
}
