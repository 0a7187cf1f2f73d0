package rod

import (
	"encoding/json"
	"strings"

	"github.com/fwojciec/docscout"
	"github.com/go-rod/rod/lib/proto"
)

// storageState is the Playwright storage state file layout. Only cookies are
// applied; origin local storage is ignored.
type storageState struct {
	Cookies []storageCookie `json:"cookies"`
}

type storageCookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite"`
}

// ParseStorageState decodes a Playwright-style storage state blob into
// cookie parameters. Cookies without a name or domain are dropped; an
// expiry of -1 or less marks a session cookie.
func ParseStorageState(blob []byte) ([]*proto.NetworkCookieParam, error) {
	var state storageState
	if err := json.Unmarshal(blob, &state); err != nil {
		return nil, docscout.Errorf(docscout.EINVALID, "invalid storage state: %v", err)
	}

	params := make([]*proto.NetworkCookieParam, 0, len(state.Cookies))
	for _, c := range state.Cookies {
		if c.Name == "" || c.Domain == "" {
			continue
		}
		param := &proto.NetworkCookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: sameSite(c.SameSite),
		}
		if param.Path == "" {
			param.Path = "/"
		}
		if c.Expires > 0 {
			param.Expires = proto.TimeSinceEpoch(c.Expires)
		}
		params = append(params, param)
	}
	return params, nil
}

func sameSite(s string) proto.NetworkCookieSameSite {
	switch strings.ToLower(s) {
	case "strict":
		return proto.NetworkCookieSameSiteStrict
	case "lax":
		return proto.NetworkCookieSameSiteLax
	case "none":
		return proto.NetworkCookieSameSiteNone
	}
	return ""
}
