package util

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// IDKind distinguishes the two public video id schemes.
type IDKind string

const (
	IDKindBV IDKind = "bvid"
	IDKindAV IDKind = "aid"
)

var (
	bvidRe = regexp.MustCompile(`(?i)^BV[0-9A-Za-z]{10}$`)
	avidRe = regexp.MustCompile(`(?i)^av([0-9]+)$`)
	pathRe = regexp.MustCompile(`(?i)/video/((?:BV[0-9A-Za-z]{10})|(?:av[0-9]+))`)
)

// ParseVideoID accepts a bare BV/av id or a bilibili video URL and returns
// the id in canonical form ("BV..." or "av...") together with its kind.
func ParseVideoID(raw string) (string, IDKind, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", "", fmt.Errorf("empty video id")
	}
	if id, kind, ok := matchID(s); ok {
		return id, kind, nil
	}

	u, err := url.Parse(s)
	if err == nil && (u.Scheme == "" || u.Host == "") {
		if u2, e2 := url.Parse("https://" + s); e2 == nil {
			u = u2
		}
	}
	if err != nil || u == nil || u.Host == "" {
		return "", "", fmt.Errorf("invalid video id or URL %q", raw)
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	switch host {
	case "bilibili.com", "m.bilibili.com":
	case "b23.tv":
		return "", "", fmt.Errorf("short link %q: open it in a browser and pass the full video URL", raw)
	default:
		return "", "", fmt.Errorf("unsupported URL %q: only bilibili.com video links are supported", raw)
	}

	m := pathRe.FindStringSubmatch(u.Path)
	if m == nil {
		if bv := u.Query().Get("bvid"); bv != "" {
			if id, kind, ok := matchID(bv); ok {
				return id, kind, nil
			}
		}
		return "", "", fmt.Errorf("no video id in URL %q", raw)
	}
	id, kind, _ := matchID(m[1])
	return id, kind, nil
}

func matchID(s string) (string, IDKind, bool) {
	if bvidRe.MatchString(s) {
		// The prefix is case-insensitive on input but the body is case-sensitive.
		return "BV" + s[2:], IDKindBV, true
	}
	if m := avidRe.FindStringSubmatch(s); m != nil {
		return "av" + m[1], IDKindAV, true
	}
	return "", "", false
}
