// Package urlarg parses DeviantArt URLs pasted as command arguments.
// Users can copy a profile or deviation link from the browser and use it
// wherever a username or deviation ID is expected.
package urlarg

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	// Profile pages: https://www.deviantart.com/<username> plus
	// optional /gallery, /favourites and similar tabs.
	reProfilePath = regexp.MustCompile(`^/([a-zA-Z0-9][a-zA-Z0-9-]*)(/.*)?$`)

	// Deviation pages embed a UUID in view links:
	// https://www.deviantart.com/view/<uuid>
	reUUID = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

	// Reserved top-level paths that are not usernames.
	reservedPaths = map[string]bool{
		"about":      true,
		"art":        true,
		"core":       true,
		"developers": true,
		"join":       true,
		"search":     true,
		"settings":   true,
		"shop":       true,
		"tag":        true,
		"users":      true,
		"view":       true,
		"watch":      true,
	}
)

// IsURL reports whether the input looks like a DeviantArt URL.
func IsURL(input string) bool {
	u, err := url.Parse(input)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	return host == "deviantart.com" || strings.HasSuffix(host, ".deviantart.com")
}

// ExtractUsername resolves an argument to a username. Accepts a bare
// username, an @handle, a profile URL, or an artist subdomain URL
// (https://<username>.deviantart.com). Returns the argument unchanged
// when nothing matches.
func ExtractUsername(arg string) string {
	if strings.HasPrefix(arg, "@") {
		return strings.TrimPrefix(arg, "@")
	}
	if !IsURL(arg) {
		return arg
	}

	u, err := url.Parse(arg)
	if err != nil {
		return arg
	}

	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	if sub, ok := strings.CutSuffix(host, ".deviantart.com"); ok && sub != "" {
		return sub
	}

	if m := reProfilePath.FindStringSubmatch(u.Path); m != nil && !reservedPaths[strings.ToLower(m[1])] {
		return m[1]
	}
	return arg
}

// ExtractDeviationID resolves an argument to a deviation UUID. Accepts a
// bare UUID or a view URL carrying one. Page URLs of the
// /<artist>/art/<title>-<number> form carry no UUID; those come back
// unchanged and fail API-side with a clear error.
func ExtractDeviationID(arg string) string {
	if reUUID.MatchString(arg) {
		return arg
	}
	if !IsURL(arg) {
		return arg
	}

	u, err := url.Parse(arg)
	if err != nil {
		return arg
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) == 2 && strings.EqualFold(parts[0], "view") && reUUID.MatchString(parts[1]) {
		return parts[1]
	}
	return arg
}

// ExtractUsernames resolves multiple arguments to usernames.
func ExtractUsernames(args []string) []string {
	out := make([]string, len(args))
	for i, arg := range args {
		out[i] = ExtractUsername(arg)
	}
	return out
}
