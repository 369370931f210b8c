// Package grandfathered loads the allow-list of emails with permanent
// premium status, granted outside the payment flow (legacy donors).
package grandfathered

import (
	"bufio"
	"os"
	"strings"
)

// Set is a read-only, case-insensitive membership check. It always wins
// over the subscription cache and the payment provider.
type Set struct {
	emails map[string]struct{}
}

// Load reads a newline-delimited email list. Blank lines and lines starting
// with '#' are skipped; matching is case-insensitive. An empty path yields
// an empty set.
func Load(path string) (*Set, error) {
	s := &Set{emails: make(map[string]struct{})}
	if path == "" {
		return s, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		s.emails[strings.ToLower(line)] = struct{}{}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return s, nil
}

// Contains reports whether email is grandfathered.
func (s *Set) Contains(email string) bool {
	_, ok := s.emails[strings.ToLower(strings.TrimSpace(email))]
	return ok
}

// Len returns the number of loaded entries.
func (s *Set) Len() int { return len(s.emails) }
