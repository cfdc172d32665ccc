package jwtx

import (
	"sort"
	"time"
)

// SelectRefreshToken picks the best token out of several raw candidates that
// are believed to carry the same logical credential, e.g. duplicate
// same-named cookies returned by a hosted sign-in page.
//
// Candidates that fail to decode are discarded. Survivors are ranked with
// unexpired tokens first and, within each group, newest issued-at first;
// stable sorting keeps the original order for full ties. Only after ranking
// is the list filtered down to the expected project, so a fresher candidate
// with the wrong issuer is reported as ErrIssuerMismatch instead of silently
// falling back to a stale matching one.
func SelectRefreshToken(candidates []string, projectID string, now time.Time) (*Token, error) {
	tokens := make([]*Token, 0, len(candidates))
	for _, raw := range candidates {
		if token, err := Parse(raw); err == nil {
			tokens = append(tokens, token)
		}
	}
	if len(tokens) == 0 {
		return nil, ErrNoCandidates
	}

	sort.SliceStable(tokens, func(i, j int) bool {
		expiredI, expiredJ := tokens[i].expiredAt(now), tokens[j].expiredAt(now)
		if expiredI != expiredJ {
			return !expiredI
		}
		return tokens[i].issuedAt.After(tokens[j].issuedAt)
	})

	for _, token := range tokens {
		if token.ProjectID() == projectID {
			return token, nil
		}
	}
	return nil, ErrIssuerMismatch
}
