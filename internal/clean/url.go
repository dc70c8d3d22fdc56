package clean

import (
	"net/url"
	"sort"
	"strings"
)

// URL trims a link and drops fragments and tracking parameters so the same
// profile or posting always maps to the same dedup key.
func URL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for k := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "utm_") ||
			lk == "gclid" || lk == "fbclid" || lk == "msclkid" ||
			lk == "mc_cid" || lk == "mc_eid" ||
			lk == "mkt_tok" || lk == "trk" {
			q.Del(k)
		}
	}

	// linkedin profile and company pages carry nothing useful in the query
	if strings.HasSuffix(u.Host, "linkedin.com") {
		q = url.Values{}
	}

	for k := range q {
		vals := q[k]
		sort.Strings(vals)
		q[k] = vals
	}
	u.RawQuery = q.Encode()
	return u.String()
}
