package locator

import (
	"sort"
	"strings"
)

// Candidate is one entry of a resolution-preference descriptor.
type Candidate struct {
	URL   string
	Width int
}

// ParseCandidates splits a srcset-style descriptor into candidates. The
// width is the leading integer of the second token ("300w" → 300,
// "2x" → 2); anything unparsable counts as 0. Entries without a URL are
// dropped.
func ParseCandidates(descriptor string) []Candidate {
	var out []Candidate
	for _, entry := range strings.Split(descriptor, ",") {
		fields := strings.Fields(entry)
		if len(fields) == 0 || fields[0] == "" {
			continue
		}
		c := Candidate{URL: fields[0]}
		if len(fields) > 1 {
			c.Width = leadingDigits(fields[1])
		}
		out = append(out, c)
	}
	return out
}

// SelectBestCandidate returns the URL with the largest declared width.
// Ties go to the earliest entry.
func SelectBestCandidate(descriptor string) (string, bool) {
	if strings.TrimSpace(descriptor) == "" {
		return "", false
	}
	cands := ParseCandidates(descriptor)
	if len(cands) == 0 {
		return "", false
	}
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].Width > cands[j].Width
	})
	return cands[0].URL, true
}

func leadingDigits(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		if n > (1<<31)/10 {
			return n
		}
		n = n*10 + int(r-'0')
	}
	return n
}
