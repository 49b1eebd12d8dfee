package deadlink

import (
	"fmt"
	"sort"

	"github.com/nikbrunner/bmtidy/internal/urlnorm"
)

// InvalidURLs is the group name for results whose URL has no host.
const InvalidURLs = "Invalid URLs"

// Grouping selects what results are grouped under.
type Grouping int

const (
	// ByHost groups by full hostname: www.example.com and docs.example.com
	// stay apart.
	ByHost Grouping = iota
	// ByDomain groups by registrable domain (eTLD+1): both of the above
	// land under example.com.
	ByDomain
)

func (g Grouping) String() string {
	switch g {
	case ByHost:
		return "host"
	case ByDomain:
		return "domain"
	}
	return "unknown"
}

// ParseGrouping accepts "host" or "domain".
func ParseGrouping(s string) (Grouping, error) {
	switch s {
	case "host", "":
		return ByHost, nil
	case "domain":
		return ByDomain, nil
	}
	return ByHost, fmt.Errorf("unknown grouping %q (want host or domain)", s)
}

// ResultGroup holds the dead links sharing a host or domain.
type ResultGroup struct {
	Name    string
	Results []Result
}

// GroupResults groups results by the chosen key, largest group first, ties
// by name. Results keep their order within a group.
func GroupResults(results []Result, by Grouping) []ResultGroup {
	index := map[string]int{}
	var groups []ResultGroup

	for _, r := range results {
		name := groupName(r.Bookmark.URL, by)
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, ResultGroup{Name: name})
		}
		groups[i].Results = append(groups[i].Results, r)
	}

	sort.SliceStable(groups, func(a, b int) bool {
		if len(groups[a].Results) != len(groups[b].Results) {
			return len(groups[a].Results) > len(groups[b].Results)
		}
		return groups[a].Name < groups[b].Name
	})
	return groups
}

func groupName(raw string, by Grouping) string {
	var name string
	if by == ByDomain {
		name = urlnorm.Domain(raw)
	} else {
		name = urlnorm.Host(raw)
	}
	if name == "" {
		return InvalidURLs
	}
	return name
}

// GroupByHost groups results by hostname.
func GroupByHost(results []Result) []ResultGroup {
	return GroupResults(results, ByHost)
}

// GroupByDomain groups results by registrable domain.
func GroupByDomain(results []Result) []ResultGroup {
	return GroupResults(results, ByDomain)
}

// IDs returns the bookmark IDs of results in order.
func IDs(results []Result) []string {
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.Bookmark.ID
	}
	return ids
}
