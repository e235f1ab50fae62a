package tsw6

import (
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// searchWorkers bounds the parallel fan-out of /list requests.
const searchWorkers = 8

// SearchEndpoints walks the /list tree below root up to maxDepth levels and
// collects the full paths of endpoints whose name matches any keyword
// case-insensitively. progress, when non-nil, is invoked with each node path
// as it is visited.
func (c *Client) SearchEndpoints(root string, keywords []string, maxDepth int, progress func(path string)) ([]string, error) {
	lowered := make([]string, len(keywords))
	for i, kw := range keywords {
		lowered[i] = strings.ToLower(kw)
	}

	type result struct {
		matches []string
		next    []string
	}

	visit := func(path string) result {
		if progress != nil {
			progress(path)
		}
		listing, err := c.ListNodes(path)
		if err != nil {
			// a single unlistable node does not abort the whole search
			logrus.Debugf("search: cannot list %q: %s", path, err)
			return result{}
		}
		var res result
		for _, ep := range listing.Endpoints {
			if matchesAny(ep.Name, lowered) {
				res.matches = append(res.matches, joinPath(path, ep.Name))
			}
		}
		for _, n := range listing.Nodes {
			res.next = append(res.next, joinPath(path, n.Name))
		}
		return res
	}

	frontier := []string{root}
	var found []string

	for depth := 0; depth <= maxDepth && len(frontier) > 0; depth++ {
		results := make([]result, len(frontier))
		var wg sync.WaitGroup
		sem := make(chan struct{}, searchWorkers)
		for i, path := range frontier {
			wg.Add(1)
			sem <- struct{}{}
			go func(i int, path string) {
				defer wg.Done()
				defer func() { <-sem }()
				results[i] = visit(path)
			}(i, path)
		}
		wg.Wait()

		var next []string
		for _, r := range results {
			found = append(found, r.matches...)
			next = append(next, r.next...)
		}
		frontier = next
	}

	return found, nil
}

func matchesAny(name string, loweredKeywords []string) bool {
	lower := strings.ToLower(name)
	for _, kw := range loweredKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func joinPath(base, name string) string {
	if base == "" {
		return name
	}
	return base + "/" + name
}
