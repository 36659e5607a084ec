package export

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/MalithGihan/relgraph-service/pkg/types"
)

var reAlias = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func writePlantUML(w io.Writer, g types.ExportGraph) error {
	_, edges := resolve(g)

	aliasByID := make(map[string]string, len(g.Nodes))
	taken := map[string]bool{}
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "@startuml")
	for _, n := range g.Nodes {
		if _, dup := aliasByID[n.ID]; dup {
			continue
		}
		alias := sanitizeID(n.Label)
		if !reAlias.MatchString(alias) || taken[alias] {
			alias = freeAlias("n_"+sanitizeID(n.ID), taken)
		}
		taken[alias] = true
		aliasByID[n.ID] = alias
		fmt.Fprintf(bw, "component \"%s\" as %s\n", escapeQuotes(n.Label), alias)
	}
	for _, e := range edges {
		fmt.Fprintf(bw, "%s --> %s\n", aliasByID[e.From], aliasByID[e.To])
	}
	fmt.Fprintln(bw, "@enduml")
	return bw.Flush()
}

// freeAlias returns base, or base with the first "_<k>" suffix not yet taken.
func freeAlias(base string, taken map[string]bool) string {
	if !reAlias.MatchString(base) {
		base = "n"
	}
	alias := base
	for k := 2; taken[alias]; k++ {
		alias = base + "_" + strconv.Itoa(k)
	}
	return alias
}

func sanitizeID(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}

func escapeQuotes(s string) string {
	return strings.ReplaceAll(s, `"`, `'`)
}
