package app

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

func printSessionSummary(out io.Writer, s *Session) {
	fmt.Fprintf(out, "\nSession %s\n", s.ID)
	fmt.Fprintf(out, "Articles written: %d/%d\n", len(s.Articles), len(s.Targets))
	for _, line := range s.Report.Lines() {
		fmt.Fprintf(out, "  %s\n", line)
	}

	if len(s.Failures) > 0 {
		fmt.Fprintln(out, "Failures:")
		items := make([]string, 0, len(s.Failures))
		for _, f := range s.Failures {
			items = append(items, f.URL+": "+f.Reason)
		}
		printList(out, items)
	}
	if len(s.Duplicates) > 0 {
		fmt.Fprintln(out, "Duplicates skipped:")
		items := make([]string, 0, len(s.Duplicates))
		for _, t := range s.Duplicates {
			items = append(items, t.URL)
		}
		printList(out, unique(items))
	}
	if s.Interrupted {
		fmt.Fprintln(out, "Interrupted: the summary covers the targets processed so far.")
	}
	fmt.Fprintf(out, "Output: %s\n", s.Dir)
}

func printList(out io.Writer, items []string) {
	if len(items) == 0 {
		fmt.Fprintln(out, "  (none)")
		return
	}
	for _, item := range items {
		fmt.Fprintf(out, "  - %s\n", item)
	}
}

func unique(list []string) []string {
	set := map[string]struct{}{}
	out := []string{}
	for _, v := range list {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := set[v]; ok {
			continue
		}
		set[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
