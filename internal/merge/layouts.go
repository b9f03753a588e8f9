package merge

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lehigh-university-libraries/clippings/internal/master"
)

// Layout describes where one source spreadsheet keeps each canonical column.
type Layout struct {
	// Collection is written into the collection column of every row
	Collection string
	// Cells holds the source cell index for each canonical column from
	// filename through publisher location, in order.
	Cells [master.ColSubjects - master.ColFilename]int
	// Subjects builds the subjects value from the source row
	Subjects func(src master.Row) string
}

// contiguous covers sheets that keep filename..publisher location in cells
// 1-8 and 10-16, skipping the "placement in source" column.
var contiguous = [15]int{1, 2, 3, 4, 5, 6, 7, 8, 10, 11, 12, 13, 14, 15, 16}

// withPart covers sheets that have an extra "part" column after the issue.
var withPart = [15]int{1, 2, 3, 4, 5, 6, 7, 8, 10, 11, 12, 14, 15, 16, 17}

func cell(i int) func(master.Row) string {
	return func(src master.Row) string {
		return src.Field(i)
	}
}

// Layouts lists the known source spreadsheets by collection code.
var Layouts = map[string]Layout{
	"britishj": {
		Collection: "britishj",
		Cells:      withPart,
		Subjects:   cell(19),
	},
	"british": {
		Collection: "british",
		Cells:      contiguous,
		Subjects:   britishSubjects,
	},
	"irish-drama": {
		Collection: "irish-drama",
		Cells:      contiguous,
		Subjects:   cell(18),
	},
	"conrad": {
		Collection: "conrad",
		Cells:      contiguous,
		Subjects:   conradSubjects,
	},
	"russian": {
		Collection: "russian",
		Cells:      withPart,
		Subjects:   cell(19),
	},
}

// LayoutNames returns the known collection codes in sorted order.
func LayoutNames() []string {
	names := make([]string, 0, len(Layouts))
	for name := range Layouts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupLayout returns the layout for a collection code.
func LookupLayout(name string) (Layout, error) {
	layout, ok := Layouts[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Layout{}, fmt.Errorf("unknown layout %q (known: %s)", name, strings.Join(LayoutNames(), ", "))
	}
	return layout, nil
}

// "Authors principally at issue" plus "secondary authors at issue", only when
// both are filled in.
func britishSubjects(src master.Row) string {
	primary := src.Field(32)
	if secondary := src.Field(33); primary != "" && secondary != "" {
		return primary + master.SubjectSeparator + secondary
	}
	return primary
}

// The secondary authors cell may hold several comma separated names.
func conradSubjects(src master.Row) string {
	var subjects []string
	if primary := src.Field(21); primary != "" {
		subjects = append(subjects, primary)
	}
	if secondary := src.Field(22); secondary != "" {
		for _, name := range strings.Split(secondary, ",") {
			subjects = append(subjects, strings.TrimSpace(name))
		}
	}
	return strings.Join(subjects, master.SubjectSeparator)
}

// Apply maps one source row onto the canonical columns.
func (l Layout) Apply(src master.Row) master.Row {
	row := master.NewRow()
	row[master.ColCollection] = l.Collection
	for i, idx := range l.Cells {
		row[master.ColFilename+i] = src.Field(idx)
	}
	row[master.ColSubjects] = l.Subjects(src)
	return row
}
