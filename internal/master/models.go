package master

import (
	"strings"
)

// Columns is the canonical header of the master table
var Columns = []string{
	"collection",
	"filename",
	"page numbers",
	"pages in document",
	"main title",
	"sub title",
	"alt title",
	"descriptive title",
	"author",
	"publication",
	"volume",
	"issue/number",
	"date (month.day/season)",
	"year",
	"publisher",
	"publisher location",
	"subjects",
}

// Column positions in the master table
const (
	ColCollection = iota
	ColFilename
	ColPageNumbers
	ColPages
	ColTitle
	ColSubTitle
	ColAltTitle
	ColDescriptiveTitle
	ColAuthor
	ColPublication
	ColVolume
	ColIssue
	ColDate
	ColYear
	ColPublisher
	ColPlace
	ColSubjects
)

// SubjectSeparator joins names in the subjects column
const SubjectSeparator = " ; "

// Row is one line of the master table. Short rows read as empty cells.
type Row []string

// NewRow returns an empty row with every canonical column present.
func NewRow() Row {
	return make(Row, len(Columns))
}

// Field returns the trimmed cell at i, or "" when the row is short.
func (r Row) Field(i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[i])
}

// Set stores v at i, growing the row when needed.
func (r *Row) Set(i int, v string) {
	for len(*r) <= i {
		*r = append(*r, "")
	}
	(*r)[i] = v
}

// Clone copies the row so edits don't leak back to the reader.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	copy(out, r)
	return out
}

func (r Row) Collection() string  { return r.Field(ColCollection) }
func (r Row) Filename() string    { return r.Field(ColFilename) }
func (r Row) Pages() string       { return r.Field(ColPages) }
func (r Row) Author() string      { return r.Field(ColAuthor) }
func (r Row) Publication() string { return r.Field(ColPublication) }
func (r Row) Volume() string      { return r.Field(ColVolume) }
func (r Row) Issue() string       { return r.Field(ColIssue) }
func (r Row) Year() string        { return r.Field(ColYear) }
func (r Row) Publisher() string   { return r.Field(ColPublisher) }
func (r Row) Place() string       { return r.Field(ColPlace) }

// Title returns the main title, falling back to the descriptive and alt
// titles that some spreadsheets fill in instead.
func (r Row) Title() string {
	for _, col := range []int{ColTitle, ColDescriptiveTitle, ColAltTitle} {
		if v := r.Field(col); v != "" {
			return v
		}
	}
	return ""
}

// Subjects splits the subjects column into names.
func (r Row) Subjects() []string {
	return SplitSubjects(r.Field(ColSubjects))
}

// SplitSubjects splits a semicolon separated list of names, dropping blanks.
func SplitSubjects(s string) []string {
	var names []string
	for _, name := range strings.Split(s, ";") {
		name = strings.TrimSpace(name)
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

// Record is the Parquet shape of a master row
type Record struct {
	Collection        string `parquet:"collection"`
	Filename          string `parquet:"filename"`
	PageNumbers       string `parquet:"page_numbers"`
	PagesInDocument   string `parquet:"pages_in_document"`
	MainTitle         string `parquet:"main_title"`
	SubTitle          string `parquet:"sub_title"`
	AltTitle          string `parquet:"alt_title"`
	DescriptiveTitle  string `parquet:"descriptive_title"`
	Author            string `parquet:"author"`
	Publication       string `parquet:"publication"`
	Volume            string `parquet:"volume"`
	Issue             string `parquet:"issue"`
	Date              string `parquet:"date"`
	Year              string `parquet:"year"`
	Publisher         string `parquet:"publisher"`
	PublisherLocation string `parquet:"publisher_location"`
	Subjects          string `parquet:"subjects"`
}

func (rec Record) Row() Row {
	return Row{
		rec.Collection,
		rec.Filename,
		rec.PageNumbers,
		rec.PagesInDocument,
		rec.MainTitle,
		rec.SubTitle,
		rec.AltTitle,
		rec.DescriptiveTitle,
		rec.Author,
		rec.Publication,
		rec.Volume,
		rec.Issue,
		rec.Date,
		rec.Year,
		rec.Publisher,
		rec.PublisherLocation,
		rec.Subjects,
	}
}

// RecordFromRow maps the canonical columns of r onto a Record.
func RecordFromRow(r Row) Record {
	return Record{
		Collection:        r.Field(ColCollection),
		Filename:          r.Field(ColFilename),
		PageNumbers:       r.Field(ColPageNumbers),
		PagesInDocument:   r.Field(ColPages),
		MainTitle:         r.Field(ColTitle),
		SubTitle:          r.Field(ColSubTitle),
		AltTitle:          r.Field(ColAltTitle),
		DescriptiveTitle:  r.Field(ColDescriptiveTitle),
		Author:            r.Field(ColAuthor),
		Publication:       r.Field(ColPublication),
		Volume:            r.Field(ColVolume),
		Issue:             r.Field(ColIssue),
		Date:              r.Field(ColDate),
		Year:              r.Field(ColYear),
		Publisher:         r.Field(ColPublisher),
		PublisherLocation: r.Field(ColPlace),
		Subjects:          r.Field(ColSubjects),
	}
}
