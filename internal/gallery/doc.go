// Package gallery builds the gallery.json manifest from the processed
// images in the output directory.
//
// Each full-size image becomes an [Entry]. Its display name and timestamp
// come from the file name when it follows the YY_MM_DD_Title convention,
// for example "24_03_15_My_Doodle.jpg" is "My Doodle" dated 2024-03-15.
// Other names keep their stem, with underscores shown as spaces, and are
// dated by the file's modification time. [ParseStem] reports which source
// was used in a [DateResult].
//
// Images are the names matching *.jp*g, case-sensitively. Dot-files match
// like any other name.
//
// Entries are sorted newest first and written as an indented JSON array
// by [Write].
package gallery
