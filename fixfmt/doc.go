// Package fixfmt decodes legacy positional data files.
//
// A file starts with one definition line per variable, then a format line
// such as
//
//	(I4,2F4.0/3I5)
//
// Each comma separated token describes Repeat fields of Width characters;
// every '/' moves the rest of the record onto the next physical line. The
// lines after the format line are data, one logical record per LineWrap
// lines, and the first field of each record is the subject identifier.
//
// OpenDocument reads such a file into a Table keyed by subject identifier.
// EncodeHeader and EncodeRecord write the same layout back out.
package fixfmt
