// Package dwarf provides ability for parsing DWARF info, abbrev and
// frame sections. With the help of the subpackages here, we can load
// the compile units of a binary, walk their DIE lists lazily, resolve
// the abbreviation tables describing them, and build the CFI entries.
//
// Parts of the parsing approach follow go-delve/delve. Thanks!
package dwarf
