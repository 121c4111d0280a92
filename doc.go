//
// Package emptyletters generates empty letter XML documents from catalog
// records. For each system number, the raw record is fetched once from the
// Aleph X interface of the University Library of Basel and kept in a local
// cache. Selected fields (dates, places, footnotes, shelfmarks and authors)
// are then mapped into a fixed letter schema, one file per number.
//
// It comes with a command line tool, called `emptyletters`.
//
// Basic usage:
//
//     $ emptyletters -numbers input/all_numbers.txt -exclude input/exclude.txt
//
// Aleph X is only reachable from within the university network or VPN.
//
package emptyletters
