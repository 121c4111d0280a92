//  Copyright 2015 by Leipzig University Library, http://ub.uni-leipzig.de
//                    The Finc Authors, http://finc.info
//                    Martin Czygan, <martin.czygan@uni-leipzig.de>
//
// This file is part of some open source application.
//
// Some open source application is free software: you can redistribute
// it and/or modify it under the terms of the GNU General Public
// License as published by the Free Software Foundation, either
// version 3 of the License, or (at your option) any later version.
//
// Some open source application is distributed in the hope that it will
// be useful, but WITHOUT ANY WARRANTY; without even the implied warranty
// of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Foobar.  If not, see <http://www.gnu.org/licenses/>.
//
// @license GPL-3.0+ <http://spdx.org/licenses/GPL-3.0+>
//
package emptyletters

import (
	"errors"
	"fmt"
	"net/url"
)

// Version
const Version = "0.2.0"

var (
	ErrNoEndpoint = errors.New("request: an endpoint is required")
	ErrNoBase     = errors.New("request: a base is required")
	ErrBadNumber  = errors.New("bad system number")

	// ErrNotReachable is returned, if the catalog cannot be contacted or
	// answers with a non-success status.
	ErrNotReachable = errors.New("catalog not reachable")
	// ErrNotFound is returned, if the catalog reports that there is no such
	// document.
	ErrNotFound = errors.New("no such document")
	// ErrMalformed is returned for raw documents that cannot be interpreted.
	ErrMalformed = errors.New("malformed document")
	// ErrWriteFailure wraps errors writing cache or output files.
	ErrWriteFailure = errors.New("write failure")

	// UserAgent to use for requests
	UserAgent = fmt.Sprintf("emptyletters/%s", Version)
	// DefaultEndpoint is the Aleph X service of the University Library of
	// Basel. It is only reachable from within the university network or VPN.
	DefaultEndpoint = "http://aleph.unibas.ch/X"
	// DefaultBase is the Aleph collection code the letters are catalogued in.
	DefaultBase = "DSV05"
)

// Request holds the parameters of a single find-doc call.
type Request struct {
	Endpoint string
	Base     string
	Number   string
}

// URL returns the absolute URL for a given request. Catches basic errors like
// missing endpoint or an unusable system number.
func (r Request) URL() (s string, err error) {
	if r.Endpoint == "" {
		return s, ErrNoEndpoint
	}
	if r.Base == "" {
		return s, ErrNoBase
	}
	if !ValidNumber(r.Number) {
		return s, ErrBadNumber
	}
	values := url.Values{}
	values.Add("op", "find-doc")
	values.Add("doc_num", r.Number)
	values.Add("base", r.Base)
	return fmt.Sprintf("%s?%s", r.Endpoint, values.Encode()), nil
}

// ValidNumber reports whether s can be used as a system number. Numbers are
// used verbatim as file names, so only the POSIX portable filename
// characters [A-Za-z0-9._-] are allowed and the first character must not be
// a hyphen or a dot.
func ValidNumber(s string) bool {
	if s == "" || s[0] == '-' || s[0] == '.' {
		return false
	}
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '.', c == '_', c == '-':
		default:
			return false
		}
	}
	return true
}
