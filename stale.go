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
	"os"
	"time"

	"github.com/jinzhu/now"
)

var ErrInvalidCutoff = errors.New("invalid refresh cutoff")

// ParseCutoff parses a date or datetime like "2018-04-01" or
// "2018-04-01 12:00" and returns the beginning of that day. Cache entries
// written before the cutoff are considered stale. The empty string yields
// the zero time, which disables refreshing.
func ParseCutoff(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := now.Parse(s)
	if err != nil {
		return time.Time{}, ErrInvalidCutoff
	}
	if t.After(time.Now()) {
		return time.Time{}, ErrInvalidCutoff
	}
	return now.New(t).BeginningOfDay(), nil
}

// isStale reports whether a cache file was last written before cutoff. A
// zero cutoff never marks anything stale.
func isStale(fi os.FileInfo, cutoff time.Time) bool {
	if cutoff.IsZero() {
		return false
	}
	return fi.ModTime().Before(cutoff)
}
