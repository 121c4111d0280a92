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
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Fetcher retrieves the raw vendor document for a request. Client is the
// production implementation.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) ([]byte, error)
}

// Outcome tells how FetchOrLoad satisfied a call.
type Outcome int

const (
	Failed Outcome = iota
	Hit
	Fetched
)

func (o Outcome) String() string {
	switch o {
	case Hit:
		return "cached"
	case Fetched:
		return "fetched"
	}
	return "failed"
}

// Stats counts calls to FetchOrLoad.
type Stats struct {
	Requested int
	Hits      int
	Fetches   int
	Failures  int
}

// Progress returns the share of requested numbers, that are available
// locally by now, between 0 and 1.
func (s Stats) Progress() float64 {
	if s.Requested == 0 {
		return 0
	}
	return float64(s.Hits+s.Fetches) / float64(s.Requested)
}

// MetadataCache keeps one raw vendor document per system number under a
// directory and only goes to the network on a miss. It is safe for
// concurrent use, as long as no two calls work on the same number at the
// same time.
type MetadataCache struct {
	// Directory stores the directory, where all the downloads go.
	Directory string
	// Endpoint and Base select the catalog and the collection.
	Endpoint string
	Base     string
	// RefreshBefore marks cached files written before this time as stale,
	// which are then treated like an overwrite. Zero disables the check.
	RefreshBefore time.Time

	fetcher Fetcher

	mu    sync.Mutex
	stats Stats
}

// NewMetadataCache creates a cache under dir, which uses the given fetcher
// on misses, with default endpoint and base.
func NewMetadataCache(dir string, fetcher Fetcher) *MetadataCache {
	return &MetadataCache{
		Directory: dir,
		Endpoint:  DefaultEndpoint,
		Base:      DefaultBase,
		fetcher:   fetcher,
	}
}

// Path returns the cache file location for a number. It does not create
// any file or directory.
func (c *MetadataCache) Path(number string) (string, error) {
	if !ValidNumber(number) {
		return "", ErrBadNumber
	}
	return filepath.Join(c.Directory, number+".xml"), nil
}

// FetchOrLoad returns the path to the raw document of a number. An existing
// file is reused, unless overwrite is set or the file is stale, in which case
// it is removed and fetched again. Fetched documents are persisted verbatim.
func (c *MetadataCache) FetchOrLoad(ctx context.Context, number string, overwrite bool) (string, Outcome, error) {
	pth, outcome, err := c.fetchOrLoad(ctx, number, overwrite)
	c.record(outcome)
	logger := log.WithFields(log.Fields{"number": number, "outcome": outcome})
	if err != nil {
		logger.WithError(err).Debug("cache")
	} else {
		logger.WithField("path", pth).Debug("cache")
	}
	return pth, outcome, err
}

func (c *MetadataCache) fetchOrLoad(ctx context.Context, number string, overwrite bool) (string, Outcome, error) {
	pth, err := c.Path(number)
	if err != nil {
		return "", Failed, err
	}
	fi, err := os.Stat(pth)
	switch {
	case err == nil && !overwrite && !isStale(fi, c.RefreshBefore):
		return pth, Hit, nil
	case err == nil:
		if err := os.Remove(pth); err != nil && !os.IsNotExist(err) {
			return "", Failed, fmt.Errorf("%w: %w", ErrWriteFailure, err)
		}
	case !os.IsNotExist(err):
		return "", Failed, fmt.Errorf("%w: %w", ErrWriteFailure, err)
	}
	b, err := c.fetcher.Fetch(ctx, Request{Endpoint: c.Endpoint, Base: c.Base, Number: number})
	if err != nil {
		return "", Failed, err
	}
	if err := WriteFileAtomic(pth, b, 0644); err != nil {
		return "", Failed, fmt.Errorf("%w: %w", ErrWriteFailure, err)
	}
	return pth, Fetched, nil
}

func (c *MetadataCache) record(o Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.Requested++
	switch o {
	case Hit:
		c.stats.Hits++
	case Fetched:
		c.stats.Fetches++
	default:
		c.stats.Failures++
	}
}

// Stats returns a snapshot of the counters.
func (c *MetadataCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}
