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
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethgrid/pester"
	log "github.com/sirupsen/logrus"
)

// vendorErrorPreamble starts every document Aleph X sends back for an
// unknown system number, e.g.
//
//	<?xml version = "1.0" encoding = "UTF-8"?>
//	<find-doc><error>Error reading document</error></find-doc>
//
// This is a plain prefix match. Should Aleph X change its error format, such
// documents end up in the cache and fail later in the parser.
var vendorErrorPreamble = []byte("<find-doc><error>")

// HttpRequestDoer lets us use pester, DefaultClient or other HTTP client
// implementations interchangably.
type HttpRequestDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// StatusError is returned when the catalog answers with anything but 200 OK.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e StatusError) Error() string {
	return fmt.Sprintf("%s: %s returned %d", ErrNotReachable, e.URL, e.StatusCode)
}

func (e StatusError) Unwrap() error { return ErrNotReachable }

// VendorError carries the message of an Aleph X error document.
type VendorError struct {
	Number  string
	Message string
}

func (e VendorError) Error() string {
	if e.Number == "" {
		return fmt.Sprintf("%s: %s", ErrNotFound, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", ErrNotFound, e.Number, e.Message)
}

func (e VendorError) Unwrap() error { return ErrNotFound }

// Client turns a find-doc request into the raw vendor document.
type Client struct {
	// doer is a delegate for HTTP requests.
	doer HttpRequestDoer
}

// NewClientDoer creates a new client with a user supplied http client, e.g.
// pester.Client, http.DefaultClient.
func NewClientDoer(doer HttpRequestDoer) Client {
	return Client{doer: doer}
}

// NewClient create a default client with resilient HTTP client.
func NewClient() Client {
	return NewResilientClient(60*time.Second, 4)
}

// NewResilientClient returns a client that retries failed requests with
// exponential backoff. The timeout applies to each single attempt.
func NewResilientClient(timeout time.Duration, maxRetries int) Client {
	c := pester.New()
	c.Timeout = timeout
	c.MaxRetries = maxRetries
	c.Backoff = pester.ExponentialBackoff
	return Client{doer: c}
}

// Fetch executes a single request and returns the response body verbatim.
// Transport errors and non-200 responses are reported as ErrNotReachable,
// vendor error documents as ErrNotFound.
func (c Client) Fetch(ctx context.Context, req Request) ([]byte, error) {
	link, err := req.URL()
	if err != nil {
		return nil, err
	}
	log.WithField("url", link).Debug("fetching")

	hreq, err := http.NewRequestWithContext(ctx, "GET", link, nil)
	if err != nil {
		return nil, err
	}
	hreq.Header.Set("User-Agent", UserAgent)
	resp, err := c.doer.Do(hreq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotReachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, StatusError{URL: link, StatusCode: resp.StatusCode}
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotReachable, err)
	}
	if msg, ok := vendorError(b); ok {
		return nil, VendorError{Number: req.Number, Message: msg}
	}
	return b, nil
}

// vendorError reports whether b is an Aleph X error document and returns
// the error message.
func vendorError(b []byte) (string, bool) {
	b = bytes.TrimSpace(b)
	if bytes.HasPrefix(b, []byte("<?xml")) {
		i := bytes.Index(b, []byte("?>"))
		if i == -1 {
			return "", false
		}
		b = bytes.TrimSpace(b[i+2:])
	}
	if !bytes.HasPrefix(b, vendorErrorPreamble) {
		return "", false
	}
	b = b[len(vendorErrorPreamble):]
	if i := bytes.Index(b, []byte("</error>")); i != -1 {
		b = b[:i]
	}
	return string(bytes.TrimSpace(b)), true
}
