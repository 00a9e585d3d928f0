package query

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/vitpintodas/comem-travel-log-api/internal/domain"
)

const (
	// DefaultPageSize is used when the pageSize parameter is absent.
	DefaultPageSize = 10
	// MaxPageSize is the exclusive upper bound of pageSize.
	MaxPageSize = 50
)

// Pagination response headers.
const (
	HeaderPage          = "Pagination-Page"
	HeaderPageSize      = "Pagination-Page-Size"
	HeaderTotal         = "Pagination-Total"
	HeaderFilteredTotal = "Pagination-Filtered-Total"
	HeaderLink          = "Link"
)

// Headers lists every header written by Result.WriteHeaders. CORS must
// expose them for browsers to read them.
var Headers = []string{HeaderPage, HeaderPageSize, HeaderTotal, HeaderFilteredTotal, HeaderLink}

// Page is a validated page request. Number is one-based.
type Page struct {
	Number int
	Size   int
}

// Offset returns the number of documents before the page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// ParsePage reads the page and pageSize query parameters.
func ParsePage(q url.Values) (Page, error) {
	number, err := intParam(q, "page", 1, func(n int) bool { return n >= 1 },
		"an integer greater than or equal to 1")
	if err != nil {
		return Page{}, err
	}
	size, err := intParam(q, "pageSize", DefaultPageSize, func(n int) bool { return n >= 0 && n < MaxPageSize },
		fmt.Sprintf("an integer greater than or equal to 0 and less than %d", MaxPageSize))
	if err != nil {
		return Page{}, err
	}
	return Page{Number: number, Size: size}, nil
}

func intParam(q url.Values, name string, def int, valid func(int) bool, expectation string) (int, error) {
	raw, ok, err := SingleValue(q, name)
	if err != nil {
		return 0, err
	}
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || !valid(n) {
		return 0, domain.InvalidQueryParam(name,
			fmt.Sprintf("Query parameter %q must be %s, but its value is %q", name, expectation, raw))
	}
	return n, nil
}

// SingleValue returns the only value of a query parameter. A parameter given
// more than once is an invalidQueryParam error.
func SingleValue(q url.Values, name string) (string, bool, error) {
	values, ok := q[name]
	if !ok || len(values) == 0 {
		return "", false, nil
	}
	if len(values) > 1 {
		return "", false, domain.InvalidQueryParam(name,
			fmt.Sprintf("Query parameter %q must only be specified once", name))
	}
	return values[0], true, nil
}

// Counter runs the count queries of a pipeline.
type Counter interface {
	Count(ctx context.Context, p *Pipeline, filtered bool) (int64, error)
}

// Result describes the page of documents a pipeline returns.
type Result struct {
	Page          Page
	Total         int64
	FilteredTotal int64
}

// Paginate counts the documents of p with and without its filters, then
// restricts p to the requested page. Without filters the second count is
// skipped. The counts run concurrently only when concurrent is set: a single
// connection or transaction accepts one query at a time.
func Paginate(ctx context.Context, counter Counter, p *Pipeline, page Page, concurrent bool) (Result, error) {
	res := Result{Page: page}

	total := func(ctx context.Context) error {
		n, err := counter.Count(ctx, p, false)
		res.Total = n
		return err
	}
	filtered := func(ctx context.Context) error {
		n, err := counter.Count(ctx, p, true)
		res.FilteredTotal = n
		return err
	}

	if concurrent {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return total(gctx) })
		if p.Filtered() {
			g.Go(func() error { return filtered(gctx) })
		}
		if err := g.Wait(); err != nil {
			return Result{}, fmt.Errorf("query.Paginate: %w", err)
		}
	} else {
		if err := total(ctx); err != nil {
			return Result{}, fmt.Errorf("query.Paginate: %w", err)
		}
		if p.Filtered() {
			if err := filtered(ctx); err != nil {
				return Result{}, fmt.Errorf("query.Paginate: %w", err)
			}
		}
	}
	if !p.Filtered() {
		res.FilteredTotal = res.Total
	}

	p.Window(page.Size, page.Offset())
	return res, nil
}

// MaxPage is the number of the last page holding documents. It is 0 when
// there are none. A page size of 0 never yields documents and reports 1.
func (r Result) MaxPage() int {
	if r.Page.Size == 0 {
		return 1
	}
	return int((r.FilteredTotal + int64(r.Page.Size) - 1) / int64(r.Page.Size))
}

// WriteHeaders sets the pagination headers. Link URLs are absolute: baseURL
// followed by the request path, keeping every query parameter of the request
// except page and pageSize, which are set per link.
func (r Result) WriteHeaders(h http.Header, baseURL string, reqURL *url.URL) {
	h.Set(HeaderPage, strconv.Itoa(r.Page.Number))
	h.Set(HeaderPageSize, strconv.Itoa(r.Page.Size))
	h.Set(HeaderTotal, strconv.FormatInt(r.Total, 10))
	h.Set(HeaderFilteredTotal, strconv.FormatInt(r.FilteredTotal, 10))
	h.Set(HeaderLink, r.LinkHeader(baseURL, reqURL))
}

type link struct {
	url  string
	rels []string
}

// LinkHeader renders the RFC 8288 Link header value. Relations sharing a URL
// are merged into one link, e.g. `<...>; rel="self last"`.
func (r Result) LinkHeader(baseURL string, reqURL *url.URL) string {
	var links []*link
	add := func(rel string, page int) {
		u := pageURL(baseURL, reqURL, page, r.Page.Size)
		for _, l := range links {
			if l.url == u {
				l.rels = append(l.rels, rel)
				return
			}
		}
		links = append(links, &link{url: u, rels: []string{rel}})
	}

	maxPage := r.MaxPage()
	add("self", r.Page.Number)
	add("first", 1)
	add("last", max(maxPage, 1))
	if r.Page.Number > 1 && r.Page.Size != 0 {
		add("prev", r.Page.Number-1)
	}
	if r.Page.Number < maxPage && r.Page.Size != 0 {
		add("next", r.Page.Number+1)
	}

	parts := make([]string, len(links))
	for i, l := range links {
		parts[i] = fmt.Sprintf("<%s>; rel=%q", l.url, strings.Join(l.rels, " "))
	}
	return strings.Join(parts, ", ")
}

func pageURL(baseURL string, reqURL *url.URL, page, size int) string {
	q := url.Values{}
	for k, v := range reqURL.Query() {
		q[k] = v
	}
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(size))
	return strings.TrimSuffix(baseURL, "/") + reqURL.Path + "?" + q.Encode()
}
