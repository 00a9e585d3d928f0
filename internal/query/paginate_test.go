package query_test

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitpintodas/comem-travel-log-api/internal/domain"
	"github.com/vitpintodas/comem-travel-log-api/internal/query"
)

// fakeCounter returns fixed totals and records how often it was called.
type fakeCounter struct {
	total, filtered int64
	err             error
	calls           atomic.Int32
}

func (c *fakeCounter) Count(_ context.Context, _ *query.Pipeline, filtered bool) (int64, error) {
	c.calls.Add(1)
	if c.err != nil {
		return 0, c.err
	}
	if filtered {
		return c.filtered, nil
	}
	return c.total, nil
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

// ---- ParsePage -------------------------------------------------------------

func TestParsePage_Defaults(t *testing.T) {
	page, err := query.ParsePage(url.Values{})

	require.NoError(t, err)
	assert.Equal(t, query.Page{Number: 1, Size: 10}, page)
	assert.Equal(t, 0, page.Offset())
}

func TestParsePage_Offset(t *testing.T) {
	page, err := query.ParsePage(url.Values{"page": {"3"}, "pageSize": {"20"}})

	require.NoError(t, err)
	assert.Equal(t, 40, page.Offset())
}

func TestParsePage_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		query url.Values
		param string
	}{
		{"page zero", url.Values{"page": {"0"}}, "page"},
		{"page not a number", url.Values{"page": {"abc"}}, "page"},
		{"page twice", url.Values{"page": {"1", "2"}}, "page"},
		{"page size negative", url.Values{"pageSize": {"-1"}}, "pageSize"},
		{"page size too large", url.Values{"pageSize": {"50"}}, "pageSize"},
		{"page size twice", url.Values{"pageSize": {"5", "5"}}, "pageSize"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := query.ParsePage(tc.query)

			var apiErr *domain.Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, http.StatusBadRequest, apiErr.Status)
			assert.Equal(t, domain.CodeInvalidQueryParam, apiErr.Code)
			assert.Equal(t, tc.param, apiErr.Properties["queryParam"])
		})
	}
}

func TestParsePage_MessageNamesValue(t *testing.T) {
	_, err := query.ParsePage(url.Values{"page": {"x"}})

	var apiErr *domain.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, `Query parameter "page" must be an integer greater than or equal to 1, but its value is "x"`, apiErr.Message)
}

// ---- Paginate --------------------------------------------------------------

func TestPaginate_UnfilteredReusesTotal(t *testing.T) {
	counter := &fakeCounter{total: 42}
	p := tripPipeline()

	res, err := query.Paginate(context.Background(), counter, p, query.Page{Number: 2, Size: 10}, true)

	require.NoError(t, err)
	assert.EqualValues(t, 42, res.Total)
	assert.EqualValues(t, 42, res.FilteredTotal)
	assert.EqualValues(t, 1, counter.calls.Load())
	assert.Contains(t, p.SQL(), "LIMIT 10 OFFSET 10")
}

func TestPaginate_FilteredRunsBothCounts(t *testing.T) {
	counter := &fakeCounter{total: 42, filtered: 7}
	p := tripPipeline().Where("doc.title = 'x'")

	res, err := query.Paginate(context.Background(), counter, p, query.Page{Number: 1, Size: 5}, true)

	require.NoError(t, err)
	assert.EqualValues(t, 42, res.Total)
	assert.EqualValues(t, 7, res.FilteredTotal)
	assert.EqualValues(t, 2, counter.calls.Load())
	assert.Equal(t, 2, res.MaxPage())
}

func TestPaginate_CountError(t *testing.T) {
	boom := errors.New("boom")

	_, err := query.Paginate(context.Background(), &fakeCounter{err: boom}, tripPipeline(), query.Page{Number: 1, Size: 5}, true)

	assert.ErrorIs(t, err, boom)
}

// singleConnCounter fails a count started while another is still running,
// the way a pgx.Conn or pgx.Tx reports "conn busy".
type singleConnCounter struct {
	busy  atomic.Bool
	calls atomic.Int32
}

func (c *singleConnCounter) Count(_ context.Context, _ *query.Pipeline, filtered bool) (int64, error) {
	if !c.busy.CompareAndSwap(false, true) {
		return 0, errors.New("conn busy")
	}
	defer c.busy.Store(false)
	c.calls.Add(1)
	time.Sleep(10 * time.Millisecond)
	if filtered {
		return 3, nil
	}
	return 9, nil
}

func TestPaginate_SequentialOnSingleConnection(t *testing.T) {
	counter := &singleConnCounter{}
	p := tripPipeline().Where("doc.title = 'x'")

	res, err := query.Paginate(context.Background(), counter, p, query.Page{Number: 1, Size: 2}, false)

	require.NoError(t, err)
	assert.EqualValues(t, 9, res.Total)
	assert.EqualValues(t, 3, res.FilteredTotal)
	assert.EqualValues(t, 2, counter.calls.Load())
	assert.Equal(t, 2, res.MaxPage())
}

func TestPaginate_SequentialStopsAtFirstError(t *testing.T) {
	boom := errors.New("boom")
	counter := &fakeCounter{err: boom}

	_, err := query.Paginate(context.Background(), counter, tripPipeline().Where("doc.title = 'x'"), query.Page{Number: 1, Size: 5}, false)

	assert.ErrorIs(t, err, boom)
	assert.EqualValues(t, 1, counter.calls.Load())
}

// ---- MaxPage & links -------------------------------------------------------

func TestResult_MaxPage(t *testing.T) {
	tests := []struct {
		filtered int64
		size     int
		want     int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{49, 7, 7},
		{5, 0, 1},
	}
	for _, tc := range tests {
		res := query.Result{Page: query.Page{Number: 1, Size: tc.size}, FilteredTotal: tc.filtered}
		assert.Equal(t, tc.want, res.MaxPage(), "filtered=%d size=%d", tc.filtered, tc.size)
	}
}

func TestResult_LinkHeader_MiddlePage(t *testing.T) {
	res := query.Result{Page: query.Page{Number: 2, Size: 10}, Total: 30, FilteredTotal: 30}

	got := res.LinkHeader("http://localhost:3000", mustURL(t, "/api/trips?page=2&search=alps"))

	assert.Equal(t,
		`<http://localhost:3000/api/trips?page=2&pageSize=10&search=alps>; rel="self", `+
			`<http://localhost:3000/api/trips?page=1&pageSize=10&search=alps>; rel="first prev", `+
			`<http://localhost:3000/api/trips?page=3&pageSize=10&search=alps>; rel="last next"`,
		got)
}

func TestResult_LinkHeader_MergesSharedURLs(t *testing.T) {
	res := query.Result{Page: query.Page{Number: 1, Size: 10}, Total: 3, FilteredTotal: 3}

	got := res.LinkHeader("http://localhost:3000/", mustURL(t, "/api/users"))

	assert.Equal(t, `<http://localhost:3000/api/users?page=1&pageSize=10>; rel="self first last"`, got)
}

func TestResult_LinkHeader_PrevNextConditions(t *testing.T) {
	u := mustURL(t, "/api/places")

	first := query.Result{Page: query.Page{Number: 1, Size: 10}, FilteredTotal: 25}.LinkHeader("http://x", u)
	assert.NotContains(t, first, "prev")
	assert.Contains(t, first, `<http://x/api/places?page=2&pageSize=10>; rel="next"`)

	last := query.Result{Page: query.Page{Number: 3, Size: 10}, FilteredTotal: 25}.LinkHeader("http://x", u)
	assert.Contains(t, last, `<http://x/api/places?page=2&pageSize=10>; rel="prev"`)
	assert.NotContains(t, last, "next")

	empty := query.Result{Page: query.Page{Number: 2, Size: 0}, FilteredTotal: 25}.LinkHeader("http://x", u)
	assert.NotContains(t, empty, "prev")
	assert.NotContains(t, empty, "next")
}

func TestResult_WriteHeaders(t *testing.T) {
	res := query.Result{Page: query.Page{Number: 1, Size: 5}, Total: 12, FilteredTotal: 4}
	h := http.Header{}

	res.WriteHeaders(h, "http://localhost:3000", mustURL(t, "/api/trips"))

	assert.Equal(t, "1", h.Get(query.HeaderPage))
	assert.Equal(t, "5", h.Get(query.HeaderPageSize))
	assert.Equal(t, "12", h.Get(query.HeaderTotal))
	assert.Equal(t, "4", h.Get(query.HeaderFilteredTotal))
	assert.Contains(t, h.Get(query.HeaderLink), `rel="self first last"`)
}
