package query_test

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitpintodas/comem-travel-log-api/internal/domain"
	"github.com/vitpintodas/comem-travel-log-api/internal/query"
)

func placePipeline() *query.Pipeline {
	return query.New("places pl", "pl.id", "pl.name", "pl.longitude", "pl.latitude")
}

func requireInvalidParam(t *testing.T, err error, param string) {
	t.Helper()
	var apiErr *domain.Error
	require.True(t, errors.As(err, &apiErr), "expected *domain.Error, got %v", err)
	assert.Equal(t, domain.CodeInvalidQueryParam, apiErr.Code)
	assert.Equal(t, param, apiErr.Properties["queryParam"])
}

func TestValues_SkipsBlank(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, query.Values(url.Values{"name": {" a ", "", "b"}}, "name"))
	assert.Nil(t, query.Values(url.Values{}, "name"))
}

func TestMatchAny(t *testing.T) {
	p := placePipeline()

	require.NoError(t, query.MatchAny("trip", "trip_api_id")(url.Values{"trip": {"a", "b"}}, p))

	assert.Contains(t, p.SQL(), "WHERE doc.trip_api_id::text = ANY(@p1)")
	assert.Equal(t, []string{"a", "b"}, p.Args()["p1"])
}

func TestMatchAny_AbsentParamAddsNothing(t *testing.T) {
	p := placePipeline()

	require.NoError(t, query.MatchAny("trip", "trip_api_id")(url.Values{}, p))

	assert.False(t, p.Filtered())
}

func TestMatchAnyFold_LowersValues(t *testing.T) {
	p := placePipeline()

	require.NoError(t, query.MatchAnyFold("name", "name")(url.Values{"name": {"Eiffel Tower"}}, p))

	assert.Contains(t, p.SQL(), "lower(doc.name) = ANY(@p1)")
	assert.Equal(t, []string{"eiffel tower"}, p.Args()["p1"])
}

func TestSearch_EscapesAndOrsColumns(t *testing.T) {
	p := placePipeline()

	require.NoError(t, query.Search("search", "name", "description")(url.Values{"search": {"100%"}}, p))

	assert.Contains(t, p.SQL(), "(doc.name ILIKE @p1 OR doc.description ILIKE @p1)")
	assert.Equal(t, `%100\%%`, p.Args()["p1"])
}

func TestParseBBox(t *testing.T) {
	b, err := query.ParseBBox("bbox", "-10,-10,10,10")

	require.NoError(t, err)
	assert.Equal(t, query.BBox{West: -10, South: -10, East: 10, North: 10}, b)
}

func TestParseBBox_Invalid(t *testing.T) {
	for _, value := range []string{"1,2,3", "a,b,c,d", "-200,0,10,10", "0,-95,10,10", "0,10,10,0", "0,0,10,NaN"} {
		t.Run(value, func(t *testing.T) {
			_, err := query.ParseBBox("bbox", value)
			requireInvalidParam(t, err, "bbox")
		})
	}
}

func TestParseNear(t *testing.T) {
	n, err := query.ParseNear("near", "6.6,46.5,1000")
	require.NoError(t, err)
	assert.Equal(t, 1000.0, n.Distance)
	assert.Nil(t, n.Altitude)

	n, err = query.ParseNear("near", "6.6,46.5,400,250")
	require.NoError(t, err)
	require.NotNil(t, n.Altitude)
	assert.Equal(t, 400.0, *n.Altitude)
	assert.Equal(t, 250.0, n.Distance)
}

func TestParseNear_Invalid(t *testing.T) {
	for _, value := range []string{"1,2", "1,2,3,4,5", "x,2,3", "181,0,10", "0,91,10", "0,0,-1"} {
		t.Run(value, func(t *testing.T) {
			_, err := query.ParseNear("near", value)
			requireInvalidParam(t, err, "near")
		})
	}
}

func TestWithinBBox_MultipleBoxesAreOred(t *testing.T) {
	p := placePipeline()

	err := query.WithinBBox("bbox", "longitude", "latitude")(url.Values{"bbox": {"-10,-10,10,10", "20,20,30,30"}}, p)

	require.NoError(t, err)
	sql := p.SQL()
	assert.Contains(t, sql, "(doc.longitude BETWEEN @p1 AND @p2 AND doc.latitude BETWEEN @p3 AND @p4) OR (doc.longitude BETWEEN @p5 AND @p6")
	assert.Equal(t, -10.0, p.Args()["p1"])
	assert.Equal(t, 30.0, p.Args()["p8"])
}

func TestWithinBBox_CrossingAntimeridian(t *testing.T) {
	p := placePipeline()

	require.NoError(t, query.WithinBBox("bbox", "longitude", "latitude")(url.Values{"bbox": {"170,-10,-170,10"}}, p))

	assert.Contains(t, p.SQL(), "(doc.longitude >= @p1 OR doc.longitude <= @p2)")
}

func TestWithinBBox_InvalidValue(t *testing.T) {
	err := query.WithinBBox("bbox", "longitude", "latitude")(url.Values{"bbox": {"nope"}}, placePipeline())

	requireInvalidParam(t, err, "bbox")
}

func TestNearPoint(t *testing.T) {
	p := placePipeline()

	require.NoError(t, query.NearPoint("near", "longitude", "latitude")(url.Values{"near": {"0,0,1000"}}, p))

	sql := p.SQL()
	assert.Contains(t, sql, "2 * 6371008.8 * asin(")
	assert.Contains(t, sql, "<= @p3")
	assert.Equal(t, 1000.0, p.Args()["p3"])
}

func TestFilters_FirstErrorWins(t *testing.T) {
	f := query.Filters(
		query.WithinBBox("bbox", "longitude", "latitude"),
		query.NearPoint("near", "longitude", "latitude"),
	)

	err := f(url.Values{"bbox": {"bad"}, "near": {"bad"}}, placePipeline())

	requireInvalidParam(t, err, "bbox")
}
