package gvp

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/volcano-data-kit/internal/observability"
	"github.com/couchcryptid/volcano-data-kit/votw"
)

var _ Database = (*WebDatabase)(nil)

const (
	holoceneVolcanoesCSV = "VolcanoNumber,VolcanoName,Country,Latitude,Longitude,Elevation,GeologicEpoch\n" +
		"1,Holocene One,Chile,-39.42,-71.93,2847,Holocene\n" +
		"2,Shared Peak,Italy,37.748,14.999,3357,Holocene\n"

	pleistoceneVolcanoesCSV = "VolcanoNumber,VolcanoName,Country,Latitude,Longitude,Elevation,GeologicEpoch\n" +
		"2,Shared Peak Old,Italy,37.748,14.999,3357,Pleistocene\n" +
		"3,Pleistocene Three,Japan,35.36,138.73,3776,Pleistocene\n"

	holoceneEruptionsCSV = "VolcanoNumber,EruptionNumber,VEI,StartYear\n" +
		"1,100,2,2021\n" +
		"2,101,3,1992\n"

	pleistoceneEruptionsCSV = "VolcanoNumber,EruptionNumber,VEI,StartYear\n" +
		"3,102,4,-50000\n"
)

func newVolcanoServer(t *testing.T) *datasetServer {
	t.Helper()
	srv := newDatasetServer(t)
	srv.setPayload(HoloceneVolcanoes, holoceneVolcanoesCSV)
	srv.setPayload(PleistoceneVolcanoes, pleistoceneVolcanoesCSV)
	srv.setPayload(HoloceneEruptions, holoceneEruptionsCSV)
	srv.setPayload(PleistoceneEruptions, pleistoceneEruptionsCSV)
	return srv
}

func testWebDatabase(t *testing.T, srv *datasetServer, opts ...Option) *WebDatabase {
	t.Helper()
	base := []Option{
		WithCacheDir(t.TempDir()),
		WithBaseURL(srv.URL),
		WithLogger(testLogger()),
		WithMetrics(observability.NewMetricsForTesting()),
	}
	return NewWebDatabase(append(base, opts...)...)
}

func volcanoNumbers(set votw.VolcanoSet) []int {
	numbers := make([]int, 0, len(set))
	for _, v := range set {
		if v.Number != nil {
			numbers = append(numbers, *v.Number)
		}
	}
	return numbers
}

func TestWebDatabase_GetVolcanoes(t *testing.T) {
	t.Run("holocene only", func(t *testing.T) {
		srv := newVolcanoServer(t)
		db := testWebDatabase(t, srv)

		set, err := db.GetVolcanoes(context.Background(), true, false)

		require.NoError(t, err)
		assert.Equal(t, []int{1, 2}, volcanoNumbers(set))
	})

	t.Run("pleistocene only", func(t *testing.T) {
		srv := newVolcanoServer(t)
		db := testWebDatabase(t, srv)

		set, err := db.GetVolcanoes(context.Background(), false, true)

		require.NoError(t, err)
		assert.Equal(t, []int{2, 3}, volcanoNumbers(set))
		assert.Equal(t, 0, srv.fetchCount(HoloceneVolcanoes))
	})

	t.Run("both epochs merge with holocene authoritative", func(t *testing.T) {
		srv := newVolcanoServer(t)
		var buf bytes.Buffer
		db := testWebDatabase(t, srv, WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

		set, err := db.GetVolcanoes(context.Background(), true, true)

		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3}, volcanoNumbers(set))

		kept, ok := set.ByNumber(2)
		require.True(t, ok)
		assert.Equal(t, "Shared Peak", kept.Name)

		out := buf.String()
		assert.Contains(t, out, "dropped duplicate volcano records")
		assert.Contains(t, out, "count=1")
		assert.Contains(t, out, "sample=[2]")
	})

	t.Run("neither epoch returns empty without network", func(t *testing.T) {
		srv := newVolcanoServer(t)
		db := testWebDatabase(t, srv)

		set, err := db.GetVolcanoes(context.Background(), false, false)

		require.NoError(t, err)
		assert.Empty(t, set)
		assert.Equal(t, 0, srv.totalFetches())
	})

	t.Run("second call reuses the cache", func(t *testing.T) {
		srv := newVolcanoServer(t)
		db := testWebDatabase(t, srv)

		_, err := db.GetVolcanoes(context.Background(), true, false)
		require.NoError(t, err)
		_, err = db.GetVolcanoes(context.Background(), true, false)
		require.NoError(t, err)

		assert.Equal(t, 1, srv.fetchCount(HoloceneVolcanoes))
	})

	t.Run("download failure surfaces", func(t *testing.T) {
		srv := newVolcanoServer(t)
		srv.setStatus(http.StatusServiceUnavailable)
		db := testWebDatabase(t, srv)

		_, err := db.GetVolcanoes(context.Background(), true, false)

		var dlErr *DownloadError
		require.ErrorAs(t, err, &dlErr)
	})
}

func TestWebDatabase_GetEruptions(t *testing.T) {
	t.Run("both epochs concatenate", func(t *testing.T) {
		srv := newVolcanoServer(t)
		db := testWebDatabase(t, srv)

		set, err := db.GetEruptions(context.Background(), true, true)

		require.NoError(t, err)
		require.Len(t, set, 3)
		assert.Equal(t, 100, *set[0].EruptionNumber)
		assert.Equal(t, 102, *set[2].EruptionNumber)
		assert.Equal(t, []int{1, 2, 3}, set.VolcanoNumbers())
	})

	t.Run("holocene only", func(t *testing.T) {
		srv := newVolcanoServer(t)
		db := testWebDatabase(t, srv)

		set, err := db.GetEruptions(context.Background(), true, false)

		require.NoError(t, err)
		assert.Len(t, set, 2)
	})

	t.Run("neither epoch returns empty without network", func(t *testing.T) {
		srv := newVolcanoServer(t)
		db := testWebDatabase(t, srv)

		set, err := db.GetEruptions(context.Background(), false, false)

		require.NoError(t, err)
		assert.Empty(t, set)
		assert.Equal(t, 0, srv.totalFetches())
	})
}

func TestWebDatabase_ConstructionDoesNoIO(t *testing.T) {
	srv := newVolcanoServer(t)
	cacheDir := filepath.Join(t.TempDir(), "cache")

	_ = testWebDatabase(t, srv, WithCacheDir(cacheDir))

	assert.Equal(t, 0, srv.totalFetches())
	_, err := os.Stat(cacheDir)
	assert.True(t, errors.Is(err, os.ErrNotExist), "cache dir is created lazily")
}

func TestWebDatabase_ResidentSetIsEmpty(t *testing.T) {
	srv := newVolcanoServer(t)
	db := testWebDatabase(t, srv)

	assert.Empty(t, db.Volcanoes())
	assert.Empty(t, db.FilterVolcanoes(votw.VolcanoFilter{Country: "chile"}))

	stats := db.Stats()
	assert.Equal(t, 0, stats.TotalVolcanoes)
	assert.Equal(t, srv.URL, stats.DataSource)
}

func TestWebDatabase_CachePassthroughs(t *testing.T) {
	srv := newVolcanoServer(t)
	db := testWebDatabase(t, srv)

	_, err := db.GetVolcanoes(context.Background(), true, false)
	require.NoError(t, err)

	statuses, err := db.CacheInfo(HoloceneVolcanoes)
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.True(t, statuses[0].Cached)

	out := filepath.Join(t.TempDir(), "holocene.csv")
	path, err := db.ExportCSV(context.Background(), HoloceneVolcanoes, out, false)
	require.NoError(t, err)
	assert.Equal(t, out, path)

	geoOut := filepath.Join(t.TempDir(), "holocene.geojson")
	path, err = db.ExportGeoJSON(context.Background(), HoloceneVolcanoes, geoOut, false)
	require.NoError(t, err)
	assert.Equal(t, geoOut, path)

	require.NoError(t, db.ClearCache())
	statuses, err = db.CacheInfo(HoloceneVolcanoes)
	require.NoError(t, err)
	assert.False(t, statuses[0].Cached)
}
