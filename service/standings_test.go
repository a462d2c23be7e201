package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ZeMendes2393/sailscore/apperr"
)

func raceIDsOf(st *ClassStandings) []int64 {
	ids := make([]int64, len(st.Races))
	for i, r := range st.Races {
		ids[i] = r.ID
	}
	return ids
}

func TestStandingsPublishedOnly(t *testing.T) {
	w := newWorld(3, 3)
	w.finish(10, "1", "2", "3")
	w.finish(20, "1", "2", "3")
	w.finish(30, "3", "2", "1")
	w.class.PublishedRaces = 2
	s := newTestService(t, w.repo(), nil)
	ctx := context.Background()

	public, err := s.Standings(ctx, 1, true)
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 20}, raceIDsOf(public))
	assert.Equal(t, 2, public.RacesSailed)
	for _, st := range public.Standings {
		for _, c := range st.Races {
			assert.NotEqual(t, int64(30), c.RaceID)
		}
	}
	assert.Equal(t, "2", public.Standings[0].Net.String())

	full, err := s.Standings(ctx, 1, false)
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 20, 30}, raceIDsOf(full))
	assert.Equal(t, "5", full.Standings[0].Net.String())
}

func TestStandingsNothingPublished(t *testing.T) {
	w := newWorld(2, 2)
	w.finish(10, "1", "2")
	s := newTestService(t, w.repo(), nil)

	public, err := s.Standings(context.Background(), 1, true)
	require.NoError(t, err)
	assert.Empty(t, public.Races)
	assert.Zero(t, public.RacesSailed)
	for _, st := range public.Standings {
		assert.Equal(t, 1, st.Rank)
		assert.True(t, st.Tied)
	}
}

func TestStandingsAreMemoised(t *testing.T) {
	w := newWorld(2, 1)
	w.finish(10, "2", "1")
	repo := w.repo()
	s := newTestService(t, repo, nil)
	ctx := context.Background()

	first, err := s.Standings(ctx, 1, false)
	require.NoError(t, err)
	second, err := s.Standings(ctx, 1, false)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, countCalls(repo.Trace(), "ListClassResults"))

	_, err = s.Standings(ctx, 1, true)
	require.NoError(t, err)
	assert.Equal(t, 2, countCalls(repo.Trace(), "ListClassResults"))
}

func TestStandingsUnknownClass(t *testing.T) {
	s := newTestService(t, newWorld(1, 1).repo(), nil)

	_, err := s.Standings(context.Background(), 7, false)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
}

func TestStandingsSheetMarksDiscards(t *testing.T) {
	w := newWorld(3, 3)
	w.class.DiscardCount = 1
	w.class.DiscardThreshold = 3
	w.finish(10, "1", "2", "3")
	w.finish(20, "1", "2", "3")
	w.finish(30, "2", "3", "1")
	s := newTestService(t, w.repo(), nil)

	sheet, err := s.StandingsSheet(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, "ILCA 7", sheet.Title)
	assert.Equal(t, []string{"Rank", "Sail", "Boat", "R1", "R2", "R3", "Total", "Net"}, sheet.Header)
	require.Len(t, sheet.Rows, 3)
	assert.Equal(t, []string{"1", "1", "Skipper 1", "1", "1", "(3)", "5", "2"}, sheet.Rows[0])
	assert.Equal(t, []string{"2", "2", "Skipper 2", "(2)", "2", "1", "5", "3"}, sheet.Rows[1])
}

func TestStandingsWorkbook(t *testing.T) {
	w := newWorld(2, 1)
	w.finish(10, "2", "1")
	s := newTestService(t, w.repo(), nil)

	data, err := s.StandingsWorkbook(context.Background(), 1, false)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("ILCA 7")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Rank", rows[0][0])
	assert.Equal(t, "2", rows[1][1])
}
