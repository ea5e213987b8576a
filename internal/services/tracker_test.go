package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "folio_tracker/internal/errors"
	"folio_tracker/internal/indicators"
	"folio_tracker/internal/models"
	"folio_tracker/internal/repository"
)

func TestTracker_Refresh(t *testing.T) {
	env := newTestEnv(t)
	tr := env.tracker

	_, err := tr.AddEquity("aapl", 10)
	require.NoError(t, err)
	_, err = tr.AddEquity("MSFT", 4)
	require.NoError(t, err)
	require.NoError(t, tr.SetBullion(models.Bullion{Metal: models.Gold, Ounces: 2, Premium: 30}))
	require.NoError(t, tr.SetBullion(models.Bullion{Metal: models.Silver, Ounces: 100}))
	require.NoError(t, tr.SetCash(500))

	p, err := tr.Refresh(context.Background())
	require.NoError(t, err)

	require.Len(t, p.Indices, 4)
	dow := p.Indices[0]
	assert.Equal(t, "^DJI", dow.Symbol)
	assert.True(t, dow.Valid)
	assert.InDelta(t, 380, dow.Change, 1e-9)
	assert.InDelta(t, 1, dow.Gain, 1e-9)

	// platinum and palladium are not held so not fetched
	require.Len(t, p.Metals, 2)
	assert.Zero(t, env.api.hitCount("/history/PL=F"))
	gold := p.Metals[0]
	assert.InDelta(t, 2*(2020+30), gold.Value, 1e-9)
	assert.InDelta(t, 40, gold.ChangeValue, 1e-9)
	silver := p.Metals[1]
	assert.InDelta(t, 2400, silver.Value, 1e-9)
	assert.Equal(t, indicators.TrendDown, silver.Trend)

	require.Len(t, p.Equities, 2)
	aapl := p.Equities[0]
	assert.Equal(t, "AAPL", aapl.Symbol)
	assert.InDelta(t, 1100, aapl.Value, 1e-9)
	assert.InDelta(t, 100, aapl.ChangeValue, 1e-9)
	assert.InDelta(t, 10, aapl.Gain, 1e-9)
	msft := p.Equities[1]
	assert.InDelta(t, -20, msft.ChangeValue, 1e-9)

	tot := p.Totals
	assert.InDelta(t, 1100+180, tot.Equity, 1e-9)
	assert.InDelta(t, 4100+2400, tot.Bullion, 1e-9)
	assert.InDelta(t, 500, tot.Cash, 1e-9)
	assert.InDelta(t, 1280+6500+500, tot.Total, 1e-9)
	assert.InDelta(t, 40-100+100-20, tot.DayChange, 1e-9)
	assert.InDelta(t, 2020.0/24, tot.GoldSilverRatio, 1e-9)
	assert.False(t, p.UpdatedAt.IsZero())
	assert.False(t, tr.Flags().Fetching)

	recent, err := env.history.Recent(5)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, repository.FetchSuccess, recent[0].Status)
	assert.Equal(t, 4+2+2, recent[0].Requests)
}

func TestTracker_Refresh_FetchesHeldPlatinum(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.tracker.SetBullion(models.Bullion{Metal: models.Platinum, Ounces: 1}))

	p, err := env.tracker.Refresh(context.Background())
	require.NoError(t, err)
	assert.Len(t, p.Metals, 3)
	assert.Equal(t, 1, env.api.hitCount("/history/PL=F"))
	assert.Zero(t, env.api.hitCount("/history/PA=F"))
}

func TestTracker_Refresh_FailureDiscardsData(t *testing.T) {
	env := newTestEnv(t)
	tr := env.tracker
	_, err := tr.AddEquity("AAPL", 1)
	require.NoError(t, err)

	_, err = tr.Refresh(context.Background())
	require.NoError(t, err)

	env.api.fail("/quote/AAPL", http.StatusUnauthorized)
	_, err = tr.Refresh(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUpstream)

	tr.mu.RLock()
	raw := tr.raw
	tr.mu.RUnlock()
	assert.Nil(t, raw)

	recent, _ := env.history.Recent(1)
	require.Len(t, recent, 1)
	assert.Equal(t, repository.FetchError, recent[0].Status)
}

func TestTracker_InvalidEquityReplyLeavesLineInvalid(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.tracker.AddEquity("ZZZZ", 5)
	require.NoError(t, err)

	p, err := env.tracker.Refresh(context.Background())
	require.NoError(t, err)
	require.Len(t, p.Equities, 1)
	assert.False(t, p.Equities[0].Valid)
	assert.Zero(t, p.Totals.Equity)
}

func TestTracker_StopMain(t *testing.T) {
	env := newTestEnv(t)
	tr := env.tracker

	env.api.mu.Lock()
	env.api.block = make(chan struct{})
	env.api.mu.Unlock()
	defer close(env.api.block)

	done := make(chan error, 1)
	go func() {
		_, err := tr.Refresh(context.Background())
		done <- err
	}()

	require.Eventually(t, func() bool { return tr.Flags().Fetching && tr.batch.Running() },
		5*time.Second, 10*time.Millisecond)

	// a second refresh is refused while the first runs
	_, err := tr.Refresh(context.Background())
	assert.True(t, apperrors.IsConflict(err))

	assert.True(t, tr.StopMain())
	select {
	case err := <-done:
		assert.True(t, apperrors.IsCanceled(err))
	case <-time.After(5 * time.Second):
		t.Fatal("refresh did not stop")
	}

	f := tr.Flags()
	assert.False(t, f.Fetching)
	assert.True(t, f.MainCanceled)
}

func TestTracker_StopAllCancelsSymbolAndHistoryFetches(t *testing.T) {
	env := newTestEnv(t)
	tr := env.tracker

	env.api.mu.Lock()
	env.api.block = make(chan struct{})
	env.api.mu.Unlock()
	defer close(env.api.block)

	symErr := make(chan error, 1)
	rsiErr := make(chan error, 1)
	go func() { symErr <- env.symbols.Refresh(context.Background()) }()
	go func() {
		_, err := env.rsi.View(context.Background(), "MSFT")
		rsiErr <- err
	}()

	require.Eventually(t, func() bool { return env.symbols.batch.Running() && env.rsi.batch.Running() },
		5*time.Second, 10*time.Millisecond)

	tr.StopAll()
	for _, ch := range []chan error{symErr, rsiErr} {
		select {
		case err := <-ch:
			assert.True(t, apperrors.IsCanceled(err), "got %v", err)
		case <-time.After(5 * time.Second):
			t.Fatal("fetch did not stop")
		}
	}
	assert.True(t, tr.Flags().Canceled)

	recent, err := env.history.Recent(5)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	kinds := map[string]string{}
	for _, r := range recent {
		kinds[r.Kind] = r.Status
	}
	assert.Equal(t, map[string]string{
		"symbols": repository.FetchCanceled,
		"history": repository.FetchCanceled,
	}, kinds)
}

func TestTracker_ToStrings(t *testing.T) {
	env := newTestEnv(t)
	tr := env.tracker
	require.NoError(t, env.symbols.Ensure(context.Background()))
	_, err := tr.AddEquity("MSFT", 4)
	require.NoError(t, err)
	require.NoError(t, tr.SetCash(1234.5))

	_, err = tr.Refresh(context.Background())
	require.NoError(t, err)

	r := tr.ToStrings()
	require.Len(t, r.Equities, 1)
	e := r.Equities[0]
	assert.Equal(t, "MSFT", e.Symbol)
	assert.Equal(t, "Microsoft Corporation - Common Stock", e.Name)
	assert.Equal(t, "$45.00", e.Price)
	assert.Equal(t, "($20.00)", e.DayGain)
	assert.Equal(t, "-10.00%", e.Gain)
	assert.Equal(t, "$1,234.50", r.Totals.Cash)
	assert.Len(t, r.Indices, 4)

	p := tr.Preferences()
	p.IndicesDisplayed = false
	p.DecimalPlaces = 3
	require.NoError(t, tr.SetPreferences(p))
	r = tr.ToStrings()
	assert.Empty(t, r.Indices)
	assert.Equal(t, "$45.000", r.Equities[0].Price)
}

func TestTracker_Equities(t *testing.T) {
	env := newTestEnv(t)
	tr := env.tracker

	_, err := tr.AddEquity("bad symbol", 1)
	assert.True(t, apperrors.IsValidation(err))
	_, err = tr.AddEquity("IBM", -1)
	assert.True(t, apperrors.IsValidation(err))

	_, err = tr.AddEquity("ibm", 3)
	require.NoError(t, err)
	_, err = tr.AddEquity("AAPL", 1)
	require.NoError(t, err)
	_, err = tr.AddEquity("IBM", 7)
	require.NoError(t, err)

	es := tr.Equities()
	require.Len(t, es, 2)
	assert.Equal(t, "AAPL", es[0].Symbol)
	assert.Equal(t, int64(7), es[1].Shares)

	require.NoError(t, tr.RemoveEquity("aapl"))
	assert.True(t, apperrors.IsNotFound(tr.RemoveEquity("AAPL")))

	n, err := tr.RemoveAllEquity()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Empty(t, tr.Equities())
}

func TestTracker_SetPreferences_Validates(t *testing.T) {
	tr := newTestEnv(t).tracker

	p := tr.Preferences()
	p.DecimalPlaces = 5
	assert.True(t, apperrors.IsValidation(tr.SetPreferences(p)))

	p = tr.Preferences()
	p.UpdatesPerMin = 0
	assert.True(t, apperrors.IsValidation(tr.SetPreferences(p)))

	p = tr.Preferences()
	p.UpdatesPerMin = 2
	p.UpdatesHours = 3
	require.NoError(t, tr.SetPreferences(p))
	every, after := tr.UpdateSchedule()
	assert.Equal(t, 30*time.Second, every)
	assert.Equal(t, 3*time.Hour, after)
}

func TestTracker_SetAPI_KeepsEmptyFields(t *testing.T) {
	env := newTestEnv(t)
	before := env.tracker.API()

	s, err := env.tracker.SetAPI(models.APISettings{Key: "new-key"})
	require.NoError(t, err)
	assert.Equal(t, "new-key", s.Key)
	assert.Equal(t, before.StockURL, s.StockURL)

	stored, err := env.settings.API()
	require.NoError(t, err)
	assert.Equal(t, s, stored)
}

func TestTracker_SaveSqlData(t *testing.T) {
	env := newTestEnv(t)
	tr := env.tracker

	require.NoError(t, tr.SaveView(models.View{Name: models.ViewMain, Width: 1280, Height: 800, X: 5, Y: 6}))
	assert.True(t, apperrors.IsValidation(tr.SaveView(models.View{Name: "other"})))

	// change memory behind the database's back, then save
	tr.mu.Lock()
	tr.cash = 99
	tr.metals[models.Gold] = models.Bullion{Metal: models.Gold, Ounces: 3, Premium: 1}
	tr.views[models.ViewRSI] = models.View{Name: models.ViewRSI, Width: 10, Height: 20}
	tr.prefs.MainFont = "Mono 12"
	tr.mu.Unlock()

	require.NoError(t, tr.SaveSqlData())

	cash, _ := env.settings.Cash()
	assert.Equal(t, 99.0, cash)
	b, _ := repository.NewBullionRepository(env.db).Get(models.Gold)
	assert.Equal(t, 3.0, b.Ounces)
	v, _ := env.settings.View(models.ViewRSI)
	require.NotNil(t, v)
	assert.Equal(t, 20, v.Height)
	p, _ := env.settings.Preferences()
	assert.Equal(t, "Mono 12", p.MainFont)
}

func TestTracker_RefreshFailureKeepsKeyOutOfHistory(t *testing.T) {
	env := newTestEnv(t)
	tr := env.tracker

	const key = "SUPERSECRETKEY123"
	_, err := tr.SetAPI(models.APISettings{StockURL: "http://127.0.0.1:1/quote?symbol=", Key: key})
	require.NoError(t, err)
	_, err = tr.AddEquity("AAPL", 10)
	require.NoError(t, err)

	_, err = tr.Refresh(context.Background())
	require.Error(t, err)
	assert.NotContains(t, err.Error(), key)

	recent, err := env.history.Recent(5)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, repository.FetchError, recent[0].Status)
	assert.NotEmpty(t, recent[0].ErrorMessage)
	assert.NotContains(t, recent[0].ErrorMessage, key)
}

func TestTracker_IsClosedFollowsClockUnlessClocksShown(t *testing.T) {
	tr := newTestEnv(t).tracker
	ny := tr.clock.loc

	tr.now = func() time.Time { return time.Date(2024, 2, 17, 12, 0, 0, 0, ny) }
	assert.True(t, tr.IsClosed())

	tr.now = func() time.Time { return time.Date(2024, 2, 15, 12, 0, 0, 0, ny) }
	assert.False(t, tr.IsClosed())

	p := tr.Preferences()
	p.ClocksDisplayed = true
	require.NoError(t, tr.SetPreferences(p))
	tr.SetClosed(true)
	assert.True(t, tr.IsClosed())
}

func TestTracker_ToStringsMarketClosedHonoursClocksShown(t *testing.T) {
	tr := newTestEnv(t).tracker
	ny := tr.clock.loc
	tr.now = func() time.Time { return time.Date(2024, 3, 5, 11, 0, 0, 0, ny) }

	assert.False(t, tr.ToStrings().MarketClosed)

	p := tr.Preferences()
	p.ClocksDisplayed = true
	require.NoError(t, tr.SetPreferences(p))
	tr.SetClosed(true)

	r := tr.ToStrings()
	assert.True(t, r.MarketClosed)
	assert.True(t, r.Status.Open, "the clock still reports the session")
	assert.Equal(t, tr.IsClosed(), r.MarketClosed)
}

func TestHistory_Prune(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.symbols.Refresh(context.Background()))

	n, err := env.history.Prune(time.Hour)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = env.history.Prune(-time.Minute)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	recent, err := env.history.Recent(5)
	require.NoError(t, err)
	assert.Empty(t, recent)
}
