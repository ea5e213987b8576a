// Package indicators computes daily gains and the Relative Strength Index.
package indicators

// Period is the RSI look-back in trading days.
const Period = 14

// Gain returns the percent change from prev to cur.
func Gain(cur, prev float64) float64 {
	return 100 * ((cur - prev) / prev)
}

// RSI returns the relative strength index for the given smoothed averages.
// A window with no losses is fully overbought.
func RSI(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

// Wilder accumulates percent gains and yields an RSI once Period gains have
// been seen. The first Period gains seed simple averages; after that each
// gain is folded in with Wilder's smoothing, avg = (avg*13 + x) / 14.
type Wilder struct {
	n       int
	avgGain float64
	avgLoss float64
}

// Add folds one gain into the averages. It returns the RSI and true from
// the (Period+1)th gain onward.
func (w *Wilder) Add(gain float64) (float64, bool) {
	switch {
	case w.n < Period:
		if gain >= 0 {
			w.avgGain += gain
		} else {
			w.avgLoss += -gain
		}
		if w.n == Period-1 {
			w.avgGain /= Period
			w.avgLoss /= Period
		}
		w.n++
		return 0, false
	default:
		up, down := 0.0, 0.0
		if gain >= 0 {
			up = gain
		} else {
			down = -gain
		}
		w.avgGain = (w.avgGain*(Period-1) + up) / Period
		w.avgLoss = (w.avgLoss*(Period-1) + down) / Period
		w.n++
		return RSI(w.avgGain, w.avgLoss), true
	}
}

// Averages returns the current smoothed gain and loss.
func (w *Wilder) Averages() (gain, loss float64) {
	return w.avgGain, w.avgLoss
}

// Reset clears all accumulated state.
func (w *Wilder) Reset() {
	*w = Wilder{}
}

// Indicator describes an RSI value in trading terms.
func Indicator(rsi float64) string {
	switch {
	case rsi >= 80:
		return "Overbought, Strong Downtrend"
	case rsi >= 70:
		return "Overbought, Downtrend Likely"
	case rsi >= 60:
		return "Overbought, Downtrend Possible"
	case rsi > 50:
		return "Neutral, Slightly Overbought"
	case rsi >= 40:
		return "Neutral, Slightly Oversold"
	case rsi > 30:
		return "Oversold, Uptrend Possible"
	case rsi > 20:
		return "Oversold, Uptrend Likely"
	default:
		return "Oversold, Strong Uptrend"
	}
}
