package risk

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Historical-return statistics backing PortfolioRiskWithReturns. Returns are
// daily fractions (0.01 = 1%); 252 trading days per year.

const tradingDaysPerYear = 252

// Returns converts a price series to daily percentage returns.
func Returns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, (prices[i]-prices[i-1])/prices[i-1])
	}
	return returns
}

// AnnualizedVolatility is the standard deviation of daily returns scaled to
// a yearly horizon.
func AnnualizedVolatility(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	return stat.StdDev(returns, nil) * math.Sqrt(tradingDaysPerYear)
}

// SharpeRatio is the annualized mean return over annualized volatility,
// assuming a zero risk-free rate.
func SharpeRatio(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	sd := stat.StdDev(returns, nil)
	if sd == 0 {
		return 0
	}
	return stat.Mean(returns, nil) / sd * math.Sqrt(tradingDaysPerYear)
}

// DailyVaR estimates the one-day value at risk at the given confidence level
// as a positive fraction of portfolio value, using a Gaussian approximation
// of the return distribution.
func DailyVaR(returns []float64, confidence float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	mean := stat.Mean(returns, nil)
	sd := stat.StdDev(returns, nil)
	z := distuv.Normal{Mu: 0, Sigma: 1}.Quantile(1 - confidence)
	v := -(mean + z*sd)
	return math.Max(0, v)
}

// MaxDrawdown is the largest peak-to-trough decline of the cumulative return
// series, as a positive fraction.
func MaxDrawdown(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	equity := 1.0
	peak := 1.0
	maxDD := 0.0
	for _, r := range returns {
		equity *= 1 + r
		if equity > peak {
			peak = equity
		}
		if dd := (peak - equity) / peak; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// Beta is the covariance of asset and benchmark returns over the benchmark
// variance. Returns 1 when the benchmark has no variance.
func Beta(asset, benchmark []float64) float64 {
	if len(asset) != len(benchmark) || len(asset) < 2 {
		return 1
	}
	variance := stat.Variance(benchmark, nil)
	if variance == 0 {
		return 1
	}
	return stat.Covariance(asset, benchmark, nil) / variance
}
