package stats

import "gonum.org/v1/gonum/stat/distuv"

var standardNormal = distuv.Normal{Mu: 0, Sigma: 1}

// ZVal returns the two-tailed z-value for a confidence level given in
// percent (for example 99).
func ZVal(confidence float64) float64 {
	return standardNormal.Quantile((1 + confidence/100) / 2)
}

// HalfWidth is the half width of the confidence interval around the mean of s.
func (s *Statistic) HalfWidth(confidence float64) float64 {
	return ZVal(confidence) * s.StandardError()
}
