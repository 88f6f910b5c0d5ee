package optionlab

import "gonum.org/v1/gonum/stat/distuv"

// stdNormal has value-receiver methods only, so sharing it across goroutines is safe.
var stdNormal = distuv.UnitNormal

func normCDF(x float64) float64 {
	return stdNormal.CDF(x)
}

func normPDF(x float64) float64 {
	return stdNormal.Prob(x)
}
