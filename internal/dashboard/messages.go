package dashboard

import (
	"crypto-forecast-dashboard/internal/predictor"
	"crypto-forecast-dashboard/internal/types"
)

// Messages delivered back into Update by the fetch commands. Each carries
// the attempt number its slot handed out at dispatch so arrivals can be
// tied to the request that produced them.

type predictionMsg struct {
	seq      uint64
	values   predictor.FormValues
	response types.PredictionResponse
	err      error
}

type moversMsg struct {
	seq    uint64
	movers types.MarketMovers
	err    error
}

type newsMsg struct {
	seq  uint64
	news types.NewsResponse
	err  error
}

type chartSavedMsg struct {
	path string
	err  error
}
