package state

import "crypto-forecast-dashboard/internal/types"

// Container composes the three dashboard slots. Each slot carries its own
// error, so a failed movers or news fetch never touches a successful
// prediction.
type Container struct {
	Prediction State[types.PredictionResponse]
	Movers     State[types.MarketMovers]
	News       State[types.NewsResponse]
}

// AnyLoading reports whether any of the three requests is in flight.
func (c *Container) AnyLoading() bool {
	return c.Prediction.Loading() || c.Movers.Loading() || c.News.Loading()
}

// ResetSecondary returns the movers and news slots to idle. Used when a new
// submission targets a provider that feeds different secondary panels.
func (c *Container) ResetSecondary() {
	c.Movers.Reset()
	c.News.Reset()
}
