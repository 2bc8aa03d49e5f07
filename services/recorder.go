package services

import (
	"pizzeria-telegram/models"

	"github.com/shopspring/decimal"
)

// Recorder observes session events for metrics.
type Recorder interface {
	ItemAdded(item models.MenuItem)
	CouponApplied(code string)
	CouponRejected()
	OrderPlaced(total decimal.Decimal)
	CountdownStarted()
	CountdownStopped()
	OrderFree()
}

type NopRecorder struct{}

func (NopRecorder) ItemAdded(models.MenuItem)   {}
func (NopRecorder) CouponApplied(string)        {}
func (NopRecorder) CouponRejected()             {}
func (NopRecorder) OrderPlaced(decimal.Decimal) {}
func (NopRecorder) CountdownStarted()           {}
func (NopRecorder) CountdownStopped()           {}
func (NopRecorder) OrderFree()                  {}
