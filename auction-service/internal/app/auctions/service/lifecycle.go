package service

import (
	"strconv"
	"time"

	"auctionhouse/auction-service/internal/app/auctions/entity"

	"github.com/shopspring/decimal"
)

const (
	// MinAuctionDuration is the shortest time between creation and closing.
	MinAuctionDuration = 15 * 24 * time.Hour
	// LastCallWindow is how close to closing an auction without bids is flagged.
	LastCallWindow = time.Hour

	defaultRating = 1.0
	minRating     = 1
	maxRating     = 5
)

var maxPrice = decimal.New(1, 8) // numeric(10,2)

func IsOpen(a *entity.Auction, now time.Time) bool {
	return a.ClosingDate.After(now)
}

// LastCall reports an auction about to close without a single bid.
// It does not check IsOpen: a closed auction without bids is also flagged.
func LastCall(a *entity.Auction, bidCount int64, now time.Time) bool {
	return a.ClosingDate.Sub(now) < LastCallWindow && bidCount == 0
}

// AverageRating is the mean of values rounded to two decimals, or 1.0 for
// an auction nobody has rated.
func AverageRating(values []int) float64 {
	var sum int64
	for _, v := range values {
		sum += int64(v)
	}
	return averageFromStats(entity.RatingStats{Count: int64(len(values)), Sum: sum})
}

func averageFromStats(stats entity.RatingStats) float64 {
	if stats.Count == 0 {
		return defaultRating
	}
	return round2(float64(stats.Sum) / float64(stats.Count))
}

// round2 rounds half to even on the binary value, as FormatFloat does.
func round2(v float64) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	return r
}

func ValidateClosingDateForCreate(closing, now time.Time) error {
	if err := ValidateClosingDateForUpdate(closing, now); err != nil {
		return err
	}
	if closing.Sub(now) < MinAuctionDuration {
		return ErrClosingDateTooSoon
	}
	return nil
}

func ValidateClosingDateForUpdate(closing, now time.Time) error {
	if !closing.After(now) {
		return ErrInvalidClosingDate
	}
	return nil
}

// validatePrice enforces numeric(10,2): at most two decimal places and
// eight integer digits.
func validatePrice(field string, price decimal.Decimal) error {
	if !price.Round(2).Equal(price) {
		return InvalidField(field, "Ensure that there are no more than 2 decimal places.")
	}
	if price.Abs().GreaterThanOrEqual(maxPrice) {
		return InvalidField(field, "Ensure that there are no more than 10 digits in total.")
	}
	return nil
}

func validateRatingValue(v int) error {
	if v < minRating || v > maxRating {
		return ErrInvalidRatingValue
	}
	return nil
}
