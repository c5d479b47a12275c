package utils

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// CalculateDiscountPercentage returns the rounded percentage saved when a
// product is sold at discountPrice instead of basePrice. A missing discount
// price or one at/above the base price means no discount.
func CalculateDiscountPercentage(basePrice float64, discountPrice *float64) int {
	if discountPrice == nil || basePrice <= 0 || *discountPrice >= basePrice {
		return 0
	}
	return int(math.Round((basePrice - *discountPrice) / basePrice * 100))
}

// GenerateReceiptNumber returns a receipt id for payment orders.
func GenerateReceiptNumber() string {
	return fmt.Sprintf("REC-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

const earthRadiusMeters = 6371000

// Haversine returns the great-circle distance in meters between two WGS84
// points given as (longitude, latitude) pairs.
func Haversine(lon1, lat1, lon2, lat2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// istOffset is UTC+5:30.
var istOffset = time.FixedZone("IST", 5*3600+30*60)

// ISTDayWindow returns the start and end of the current day in IST, used for
// "today's deliveries" dashboard windows.
func ISTDayWindow() (time.Time, time.Time) {
	now := time.Now().In(istOffset)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, istOffset)
	return start, start.Add(24 * time.Hour)
}

// YearRange returns [Jan 1 of year, Jan 1 of year+1).
func YearRange(year int) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(1, 0, 0)
}
