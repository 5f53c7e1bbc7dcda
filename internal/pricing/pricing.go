// Package pricing computes ticket totals from a flight's base fare and the
// declared passenger composition. Pure; no storage access.
package pricing

import (
	apperrors "flight-booking/pkg/app_errors"

	"github.com/shopspring/decimal"
)

// 兒童票價為成人基準票價的一半
var childFareRatio = decimal.NewFromFloat(0.5)

// Quote 計算總價：base*adults + base*0.5*children。
// 至少一位成人；結果在建票時寫入後不再改變（改價需退票重訂）。
func Quote(baseFare decimal.Decimal, adultCount, childCount int) (decimal.Decimal, error) {
	if adultCount < 1 || childCount < 0 {
		return decimal.Zero, apperrors.ErrInvalidInput
	}
	if baseFare.IsNegative() {
		return decimal.Zero, apperrors.ErrInvalidInput
	}

	adultTotal := baseFare.Mul(decimal.NewFromInt(int64(adultCount)))
	childTotal := baseFare.Mul(childFareRatio).Mul(decimal.NewFromInt(int64(childCount)))

	return adultTotal.Add(childTotal), nil
}
