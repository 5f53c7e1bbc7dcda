// Package seatmap assigns seat codes on a fixed cabin layout of rows A-F
// with seats 1-30 per row (180 seats). Allocation derives the free set from
// the seats already taken and picks one uniformly, so a full cabin is
// detected immediately instead of by retrying random draws.
package seatmap

import (
	"fmt"
	"math/rand"

	apperrors "flight-booking/pkg/app_errors"
)

const (
	rowCount     = 6  // rows A-F
	seatsPerRow  = 30 // seats 1-30
	LayoutVolume = rowCount * seatsPerRow
)

// Codes 回傳佈局內全部座位代碼（如 "C17"），列序由 A1 到 F30。
func Codes() []string {
	codes := make([]string, 0, LayoutVolume)
	for r := 0; r < rowCount; r++ {
		row := string(rune('A' + r))
		for n := 1; n <= seatsPerRow; n++ {
			codes = append(codes, fmt.Sprintf("%s%d", row, n))
		}
	}
	return codes
}

// Allocate 從已佔用集合推導空位集合，均勻挑一個；滿艙回 ErrSeatCapacityExhausted。
// taken 的 key 為座位代碼（如 "C17"）。
func Allocate(taken map[string]bool) (string, error) {
	free := make([]string, 0, LayoutVolume-len(taken))
	for _, code := range Codes() {
		if !taken[code] {
			free = append(free, code)
		}
	}
	if len(free) == 0 {
		return "", apperrors.ErrSeatCapacityExhausted
	}
	return free[rand.Intn(len(free))], nil
}

// IsValidSeat 座位代碼是否落在佈局內
func IsValidSeat(code string) bool {
	if len(code) < 2 || len(code) > 3 {
		return false
	}
	row := code[0]
	if row < 'A' || row > 'F' {
		return false
	}
	n := 0
	for _, c := range code[1:] {
		if c < '0' || c > '9' {
			return false
		}
		n = n*10 + int(c-'0')
	}
	return n >= 1 && n <= seatsPerRow
}
