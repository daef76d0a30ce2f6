package model

import "time"

// User is an authenticated account. The id doubles as the persona id and
// every other client-visible identifier.
type User struct {
	ID        uint32
	Username  string
	Password  string // bcrypt hash
	CreatedAt time.Time
}

// CurrencyType names one of the three wallet currencies.
type CurrencyType string

const (
	CurrencyMtx     CurrencyType = "MTXCurrency"
	CurrencyGrind   CurrencyType = "GrindCurrency"
	CurrencyMission CurrencyType = "MissionCurrency"
)

// MaxSafeCurrency caps every balance; add operations clamp to it.
const MaxSafeCurrency uint32 = 100_000_000

// CurrencyBalance is one wallet row, keyed by (user, type).
type CurrencyBalance struct {
	UserID  uint32
	Type    CurrencyType
	Balance uint32
}

// ClampCurrency applies the balance cap to prev + delta.
func ClampCurrency(prev, delta uint32) uint32 {
	sum := uint64(prev) + uint64(delta)
	if sum > uint64(MaxSafeCurrency) {
		return MaxSafeCurrency
	}
	return uint32(sum)
}
