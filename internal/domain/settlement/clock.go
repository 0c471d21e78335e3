package settlement

import "time"

// Clock 現在時刻の取得元
type Clock interface {
	Now() time.Time
}

// SystemClock システム時刻
type SystemClock struct{}

// Now 現在時刻を返す
func (SystemClock) Now() time.Time {
	return time.Now()
}
