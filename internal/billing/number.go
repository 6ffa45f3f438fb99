package billing

import (
	"fmt"
	"math/rand"
	"time"
)

// NewBillNumber formats SB-<1000..9999>-<last six digits of unix millis>.
func NewBillNumber(now time.Time) string {
	return fmt.Sprintf("SB-%d-%06d", 1000+rand.Intn(9000), now.UnixMilli()%1_000_000)
}
