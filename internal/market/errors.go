package market

import (
	"errors"
	"fmt"
	"time"
)

// ErrInsufficientHistory marks a symbol with fewer bars than the slow EMA
// period needs. The symbol is skipped and the batch continues.
var ErrInsufficientHistory = errors.New("insufficient history for slow ema")

// OrderingError reports a duplicate or out-of-order date in a bar series.
type OrderingError struct {
	Index     int
	Date      time.Time
	Duplicate bool
}

func (e *OrderingError) Error() string {
	if e.Duplicate {
		return fmt.Sprintf("duplicate bar date %s at index %d", e.Date.Format("2006-01-02"), e.Index)
	}
	return fmt.Sprintf("out of order bar date %s at index %d", e.Date.Format("2006-01-02"), e.Index)
}

// MissingFieldError reports a bar without a usable price field.
type MissingFieldError struct {
	Date  time.Time
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("bar %s is missing field %s", e.Date.Format("2006-01-02"), e.Field)
}
