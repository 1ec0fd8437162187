package assert

import (
	"fmt"
	"time"
)

func NotNil(value any) {
	if value == nil {
		panic("expected value to be not nil")
	}
}

func NotEmptyStr(str string) {
	if str == "" {
		panic("expected string to be non-empty")
	}
}

// ValidMonth panics when month is not one of the 12 calendar months.
func ValidMonth(month time.Month) {
	if month < time.January || month > time.December {
		panic(fmt.Sprintf("expected a calendar month, got %d", int(month)))
	}
}
