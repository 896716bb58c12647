package util

import "time"

// Clock отдаёт текущее время. Выделен в интерфейс, чтобы в тестах
// можно было сдвигать время и проверять истечение секретов.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
