package utils

import "time"

func StringPtr(s string) *string {
	return &s
}

func IntPtr(i int) *int {
	return &i
}

func Float64Ptr(f float64) *float64 {
	return &f
}

func TimePtr(t time.Time) *time.Time {
	return &t
}

func PtrString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func PtrInt(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}

func PtrFloat64(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

func PtrTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}

	return *t
}
