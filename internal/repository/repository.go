package repository

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("record not found")

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// pair 用于批量查询 (key, value) 两列
type pair struct {
	K string
	V string
}

func group(rows []pair) map[string][]string {
	out := make(map[string][]string)
	for _, r := range rows {
		out[r.K] = append(out[r.K], r.V)
	}
	return out
}
