// Package repository implements the storage contracts on GORM. Target
// containment runs as JSON containment in SQL on MySQL; on other
// backends rows are filtered in memory after the query.
package repository

import (
	"encoding/json"

	"gorm.io/gorm"

	"openadr/internal/domain/storage"
	"openadr/internal/wire"
)

// supportsJSONContains reports whether the connected backend can run
// JSON_CONTAINS in the WHERE clause.
func supportsJSONContains(db *gorm.DB) bool {
	return db.Dialector.Name() == "mysql"
}

// mustTargetsJSON serializes a target list for a JSON_CONTAINS operand.
func mustTargetsJSON(targets []wire.Target) string {
	if targets == nil {
		targets = []wire.Target{}
	}
	raw, err := json.Marshal(targets)
	if err != nil {
		panic(err)
	}
	return string(raw)
}

// pageInMemory applies target filtering, privacy and pagination to rows
// already loaded from a backend without JSON containment support.
func pageInMemory[T any](items []T, targetsOf func(T) []wire.Target, filterTargets []wire.Target, perm storage.ReadPrivacy, page storage.Pagination) []T {
	out := make([]T, 0, len(items))
	var skipped int64
	for _, item := range items {
		targets := targetsOf(item)
		if !wire.TargetsSubset(filterTargets, targets) {
			continue
		}
		if !perm.Admits(targets) {
			continue
		}
		if skipped < page.Skip {
			skipped++
			continue
		}
		out = append(out, item)
		if int64(len(out)) >= page.Limit {
			break
		}
	}
	return out
}
