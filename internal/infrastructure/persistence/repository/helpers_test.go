package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"openadr/internal/domain/storage"
	"openadr/internal/wire"
)

type row struct {
	name    string
	targets []wire.Target
}

func rowTargets(r row) []wire.Target { return r.targets }

func TestPageInMemoryPrivacy(t *testing.T) {
	rows := []row{
		{"e1", []wire.Target{"private-1"}},
		{"e2", []wire.Target{"group-1", "group-2"}},
		{"e3", []wire.Target{"group-1"}},
		{"e4", nil},
	}
	perm := storage.PrivacyFor([]wire.Target{"group-1", "private-value"})
	page := storage.Pagination{Limit: 50}

	got := pageInMemory(rows, rowTargets, nil, perm, page)
	names := make([]string, 0, len(got))
	for _, r := range got {
		names = append(names, r.name)
	}
	assert.Equal(t, []string{"e3", "e4"}, names)
}

func TestPageInMemoryTargetFilterAndPaging(t *testing.T) {
	rows := []row{
		{"a", []wire.Target{"g", "x"}},
		{"b", []wire.Target{"g"}},
		{"c", []wire.Target{"g", "y"}},
		{"d", []wire.Target{"z"}},
	}

	got := pageInMemory(rows, rowTargets, []wire.Target{"g"}, storage.ReadAllPrivacy, storage.Pagination{Skip: 1, Limit: 1})
	assert.Len(t, got, 1)
	assert.Equal(t, "b", got[0].name)
}

func TestMustTargetsJSON(t *testing.T) {
	assert.JSONEq(t, `[]`, mustTargetsJSON(nil))
	assert.JSONEq(t, `["group-1","GROUP:g2"]`, mustTargetsJSON([]wire.Target{"group-1", "GROUP:g2"}))
}
