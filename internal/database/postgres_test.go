package database

import (
	"reflect"
	"testing"
)

func TestMigrationVersion(t *testing.T) {
	tests := []struct {
		name string
		want int
	}{
		{"001_conversations.sql", 1},
		{"012_add_index.sql", 12},
		{"conversations.sql", 0},
		{"abc_conversations.sql", 0},
		{"000_noop.sql", 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := migrationVersion(tc.name); got != tc.want {
				t.Errorf("Expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestPendingMigrations(t *testing.T) {
	files := []string{
		"010_later.sql",
		"README.md",
		"002_index.sql",
		"001_conversations.sql",
		"002_duplicate.sql",
		"notes.sql",
	}

	tests := []struct {
		name    string
		applied map[int]bool
		want    []migration
	}{
		{
			name: "fresh database",
			want: []migration{
				{version: 1, file: "001_conversations.sql"},
				{version: 2, file: "002_index.sql"},
				{version: 10, file: "010_later.sql"},
			},
		},
		{
			name:    "partially applied",
			applied: map[int]bool{1: true, 2: true},
			want:    []migration{{version: 10, file: "010_later.sql"}},
		},
		{
			name:    "up to date",
			applied: map[int]bool{1: true, 2: true, 10: true},
			want:    nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := pendingMigrations(files, tc.applied)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Expected %v, got %v", tc.want, got)
			}
		})
	}
}
