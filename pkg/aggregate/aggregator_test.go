package aggregate

import (
	"strings"
	"testing"
)

func TestSearchViewDDLMatchesRefreshTarget(t *testing.T) {
	if !strings.Contains(searchViewDDL, "CREATE MATERIALIZED VIEW IF NOT EXISTS "+searchViewName) {
		t.Fatalf("migration does not create %s: %s", searchViewName, searchViewDDL)
	}
	if !strings.Contains(searchViewRefresh(), "REFRESH MATERIALIZED VIEW CONCURRENTLY "+searchViewName) {
		t.Fatalf("refresh targets a different view: %s", searchViewRefresh())
	}
}

func TestSearchViewHasUniqueIndexForConcurrentRefresh(t *testing.T) {
	if !strings.Contains(searchViewIndexDDL, "CREATE UNIQUE INDEX") {
		t.Fatalf("concurrent refresh requires a unique index: %s", searchViewIndexDDL)
	}
	if !strings.Contains(searchViewIndexDDL, "ON "+searchViewName) {
		t.Fatalf("index is not on %s: %s", searchViewName, searchViewIndexDDL)
	}
}
