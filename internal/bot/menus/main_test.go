package menus

import (
	"testing"

	"github.com/vladimiradmaev/bp-assistant/internal/database"
)

func makeReadings(n int) []database.Reading {
	readings := make([]database.Reading, n)
	for i := range readings {
		readings[i].ID = uint(i + 1)
	}
	return readings
}

func TestHistoryPageSingleShortPage(t *testing.T) {
	page, prev, next := historyPage(makeReadings(3), 0)

	if len(page) != 3 {
		t.Fatalf("expected all 3 readings on one page, got %d", len(page))
	}
	if prev != -1 || next != -1 {
		t.Errorf("a single page needs no navigation, got prev %d next %d", prev, next)
	}
}

func TestHistoryPageWalksTheWholeList(t *testing.T) {
	readings := makeReadings(23)

	page, prev, next := historyPage(readings, 0)
	if len(page) != historyPageSize || page[0].ID != 1 {
		t.Fatalf("unexpected first page: %d readings starting at #%d", len(page), page[0].ID)
	}
	if prev != -1 {
		t.Errorf("first page has nothing newer, got prev %d", prev)
	}
	if next != historyPageSize {
		t.Fatalf("expected next offset %d, got %d", historyPageSize, next)
	}

	page, prev, next = historyPage(readings, next)
	if len(page) != historyPageSize || page[0].ID != 11 {
		t.Fatalf("unexpected second page: %d readings starting at #%d", len(page), page[0].ID)
	}
	if prev != 0 {
		t.Errorf("expected prev offset 0, got %d", prev)
	}
	if next != 2*historyPageSize {
		t.Fatalf("expected next offset %d, got %d", 2*historyPageSize, next)
	}

	// Every reading must be reachable, including the last partial page
	page, prev, next = historyPage(readings, next)
	if len(page) != 3 || page[2].ID != 23 {
		t.Fatalf("unexpected last page: %d readings ending at #%d", len(page), page[len(page)-1].ID)
	}
	if prev != historyPageSize {
		t.Errorf("expected prev offset %d, got %d", historyPageSize, prev)
	}
	if next != -1 {
		t.Errorf("last page has nothing older, got next %d", next)
	}
}

func TestHistoryPageClampsBadOffsets(t *testing.T) {
	readings := makeReadings(5)

	for _, offset := range []int{-1, 5, 99} {
		page, _, _ := historyPage(readings, offset)
		if len(page) != 5 || page[0].ID != 1 {
			t.Errorf("offset %d should fall back to the first page, got %d readings starting at #%d",
				offset, len(page), page[0].ID)
		}
	}
}
