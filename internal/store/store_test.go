package store

import (
	"errors"
	"testing"
	"time"

	"github.com/meanun/linkshelf/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Admin{}, &models.Title{}, &models.Episode{},
		&models.AuditLog{}, &models.UsageLog{}, &models.TitleView{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// --- Titles ---

func TestCreateTitle_Duplicate(t *testing.T) {
	db := testDB(t)
	if _, err := CreateTitle(db, "One Piece", 1); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := CreateTitle(db, "One Piece", 2)
	if !errors.Is(err, ErrTitleExists) {
		t.Errorf("err = %v, want ErrTitleExists", err)
	}
}

func TestCreateTitle_EmptyName(t *testing.T) {
	db := testDB(t)
	if _, err := CreateTitle(db, "   ", 1); err == nil {
		t.Fatal("expected error for blank name")
	}
}

func TestCreateTitle_StampsOwner(t *testing.T) {
	db := testDB(t)
	title, err := CreateTitle(db, "Show X", 42)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if title.CreatedBy != 42 {
		t.Errorf("CreatedBy = %d, want 42", title.CreatedBy)
	}
}

func TestListTitles_CreationOrder(t *testing.T) {
	db := testDB(t)
	for _, name := range []string{"Zeta", "Alpha", "Mid"} {
		if _, err := CreateTitle(db, name, 1); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}
	titles, err := ListTitles(db)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"Zeta", "Alpha", "Mid"}
	for i, w := range want {
		if titles[i].Name != w {
			t.Errorf("titles[%d] = %q, want %q", i, titles[i].Name, w)
		}
	}
}

func TestSearchTitles_CaseInsensitive(t *testing.T) {
	db := testDB(t)
	CreateTitle(db, "One Piece", 1)
	CreateTitle(db, "Bleach", 1)
	got, err := SearchTitles(db, "piece")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 || got[0].Name != "One Piece" {
		t.Errorf("search result = %v", got)
	}
}

func TestRenameTitle_NotFound(t *testing.T) {
	db := testDB(t)
	if err := RenameTitle(db, 999, "New"); !errors.Is(err, ErrTitleNotFound) {
		t.Errorf("err = %v, want ErrTitleNotFound", err)
	}
}

func TestDeleteTitle_CascadesEpisodes(t *testing.T) {
	db := testDB(t)
	title, _ := CreateTitle(db, "Show X", 1)
	ep1, _ := AddEpisode(db, title.ID, "Ep1", "http://a.co/1", 1)
	ep2, _ := AddEpisode(db, title.ID, "Ep2", "http://a.co/2", 1)

	if err := DeleteTitle(db, title.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	for _, id := range []uint{ep1.ID, ep2.ID} {
		if _, err := GetEpisode(db, id); !errors.Is(err, ErrEpisodeNotFound) {
			t.Errorf("episode %d: err = %v, want ErrEpisodeNotFound", id, err)
		}
	}
	if _, err := GetTitle(db, title.ID); !errors.Is(err, ErrTitleNotFound) {
		t.Errorf("title: err = %v, want ErrTitleNotFound", err)
	}
}

func TestDeleteTitle_NotFound(t *testing.T) {
	db := testDB(t)
	if err := DeleteTitle(db, 12345); !errors.Is(err, ErrTitleNotFound) {
		t.Errorf("err = %v, want ErrTitleNotFound", err)
	}
}

// --- Episodes ---

func TestAddEpisode_MissingTitle(t *testing.T) {
	db := testDB(t)
	if _, err := AddEpisode(db, 7, "Ep1", "http://a.co/1", 1); !errors.Is(err, ErrTitleNotFound) {
		t.Errorf("err = %v, want ErrTitleNotFound", err)
	}
}

func TestAddEpisodeBatch_PreservesOrder(t *testing.T) {
	db := testDB(t)
	title, _ := CreateTitle(db, "Show X", 1)
	pairs := [][2]string{
		{"Ep1", "http://a.co/1"},
		{"Ep2", "http://a.co/2"},
		{"Ep3", "http://a.co/3"},
	}
	if _, err := AddEpisodeBatch(db, title.ID, pairs, 1); err != nil {
		t.Fatalf("batch: %v", err)
	}
	eps, _ := ListEpisodes(db, title.ID)
	if len(eps) != 3 {
		t.Fatalf("got %d episodes", len(eps))
	}
	for i, p := range pairs {
		if eps[i].Name != p[0] || eps[i].URL != p[1] {
			t.Errorf("eps[%d] = %s %s, want %s %s", i, eps[i].Name, eps[i].URL, p[0], p[1])
		}
	}
}

func TestAddEpisodeBatch_RollsBackOnBadRow(t *testing.T) {
	db := testDB(t)
	title, _ := CreateTitle(db, "Show X", 1)
	pairs := [][2]string{
		{"Ep1", "http://a.co/1"},
		{"", "http://a.co/2"}, // bad row
	}
	if _, err := AddEpisodeBatch(db, title.ID, pairs, 1); err == nil {
		t.Fatal("expected error for bad row")
	}
	eps, _ := ListEpisodes(db, title.ID)
	if len(eps) != 0 {
		t.Errorf("batch not rolled back: %d episodes remain", len(eps))
	}
}

func TestPrevNextEpisodeID(t *testing.T) {
	db := testDB(t)
	title, _ := CreateTitle(db, "Show X", 1)
	a, _ := AddEpisode(db, title.ID, "A", "http://a.co/a", 1)
	b, _ := AddEpisode(db, title.ID, "B", "http://a.co/b", 1)
	c, _ := AddEpisode(db, title.ID, "C", "http://a.co/c", 1)

	if prev, _ := PrevEpisodeID(db, title.ID, a.ID); prev != 0 {
		t.Errorf("prev of first = %d, want 0", prev)
	}
	if prev, _ := PrevEpisodeID(db, title.ID, b.ID); prev != a.ID {
		t.Errorf("prev of b = %d, want %d", prev, a.ID)
	}
	if next, _ := NextEpisodeID(db, title.ID, b.ID); next != c.ID {
		t.Errorf("next of b = %d, want %d", next, c.ID)
	}
	if next, _ := NextEpisodeID(db, title.ID, c.ID); next != 0 {
		t.Errorf("next of last = %d, want 0", next)
	}
}

func TestUpdateEpisode_NotFound(t *testing.T) {
	db := testDB(t)
	if err := UpdateEpisode(db, 99, "N", "http://a.co"); !errors.Is(err, ErrEpisodeNotFound) {
		t.Errorf("err = %v, want ErrEpisodeNotFound", err)
	}
}

// --- Admins ---

func TestAdminLifecycle(t *testing.T) {
	db := testDB(t)
	if err := AddAdmin(db, 100); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := AddAdmin(db, 100); !errors.Is(err, ErrAdminExists) {
		t.Errorf("duplicate add: err = %v, want ErrAdminExists", err)
	}
	ok, err := IsAddedAdmin(db, 100)
	if err != nil || !ok {
		t.Errorf("IsAddedAdmin(100) = %v, %v", ok, err)
	}
	if err := RemoveAdmin(db, 100); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := RemoveAdmin(db, 100); !errors.Is(err, ErrAdminNotFound) {
		t.Errorf("second remove: err = %v, want ErrAdminNotFound", err)
	}
	ok, _ = IsAddedAdmin(db, 100)
	if ok {
		t.Error("IsAddedAdmin after removal = true")
	}
}

func TestListAdmins_Sorted(t *testing.T) {
	db := testDB(t)
	for _, id := range []int64{30, 10, 20} {
		AddAdmin(db, id)
	}
	ids, err := ListAdmins(db)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []int64{10, 20, 30}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %d, want %d", i, ids[i], want[i])
		}
	}
}

// --- Audit and stats ---

func TestAuditTrail(t *testing.T) {
	db := testDB(t)
	AppendAudit(db, 1, "add_title", "title_id=1")
	AppendAudit(db, 1, "delete_title", "title_id=1")

	logs, err := RecentAudit(db, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("got %d logs", len(logs))
	}
	if logs[0].Action != "delete_title" {
		t.Errorf("newest first: logs[0].Action = %q", logs[0].Action)
	}
}

func TestDuplicateLinks(t *testing.T) {
	db := testDB(t)
	title, _ := CreateTitle(db, "Show X", 1)
	AddEpisode(db, title.ID, "Ep1", "http://a.co/same", 1)
	AddEpisode(db, title.ID, "Ep2", "http://a.co/same", 1)
	AddEpisode(db, title.ID, "Ep3", "http://a.co/unique", 1)

	rows, err := DuplicateLinks(db)
	if err != nil {
		t.Fatalf("duplicates: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d duplicate usages, want 2", len(rows))
	}
	for _, r := range rows {
		if r.URL != "http://a.co/same" || r.Uses != 2 {
			t.Errorf("row = %+v", r)
		}
	}
}

func TestTopTitles(t *testing.T) {
	db := testDB(t)
	a, _ := CreateTitle(db, "A", 1)
	b, _ := CreateTitle(db, "B", 1)
	AddView(db, a.ID, 1)
	AddView(db, a.ID, 2)
	AddView(db, b.ID, 1)

	rows, err := TopTitles(db, 10)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(rows) != 2 || rows[0].TitleName != "A" || rows[0].Views != 2 {
		t.Errorf("rows = %+v", rows)
	}
}

func TestTopUsersForMonth_Window(t *testing.T) {
	db := testDB(t)
	AddUsage(db, 7, "link")
	AddUsage(db, 7, "link")
	AddUsage(db, 8, "link")
	AddUsage(db, 9, "other")

	start := time.Now().Add(-time.Hour)
	end := time.Now().Add(time.Hour)
	rows, err := TopUsersForMonth(db, "link", start, end, 10)
	if err != nil {
		t.Fatalf("top users: %v", err)
	}
	if len(rows) != 2 || rows[0].UserID != 7 || rows[0].Uses != 2 {
		t.Errorf("rows = %+v", rows)
	}

	// Nothing outside the window.
	rows, _ = TopUsersForMonth(db, "link", end, end.Add(time.Hour), 10)
	if len(rows) != 0 {
		t.Errorf("out-of-window rows = %+v", rows)
	}
}

func TestUpdateCountsSince(t *testing.T) {
	db := testDB(t)
	title, _ := CreateTitle(db, "Show X", 1)
	AddEpisode(db, title.ID, "Ep1", "http://a.co/1", 1)
	AddEpisode(db, title.ID, "Ep2", "http://a.co/2", 1)

	rows, err := UpdateCountsSince(db, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if len(rows) != 1 || rows[0].Added != 2 || rows[0].TitleName != "Show X" {
		t.Errorf("rows = %+v", rows)
	}
}

func TestLastUpdateForTitle_NoEpisodes(t *testing.T) {
	db := testDB(t)
	title, _ := CreateTitle(db, "Show X", 1)
	stat, err := LastUpdateForTitle(db, title.ID)
	if err != nil {
		t.Fatalf("last update: %v", err)
	}
	if stat.TotalLinks != 0 || !stat.LastUpdate.IsZero() {
		t.Errorf("stat = %+v", stat)
	}
}
