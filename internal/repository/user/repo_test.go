package user

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kailas-cloud/usersearch/internal/domain/query"
	domuser "github.com/kailas-cloud/usersearch/internal/domain/user"
)

var base = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func pic(s string) *string { return &s }

// seed rows: id order equals insertion order.
var seed = []domuser.Record{
	{FullName: "Anna Smith", Username: "anna", Gender: "Female", ProfilePic: pic("/img/1.png"), CreatedAt: base},
	{FullName: "Bob Stone", Username: "bobby_s", Gender: "Male", ProfilePic: nil, CreatedAt: base.Add(time.Hour)},
	{FullName: "Taylor Swift", Username: "tswift", Gender: "Female", ProfilePic: pic(""), CreatedAt: base.Add(2 * time.Hour)},
	{FullName: "Jo Lee", Username: "jolee", Gender: "Other", ProfilePic: pic("/img/4.png"), CreatedAt: base.Add(3 * time.Hour)},
	{FullName: "John Taylor", Username: "jt", Gender: "Male", ProfilePic: pic("/img/5.png"), CreatedAt: base.Add(4 * time.Hour)},
	{FullName: "Maria 100%_Real", Username: "maria", Gender: "Female", ProfilePic: nil, CreatedAt: base.Add(5 * time.Hour)},
}

func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	// one connection, one in-memory database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	r := New(db)
	ctx := context.Background()
	if err := r.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := r.CreateBatch(ctx, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return r
}

func names(records []domuser.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.FullName
	}
	return out
}

func TestApply_Filters(t *testing.T) {
	r := newTestRepo(t)
	tests := []struct {
		name   string
		fields query.Fields
		want   []string
	}{
		{
			name:   "no filters keeps insertion order",
			fields: query.Fields{},
			want:   []string{"Anna Smith", "Bob Stone", "Taylor Swift", "Jo Lee", "John Taylor", "Maria 100%_Real"},
		},
		{
			name:   "gender",
			fields: query.Fields{Gender: query.Ptr(query.GenderFemale)},
			want:   []string{"Anna Smith", "Taylor Swift", "Maria 100%_Real"},
		},
		{
			name:   "name substring is case-insensitive",
			fields: query.Fields{NameSubstr: query.Ptr("TAYLOR")},
			want:   []string{"Taylor Swift", "John Taylor"},
		},
		{
			name:   "name prefix",
			fields: query.Fields{NameSubstr: query.Ptr("taylor"), StartsWith: true},
			want:   []string{"Taylor Swift"},
		},
		{
			name:   "like wildcards are literal",
			fields: query.Fields{NameSubstr: query.Ptr("%_")},
			want:   []string{"Maria 100%_Real"},
		},
		{
			name:   "underscore does not match any char",
			fields: query.Fields{NameSubstr: query.Ptr("J_")},
			want:   []string{},
		},
		{
			// AnnaSmith=9, BobStone=8, TaylorSwift=11, JoLee=5, JohnTaylor=10, Maria100%_Real=14
			name:   "odd letter count ignores spaces",
			fields: query.Fields{Parity: query.Ptr(query.ParityOdd)},
			want:   []string{"Anna Smith", "Taylor Swift", "Jo Lee"},
		},
		{
			name:   "even letter count",
			fields: query.Fields{Parity: query.Ptr(query.ParityEven)},
			want:   []string{"Bob Stone", "John Taylor", "Maria 100%_Real"},
		},
		{
			name:   "has picture excludes empty path",
			fields: query.Fields{HasProfilePic: query.Ptr(true)},
			want:   []string{"Anna Smith", "Jo Lee", "John Taylor"},
		},
		{
			name:   "no picture includes empty path",
			fields: query.Fields{HasProfilePic: query.Ptr(false)},
			want:   []string{"Bob Stone", "Taylor Swift", "Maria 100%_Real"},
		},
		{
			name:   "conjunctive",
			fields: query.Fields{Gender: query.Ptr(query.GenderFemale), HasProfilePic: query.Ptr(false), Parity: query.Ptr(query.ParityOdd)},
			want:   []string{"Taylor Swift"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, total, err := r.Apply(context.Background(), query.New(tc.fields, true, nil), 0, 50)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tc.want, names(got)); diff != "" {
				t.Errorf("rows mismatch (-want +got):\n%s", diff)
			}
			if total != int64(len(tc.want)) {
				t.Errorf("total = %d, want %d", total, len(tc.want))
			}
		})
	}
}

func TestApply_Sort(t *testing.T) {
	r := newTestRepo(t)
	asc, desc := query.Asc, query.Desc
	tests := []struct {
		name  string
		by    query.SortField
		order *query.SortOrder
		want  []string
	}{
		{"newest first", query.SortCreatedAt, &desc, []string{"Maria 100%_Real", "John Taylor", "Jo Lee", "Taylor Swift", "Bob Stone", "Anna Smith"}},
		{"oldest first", query.SortCreatedAt, &asc, []string{"Anna Smith", "Bob Stone", "Taylor Swift", "Jo Lee", "John Taylor", "Maria 100%_Real"}},
		{"name a-z", query.SortName, &asc, []string{"Anna Smith", "Bob Stone", "Jo Lee", "John Taylor", "Maria 100%_Real", "Taylor Swift"}},
		{"shortest name", query.SortNameLength, &asc, []string{"Jo Lee", "Bob Stone", "Anna Smith", "John Taylor", "Taylor Swift", "Maria 100%_Real"}},
		{"longest username, id breaks ties", query.SortUsernameLength, nil, []string{"Bob Stone", "Taylor Swift", "Jo Lee", "Maria 100%_Real", "Anna Smith", "John Taylor"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := query.New(query.Fields{SortBy: &tc.by, SortOrder: tc.order}, true, nil)
			got, _, err := r.Apply(context.Background(), f, 0, 50)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tc.want, names(got)); diff != "" {
				t.Errorf("order mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApply_PaginationAfterCount(t *testing.T) {
	r := newTestRepo(t)
	f := query.New(query.Fields{SortBy: query.Ptr(query.SortCreatedAt), SortOrder: query.Ptr(query.Asc)}, true, nil)

	got, total, err := r.Apply(context.Background(), f, 2, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 6 {
		t.Errorf("total must ignore pagination, got %d", total)
	}
	if diff := cmp.Diff([]string{"Taylor Swift", "Jo Lee"}, names(got)); diff != "" {
		t.Errorf("page mismatch (-want +got):\n%s", diff)
	}

	got, total, err = r.Apply(context.Background(), f, 10, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 6 || len(got) != 0 {
		t.Errorf("past the end: total=%d rows=%d", total, len(got))
	}
}

func TestApply_StoreErrorPropagates(t *testing.T) {
	r := newTestRepo(t)
	sqlDB, _ := r.db.DB()
	_ = sqlDB.Close()

	if _, _, err := r.Apply(context.Background(), query.Empty(), 0, 10); err == nil {
		t.Fatal("expected error from closed database")
	}
}

func TestCreateBatch_FillsIDs(t *testing.T) {
	r := newTestRepo(t)
	out, err := r.CreateBatch(context.Background(), []domuser.Record{{FullName: "New Person", Username: "newp", Gender: "Other"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[0].ID == 0 || out[0].CreatedAt.IsZero() {
		t.Errorf("expected generated id and timestamp, got %+v", out[0])
	}
	n, err := r.Count(context.Background())
	if err != nil || n != int64(len(seed)+1) {
		t.Errorf("Count = %d, %v", n, err)
	}
}

func TestNamePattern(t *testing.T) {
	if got := namePattern(`a%b_c\`, false); got != `%a\%b\_c\\%` {
		t.Errorf("namePattern = %q", got)
	}
	if got := namePattern("Jo", true); got != "Jo%" {
		t.Errorf("namePattern prefix = %q", got)
	}
}
