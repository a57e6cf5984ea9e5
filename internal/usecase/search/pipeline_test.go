package search

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kailas-cloud/usersearch/internal/detect"
	"github.com/kailas-cloud/usersearch/internal/domain/user"
	userrepo "github.com/kailas-cloud/usersearch/internal/repository/user"
	"github.com/kailas-cloud/usersearch/internal/usecase/parser"
	"github.com/kailas-cloud/usersearch/internal/usecase/querycache"
)

func newSQLiteRepo(t *testing.T, records []user.Record) *userrepo.Repo {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	repo := userrepo.New(db)
	ctx := context.Background()
	if err := repo.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := repo.CreateBatch(ctx, records); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return repo
}

func TestPipeline_FemaleTaylor(t *testing.T) {
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := newSQLiteRepo(t, []user.Record{
		{FullName: "Taylor Swift", Username: "tswift", Gender: "Female", CreatedAt: created},
		{FullName: "Taylor Lautner", Username: "tlautner", Gender: "Male", CreatedAt: created.Add(time.Hour)},
	})
	cache := querycache.New(nil, nil, 0, nil, zap.NewNop())
	p := parser.New(parser.ModeTiered, cache, detect.Default(), nil, zap.NewNop())
	svc := New(p, repo, nil, zap.NewNop())

	for _, source := range []parser.Source{parser.SourcePattern, parser.SourceCache} {
		t.Run(string(source), func(t *testing.T) {
			res, err := svc.Search(context.Background(),
				mustRequest(t, "find female users with Taylor in their name", 0, 50, false))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.TotalCount() != 1 {
				t.Errorf("total_count = %d, want 1", res.TotalCount())
			}
			got := make([]string, 0, len(res.Records()))
			for _, r := range res.Records() {
				got = append(got, r.FullName)
			}
			if diff := cmp.Diff([]string{"Taylor Swift"}, got); diff != "" {
				t.Errorf("rows mismatch (-want +got):\n%s", diff)
			}
			if !res.QueryUnderstood() {
				t.Error("query must be understood")
			}
			want := map[string]string{"gender": "Female", "name_contains": "Taylor"}
			if diff := cmp.Diff(want, res.FiltersApplied()); diff != "" {
				t.Errorf("filters applied mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
