package database

import (
	"context"
	"errors"
	"testing"

	"github.com/churnikov/otvetgrab/internal/model"
)

// openTestStore creates a store in a temporary directory and closes it when
// the test finishes.
func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// testTaxonomy returns a small two-category taxonomy with a globally
// numbered subcategory under each parent.
func testTaxonomy() ([]model.Category, []model.SubCategory) {
	categories := []model.Category{
		{ID: 0, Name: "Наука и техника", Link: "/science/"},
		{ID: 1, Name: "Компьютеры и связь", Link: "/computers/"},
	}
	subs := []model.SubCategory{
		{ID: 0, ParentID: 0, Name: "Физика", Link: "/science/physics/"},
		{ID: 1, ParentID: 1, Name: "Интернет", Link: "/computers/internet/"},
	}
	return categories, subs
}

func strPtr(s string) *string { return &s }

// TestOpen verifies store creation semantics.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database file and schema", func(t *testing.T) {
		t.Parallel()

		s := openTestStore(t)

		has, err := s.HasTaxonomy(context.Background())
		if err != nil {
			t.Fatalf("expected working schema, got %v", err)
		}
		if has {
			t.Error("expected empty store to report no taxonomy")
		}
	})

	t.Run("refuses to create when CreateIfNotExists is false", func(t *testing.T) {
		t.Parallel()

		_, err := Open(t.TempDir(), Options{CreateIfNotExists: false, EnableWAL: true})
		if err == nil {
			t.Error("expected an error for a missing database")
		}
	})
}

// TestSaveTaxonomy verifies taxonomy persistence including the upsert-by-name
// refresh behavior and the batch integrity checks.
func TestSaveTaxonomy(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("round-trips categories and subcategories", func(t *testing.T) {
		t.Parallel()

		s := openTestStore(t)
		categories, subs := testTaxonomy()
		if err := s.SaveTaxonomy(ctx, categories, subs); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		gotCats, gotSubs, err := s.LoadTaxonomy(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(gotCats) != 2 || len(gotSubs) != 2 {
			t.Fatalf("expected 2 categories and 2 subcategories, got %d and %d", len(gotCats), len(gotSubs))
		}
		if gotCats[0].Name != "Наука и техника" || gotCats[0].ID != 0 {
			t.Errorf("unexpected first category: %+v", gotCats[0])
		}
		if gotSubs[1].ParentID != 1 {
			t.Errorf("expected subcategory 1 under parent 1, got %+v", gotSubs[1])
		}
	})

	t.Run("refresh upserts by name without duplicating rows", func(t *testing.T) {
		t.Parallel()

		s := openTestStore(t)
		categories, subs := testTaxonomy()
		if err := s.SaveTaxonomy(ctx, categories, subs); err != nil {
			t.Fatalf("first save failed: %v", err)
		}

		// Same names, updated links: a refresh after the source moved pages.
		categories[0].Link = "/science-new/"
		if err := s.SaveTaxonomy(ctx, categories, subs); err != nil {
			t.Fatalf("refresh save failed: %v", err)
		}

		gotCats, gotSubs, err := s.LoadTaxonomy(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(gotCats) != 2 || len(gotSubs) != 2 {
			t.Fatalf("refresh duplicated rows: %d categories, %d subcategories", len(gotCats), len(gotSubs))
		}
		if gotCats[0].Link != "/science-new/" {
			t.Errorf("expected refreshed link, got %q", gotCats[0].Link)
		}
	})

	t.Run("empty taxonomy returns ErrEmptyTaxonomy", func(t *testing.T) {
		t.Parallel()

		s := openTestStore(t)
		err := s.SaveTaxonomy(ctx, nil, nil)
		if !errors.Is(err, ErrEmptyTaxonomy) {
			t.Errorf("expected ErrEmptyTaxonomy, got %v", err)
		}
	})

	t.Run("orphan subcategory returns ErrOrphanSubCategory", func(t *testing.T) {
		t.Parallel()

		s := openTestStore(t)
		categories, _ := testTaxonomy()
		orphan := []model.SubCategory{{ID: 0, ParentID: 99, Name: "Сироты", Link: "/x/"}}

		err := s.SaveTaxonomy(ctx, categories, orphan)
		if !errors.Is(err, ErrOrphanSubCategory) {
			t.Errorf("expected ErrOrphanSubCategory, got %v", err)
		}
	})
}

// TestSaveQuestion verifies question persistence: the sentinel answer law,
// nil-vs-empty distinctions, and transactional atomicity of the write.
func TestSaveQuestion(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	setup := func(t *testing.T) *Store {
		t.Helper()
		s := openTestStore(t)
		categories, subs := testTaxonomy()
		if err := s.SaveTaxonomy(ctx, categories, subs); err != nil {
			t.Fatal(err)
		}
		return s
	}

	t.Run("persists question with answers", func(t *testing.T) {
		t.Parallel()

		s := setup(t)
		subID := int64(0)
		q := &model.Question{
			ID:            100,
			CategoryID:    0,
			SubCategoryID: &subID,
			Title:         "Почему небо голубое?",
			Comment:       strPtr("интересно же"),
		}
		answers := []model.Answer{
			{QuestionID: 100, Text: strPtr("Рэлеевское рассеяние")},
			{QuestionID: 100, Text: strPtr("")},
		}

		if err := s.SaveQuestion(ctx, q, answers); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		got, err := s.Answers(ctx, 100)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 answer rows, got %d", len(got))
		}
		if got[0].Text == nil || *got[0].Text != "Рэлеевское рассеяние" {
			t.Errorf("unexpected first answer: %+v", got[0])
		}
		// The empty-string answer must survive as empty, not become nil.
		if got[1].Text == nil || *got[1].Text != "" {
			t.Errorf("expected empty-string answer row, got %+v", got[1])
		}
	})

	t.Run("zero answers produce exactly one sentinel row", func(t *testing.T) {
		t.Parallel()

		s := setup(t)
		q := &model.Question{ID: 101, CategoryID: 0, Title: "Без ответов"}

		if err := s.SaveQuestion(ctx, q, nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		got, err := s.Answers(ctx, 101)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 1 {
			t.Fatalf("expected exactly one sentinel row, got %d", len(got))
		}
		if got[0].Text != nil {
			t.Errorf("expected nil sentinel text, got %q", *got[0].Text)
		}
	})

	t.Run("duplicate id is a schema fault", func(t *testing.T) {
		t.Parallel()

		s := setup(t)
		q := &model.Question{ID: 102, CategoryID: 0, Title: "Дубликат"}
		if err := s.SaveQuestion(ctx, q, nil); err != nil {
			t.Fatal(err)
		}

		err := s.SaveQuestion(ctx, q, nil)
		if err == nil {
			t.Fatal("expected an error for a duplicate question id")
		}
		if fault := ClassifyError(err); fault != FaultSchema {
			t.Errorf("expected FaultSchema, got %v", fault)
		}
	})

	t.Run("unknown category id is a schema fault", func(t *testing.T) {
		t.Parallel()

		s := setup(t)
		q := &model.Question{ID: 103, CategoryID: 99, Title: "Сирота"}

		err := s.SaveQuestion(ctx, q, nil)
		if err == nil {
			t.Fatal("expected an error for an unknown category id")
		}
		if fault := ClassifyError(err); fault != FaultSchema {
			t.Errorf("expected FaultSchema, got %v", fault)
		}

		has, err := s.HasQuestion(ctx, 103)
		if err != nil {
			t.Fatal(err)
		}
		if has {
			t.Error("expected no row for the rejected question")
		}
	})

	t.Run("watermark follows the highest persisted id", func(t *testing.T) {
		t.Parallel()

		s := setup(t)

		_, ok, err := s.MaxQuestionID(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if ok {
			t.Error("expected no watermark in an empty store")
		}

		for _, id := range []int64{5, 41, 17} {
			q := &model.Question{ID: id, CategoryID: 0, Title: "t"}
			if err := s.SaveQuestion(ctx, q, nil); err != nil {
				t.Fatal(err)
			}
		}

		maxID, ok, err := s.MaxQuestionID(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if !ok || maxID != 41 {
			t.Errorf("expected watermark 41, got %d (ok=%v)", maxID, ok)
		}

		has, err := s.HasQuestion(ctx, 17)
		if err != nil {
			t.Fatal(err)
		}
		if !has {
			t.Error("expected HasQuestion(17) to be true")
		}
	})
}

// TestStats verifies the status snapshot over a populated store.
func TestStats(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTestStore(t)

	categories, subs := testTaxonomy()
	if err := s.SaveTaxonomy(ctx, categories, subs); err != nil {
		t.Fatal(err)
	}

	q := &model.Question{ID: 7, CategoryID: 1, Title: "t"}
	if err := s.SaveQuestion(ctx, q, []model.Answer{{QuestionID: 7, Text: strPtr("a")}}); err != nil {
		t.Fatal(err)
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if stats.Categories != 2 || stats.SubCategories != 2 {
		t.Errorf("unexpected taxonomy counts: %+v", stats)
	}
	if stats.Questions != 1 || stats.Answers != 1 {
		t.Errorf("unexpected content counts: %+v", stats)
	}
	if !stats.HasQuestions || stats.MaxQuestionID != 7 {
		t.Errorf("unexpected watermark: %+v", stats)
	}
	if len(stats.PerCategory) != 2 {
		t.Fatalf("expected per-category rows for both categories, got %d", len(stats.PerCategory))
	}
	if stats.PerCategory[1].Name != "Компьютеры и связь" || stats.PerCategory[1].Questions != 1 {
		t.Errorf("unexpected per-category row: %+v", stats.PerCategory[1])
	}
}

// TestClassifyError verifies the retry/give-up classification.
func TestClassifyError(t *testing.T) {
	t.Parallel()

	if ClassifyError(nil) != FaultNone {
		t.Error("expected FaultNone for nil error")
	}
	if ClassifyError(context.Canceled) != FaultOther {
		t.Error("expected FaultOther for context.Canceled")
	}
	if ClassifyError(errors.New("boom")) != FaultOther {
		t.Error("expected FaultOther for an arbitrary error")
	}
}
