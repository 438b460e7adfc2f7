package catalog

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"
)

// -- Mock Repositories --

type mockSpecialtyRepo struct {
	items []*Specialty
	calls int
}

func (m *mockSpecialtyRepo) List(_ context.Context, clinicOnly bool) ([]*Specialty, error) {
	m.calls++
	var out []*Specialty
	for _, s := range m.items {
		if !clinicOnly || s.IsClinic {
			out = append(out, s)
		}
	}
	return out, nil
}

type mockArticleRepo struct {
	items map[int64]*Article
	calls int
}

func newMockArticleRepo(articles ...*Article) *mockArticleRepo {
	m := &mockArticleRepo{items: make(map[int64]*Article)}
	for _, a := range articles {
		m.items[a.ID] = a
	}
	return m
}

func (m *mockArticleRepo) GetByID(_ context.Context, id int64) (*Article, error) {
	m.calls++
	a, ok := m.items[id]
	if !ok {
		return nil, ErrArticleNotFound
	}
	return a, nil
}

func (m *mockArticleRepo) List(_ context.Context, category string) ([]*Article, error) {
	m.calls++
	var out []*Article
	for _, a := range m.items {
		if category == "" || a.Category == category {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockArticleRepo) ListRelated(_ context.Context, category string, excludeID int64, limit int) ([]*Article, error) {
	m.calls++
	var out []*Article
	for _, a := range m.items {
		if a.Category == category && a.ID != excludeID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type mockSurgeryRepo struct{ items []*Surgery }

func (m *mockSurgeryRepo) List(context.Context) ([]*Surgery, error) { return m.items, nil }

type mockTestimonialRepo struct{ items []*Testimonial }

func (m *mockTestimonialRepo) List(context.Context) ([]*Testimonial, error) { return m.items, nil }

type mockLabTestRepo struct {
	items  map[int64]*LabTest
	inUse  map[int64]bool
	nextID int64
	calls  int
}

func newMockLabTestRepo() *mockLabTestRepo {
	return &mockLabTestRepo{items: make(map[int64]*LabTest), inUse: make(map[int64]bool)}
}

func (m *mockLabTestRepo) Create(_ context.Context, t *LabTest) error {
	m.nextID++
	t.ID = m.nextID
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	m.items[t.ID] = t
	return nil
}

func (m *mockLabTestRepo) GetByID(_ context.Context, id int64) (*LabTest, error) {
	t, ok := m.items[id]
	if !ok {
		return nil, ErrLabTestNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *mockLabTestRepo) List(context.Context) ([]*LabTest, error) {
	m.calls++
	out := make([]*LabTest, 0, len(m.items))
	for _, t := range m.items {
		out = append(out, t)
	}
	return out, nil
}

func (m *mockLabTestRepo) Update(_ context.Context, t *LabTest) error {
	if _, ok := m.items[t.ID]; !ok {
		return ErrLabTestNotFound
	}
	t.UpdatedAt = time.Now()
	m.items[t.ID] = t
	return nil
}

func (m *mockLabTestRepo) Delete(_ context.Context, id int64) error {
	if m.inUse[id] {
		return ErrLabTestInUse
	}
	if _, ok := m.items[id]; !ok {
		return ErrLabTestNotFound
	}
	delete(m.items, id)
	return nil
}

type testRepos struct {
	specialties *mockSpecialtyRepo
	articles    *mockArticleRepo
	labTests    *mockLabTestRepo
}

func newTestService(cacheSize int) (*Service, *testRepos) {
	r := &testRepos{
		specialties: &mockSpecialtyRepo{items: []*Specialty{
			{ID: 1, Name: "Cardiology", DoctorCount: 4},
			{ID: 2, Name: "Dermatology", IsClinic: true, DoctorCount: 2},
		}},
		articles: newMockArticleRepo(
			&Article{ID: 1, Title: "Heart health", Category: "cardio"},
			&Article{ID: 2, Title: "Blood pressure", Category: "cardio"},
			&Article{ID: 3, Title: "Cholesterol", Category: "cardio"},
			&Article{ID: 4, Title: "Exercise", Category: "cardio"},
			&Article{ID: 5, Title: "Eczema", Category: "skin"},
		),
		labTests: newMockLabTestRepo(),
	}
	svc := NewService(r.specialties, r.articles, &mockSurgeryRepo{}, &mockTestimonialRepo{}, r.labTests,
		cacheSize, time.Minute)
	return svc, r
}

func strPtr(s string) *string { return &s }

// -- Tests --

func TestListClinicSpecialties(t *testing.T) {
	svc, _ := newTestService(0)
	items, err := svc.ListClinicSpecialties(context.Background())
	if err != nil {
		t.Fatalf("ListClinicSpecialties: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Dermatology" {
		t.Errorf("expected only Dermatology, got %+v", items)
	}
}

func TestListArticles_Category(t *testing.T) {
	svc, _ := newTestService(0)
	items, _ := svc.ListArticles(context.Background(), "skin")
	if len(items) != 1 || items[0].ID != 5 {
		t.Errorf("expected article 5, got %+v", items)
	}
	all, _ := svc.ListArticles(context.Background(), "")
	if len(all) != 5 {
		t.Errorf("expected 5 articles, got %d", len(all))
	}
}

func TestRelatedArticles(t *testing.T) {
	svc, _ := newTestService(0)
	items, err := svc.RelatedArticles(context.Background(), 1)
	if err != nil {
		t.Fatalf("RelatedArticles: %v", err)
	}
	if len(items) != RelatedArticleLimit {
		t.Fatalf("expected %d related, got %d", RelatedArticleLimit, len(items))
	}
	for _, a := range items {
		if a.ID == 1 {
			t.Error("related articles must not include the article itself")
		}
		if a.Category != "cardio" {
			t.Errorf("unexpected category %s", a.Category)
		}
	}
}

func TestRelatedArticles_NotFound(t *testing.T) {
	svc, _ := newTestService(0)
	if _, err := svc.RelatedArticles(context.Background(), 99); !errors.Is(err, ErrArticleNotFound) {
		t.Errorf("expected ErrArticleNotFound, got %v", err)
	}
}

func TestCache_ServesRepeatReads(t *testing.T) {
	svc, r := newTestService(16)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := svc.ListSpecialists(ctx); err != nil {
			t.Fatal(err)
		}
	}
	if r.specialties.calls != 1 {
		t.Errorf("expected 1 repository call, got %d", r.specialties.calls)
	}
}

func TestCache_Disabled(t *testing.T) {
	svc, r := newTestService(0)
	ctx := context.Background()
	svc.ListSpecialists(ctx)
	svc.ListSpecialists(ctx)
	if r.specialties.calls != 2 {
		t.Errorf("expected 2 repository calls, got %d", r.specialties.calls)
	}
}

func TestCache_PurgedOnLabTestWrite(t *testing.T) {
	svc, r := newTestService(16)
	ctx := context.Background()

	items, _ := svc.ListLabTests(ctx)
	if len(items) != 0 {
		t.Fatalf("expected empty list, got %d", len(items))
	}
	if _, err := svc.CreateLabTest(ctx, &CreateLabTestRequest{Name: "CBC", Price: 299}); err != nil {
		t.Fatalf("CreateLabTest: %v", err)
	}
	items, _ = svc.ListLabTests(ctx)
	if len(items) != 1 {
		t.Errorf("expected fresh list with 1 test, got %d", len(items))
	}
	if r.labTests.calls != 2 {
		t.Errorf("expected 2 repository calls, got %d", r.labTests.calls)
	}
}

func TestInvalidateSpecialties_RefreshesDoctorCounts(t *testing.T) {
	svc, r := newTestService(16)
	ctx := context.Background()

	svc.ListSpecialists(ctx)
	svc.ListClinicSpecialties(ctx)
	svc.ListArticles(ctx, "cardio")

	r.specialties.items[0].DoctorCount = 5
	svc.InvalidateSpecialties()

	items, err := svc.ListSpecialists(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if items[0].DoctorCount != 5 {
		t.Errorf("expected refreshed count 5, got %d", items[0].DoctorCount)
	}
	svc.ListClinicSpecialties(ctx)
	if r.specialties.calls != 4 {
		t.Errorf("expected both specialty listings reloaded, got %d calls", r.specialties.calls)
	}
	svc.ListArticles(ctx, "cardio")
	if r.articles.calls != 1 {
		t.Errorf("expected articles to stay cached, got %d calls", r.articles.calls)
	}
}

func TestInvalidateSpecialties_CacheDisabled(t *testing.T) {
	svc, _ := newTestService(0)
	svc.InvalidateSpecialties()
}

func TestUpdateLabTest_Partial(t *testing.T) {
	svc, _ := newTestService(0)
	ctx := context.Background()
	created, _ := svc.CreateLabTest(ctx, &CreateLabTestRequest{
		Name: "Lipid profile", Price: 799, Category: strPtr("blood"),
	})

	price := 699.0
	updated, err := svc.UpdateLabTest(ctx, created.ID, &UpdateLabTestRequest{Price: &price})
	if err != nil {
		t.Fatalf("UpdateLabTest: %v", err)
	}
	if updated.Price != 699 {
		t.Errorf("expected price 699, got %v", updated.Price)
	}
	if updated.Name != "Lipid profile" || updated.Category == nil || *updated.Category != "blood" {
		t.Errorf("expected untouched fields to survive, got %+v", updated)
	}
}

func TestDeleteLabTest_InUse(t *testing.T) {
	svc, r := newTestService(0)
	ctx := context.Background()
	created, _ := svc.CreateLabTest(ctx, &CreateLabTestRequest{Name: "CBC", Price: 299})
	r.labTests.inUse[created.ID] = true

	if err := svc.DeleteLabTest(ctx, created.ID); !errors.Is(err, ErrLabTestInUse) {
		t.Errorf("expected ErrLabTestInUse, got %v", err)
	}
}
