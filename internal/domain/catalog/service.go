package catalog

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// RelatedArticleLimit caps the articles returned alongside an article.
const RelatedArticleLimit = 3

type Service struct {
	specialties  SpecialtyRepository
	articles     ArticleRepository
	surgeries    SurgeryRepository
	testimonials TestimonialRepository
	labTests     LabTestRepository
	cache        *readCache
}

const (
	specialtiesKey       = "specialties"
	clinicSpecialtiesKey = "specialties:clinic"
)

// NewService wires the catalog repositories behind an LRU read cache of
// cacheSize entries expiring after cacheTTL. A zero size disables the cache.
func NewService(sp SpecialtyRepository, ar ArticleRepository, su SurgeryRepository,
	te TestimonialRepository, lt LabTestRepository, cacheSize int, cacheTTL time.Duration) *Service {
	return &Service{
		specialties:  sp,
		articles:     ar,
		surgeries:    su,
		testimonials: te,
		labTests:     lt,
		cache:        newReadCache(cacheSize, cacheTTL),
	}
}

// -- Reads --

func (s *Service) ListSpecialists(ctx context.Context) ([]*Specialty, error) {
	return cached(ctx, s.cache, specialtiesKey, func(ctx context.Context) ([]*Specialty, error) {
		return s.specialties.List(ctx, false)
	})
}

func (s *Service) ListClinicSpecialties(ctx context.Context) ([]*Specialty, error) {
	return cached(ctx, s.cache, clinicSpecialtiesKey, func(ctx context.Context) ([]*Specialty, error) {
		return s.specialties.List(ctx, true)
	})
}

func (s *Service) ListArticles(ctx context.Context, category string) ([]*Article, error) {
	category = strings.TrimSpace(category)
	return cached(ctx, s.cache, "articles:"+category, func(ctx context.Context) ([]*Article, error) {
		return s.articles.List(ctx, category)
	})
}

func (s *Service) GetArticle(ctx context.Context, id int64) (*Article, error) {
	return cached(ctx, s.cache, "article:"+strconv.FormatInt(id, 10), func(ctx context.Context) (*Article, error) {
		return s.articles.GetByID(ctx, id)
	})
}

// RelatedArticles returns up to RelatedArticleLimit other articles in the
// same category as id.
func (s *Service) RelatedArticles(ctx context.Context, id int64) ([]*Article, error) {
	a, err := s.GetArticle(ctx, id)
	if err != nil {
		return nil, err
	}
	return cached(ctx, s.cache, "article:related:"+strconv.FormatInt(id, 10), func(ctx context.Context) ([]*Article, error) {
		return s.articles.ListRelated(ctx, a.Category, a.ID, RelatedArticleLimit)
	})
}

func (s *Service) ListSurgeries(ctx context.Context) ([]*Surgery, error) {
	return cached(ctx, s.cache, "surgeries", s.surgeries.List)
}

func (s *Service) ListTestimonials(ctx context.Context) ([]*Testimonial, error) {
	return cached(ctx, s.cache, "testimonials", s.testimonials.List)
}

func (s *Service) ListLabTests(ctx context.Context) ([]*LabTest, error) {
	return cached(ctx, s.cache, "lab-tests", s.labTests.List)
}

func (s *Service) GetLabTest(ctx context.Context, id int64) (*LabTest, error) {
	return s.labTests.GetByID(ctx, id)
}

// -- Lab test administration --

func (s *Service) CreateLabTest(ctx context.Context, req *CreateLabTestRequest) (*LabTest, error) {
	t := &LabTest{
		Name:           strings.TrimSpace(req.Name),
		Description:    req.Description,
		Category:       req.Category,
		Price:          req.Price,
		DiscountPrice:  req.DiscountPrice,
		Preparation:    req.Preparation,
		TurnaroundTime: req.TurnaroundTime,
		HomeCollection: req.HomeCollection,
	}
	if err := s.labTests.Create(ctx, t); err != nil {
		return nil, err
	}
	s.cache.purge()
	return t, nil
}

func (s *Service) UpdateLabTest(ctx context.Context, id int64, req *UpdateLabTestRequest) (*LabTest, error) {
	t, err := s.labTests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		t.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		t.Description = req.Description
	}
	if req.Category != nil {
		t.Category = req.Category
	}
	if req.Price != nil {
		t.Price = *req.Price
	}
	if req.DiscountPrice != nil {
		t.DiscountPrice = req.DiscountPrice
	}
	if req.Preparation != nil {
		t.Preparation = req.Preparation
	}
	if req.TurnaroundTime != nil {
		t.TurnaroundTime = req.TurnaroundTime
	}
	if req.HomeCollection != nil {
		t.HomeCollection = *req.HomeCollection
	}
	if err := s.labTests.Update(ctx, t); err != nil {
		return nil, err
	}
	s.cache.purge()
	return t, nil
}

func (s *Service) DeleteLabTest(ctx context.Context, id int64) error {
	if err := s.labTests.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.purge()
	return nil
}

// InvalidateSpecialties drops the cached specialty listings, which embed
// per-specialty doctor counts. Doctor writes call it.
func (s *Service) InvalidateSpecialties() {
	s.cache.remove(specialtiesKey, clinicSpecialtiesKey)
}
