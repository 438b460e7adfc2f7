package catalog

import "context"

type SpecialtyRepository interface {
	// List returns every specialty with the number of doctors practising it.
	List(ctx context.Context, clinicOnly bool) ([]*Specialty, error)
}

type ArticleRepository interface {
	GetByID(ctx context.Context, id int64) (*Article, error)
	List(ctx context.Context, category string) ([]*Article, error)
	ListRelated(ctx context.Context, category string, excludeID int64, limit int) ([]*Article, error)
}

type SurgeryRepository interface {
	List(ctx context.Context) ([]*Surgery, error)
}

type TestimonialRepository interface {
	List(ctx context.Context) ([]*Testimonial, error)
}

type LabTestRepository interface {
	Create(ctx context.Context, t *LabTest) error
	GetByID(ctx context.Context, id int64) (*LabTest, error)
	List(ctx context.Context) ([]*LabTest, error)
	Update(ctx context.Context, t *LabTest) error
	Delete(ctx context.Context, id int64) error
}
