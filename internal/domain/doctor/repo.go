package doctor

import "context"

type DoctorRepository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id int64) (*Doctor, error)
	Update(ctx context.Context, d *Doctor) error
	Delete(ctx context.Context, id int64) error
	// Search returns doctors matching f. A limit <= 0 returns every match.
	Search(ctx context.Context, f Filter, limit, offset int) ([]*Doctor, int, error)
	// Suggest returns up to limit doctors and specialties whose name contains q.
	Suggest(ctx context.Context, q string, limit int) ([]Suggestion, error)
}
