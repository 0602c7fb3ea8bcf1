package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/and161185/coursereports/internal/model"
)

type Seeder interface {
	AddCourse(ctx context.Context, course model.Course) error
	AddOrder(ctx context.Context, order model.Order) error
}

// Fixture is the JSON layout accepted by LoadFixture.
type Fixture struct {
	Courses []model.Course `json:"courses"`
	Orders  []model.Order  `json:"orders"`
}

// LoadFixture decodes courses and orders from r and stores them, courses first.
func LoadFixture(ctx context.Context, r io.Reader, s Seeder) (int, int, error) {
	var f Fixture
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return 0, 0, fmt.Errorf("decode fixture: %w", err)
	}

	for _, c := range f.Courses {
		if c.Price.IsNegative() {
			return 0, 0, fmt.Errorf("course %s: negative price", c.ID)
		}
		if err := s.AddCourse(ctx, c); err != nil {
			return 0, 0, fmt.Errorf("add course %s: %w", c.ID, err)
		}
	}

	for _, o := range f.Orders {
		if err := s.AddOrder(ctx, o); err != nil {
			return len(f.Courses), 0, fmt.Errorf("add order %s: %w", o.ID, err)
		}
	}

	return len(f.Courses), len(f.Orders), nil
}
