package metastat

import (
	"context"
	"time"

	"mstat/metastat/pkg/fuel"
	"mstat/metastat/pkg/gki"
)

// Report is the outcome of one bucket width pass.
type Report struct {
	ID        string    `bson:"_id" json:"id"`
	Width     float64   `bson:"width" json:"width"`
	Epoch     time.Time `bson:"epoch" json:"epoch"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`

	Count    int           `bson:"count" json:"count"`
	Rejected int           `bson:"rejected" json:"rejected"`
	Skipped  int           `bson:"skipped" json:"skipped"`
	Span     time.Duration `bson:"span" json:"span"`

	Ketone  []*fuel.Stat `bson:"ketone" json:"ketone"`
	Glucose []*fuel.Stat `bson:"glucose" json:"glucose"`
	GKI     []*gki.Stat  `bson:"gki" json:"gki"`
}

// Reporter persists reports.
type Reporter interface {
	Write(ctx context.Context, r *Report) error
}

// ReporterFunc adapts a function to a Reporter.
type ReporterFunc func(ctx context.Context, r *Report) error

func (f ReporterFunc) Write(ctx context.Context, r *Report) error {
	return f(ctx, r)
}
