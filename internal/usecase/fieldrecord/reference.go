package fieldrecord

import (
	"context"
	"fmt"

	"fieldcheck/internal/domain/datasync"
	domain "fieldcheck/internal/domain/fieldrecord"
	"fieldcheck/internal/ports"
)

// ListReference returns the cached rows of one dataset, optionally limited
// to a cost center for scoped datasets.
func (s *Service) ListReference(ctx context.Context, dataset datasync.Dataset, costCenter domain.Ref) ([]ports.ReferenceEntry, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if !dataset.Known() {
		return nil, fmt.Errorf("%w: %q", datasync.ErrUnknownDataset, dataset)
	}

	var scope *int64
	if costCenter.Present() && dataset.Scoped() {
		id, ok := costCenter.Int64()
		if !ok {
			return nil, fmt.Errorf("cost center %q is not a numeric id", costCenter.String())
		}
		scope = &id
	}
	return s.reference.ListEntries(ctx, dataset, scope)
}
