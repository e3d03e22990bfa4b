package recorddata

import (
	"context"

	vizembed "github.com/goliatone/go-vizembed/components/vizembed"
)

// Resolver supplies a record field value from the host data source. It is the
// external collaborator behind the core's FieldResolver interface.
type Resolver interface {
	ResolveField(ctx context.Context, objectAPIName, recordID, field string) (vizembed.FilterValue, error)
}
