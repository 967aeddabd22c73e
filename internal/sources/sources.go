// Package sources defines the collaborator boundaries the engine reads through.
// Implementations must not leak transport or driver errors past these
// interfaces: a missing row is ErrNoData, and the engine treats any error as
// "no data for this material" rather than aborting a pass.
package sources

import (
	"context"
	"errors"

	"github.com/digiclimate/supplyrisk/internal/models"
)

// ErrNoData marks the absence of upstream data for a material. It is the only
// error the engine inspects; everything else degrades the same way.
var ErrNoData = errors.New("no data")

// ObservationSource provides current and forecast production observations.
type ObservationSource interface {
	// Materials lists the reference material set.
	Materials(ctx context.Context) ([]models.Material, error)

	// CurrentStatus returns the latest snapshot for a material, or ErrNoData.
	CurrentStatus(ctx context.Context, materialID int) (*models.ObservationSnapshot, error)

	// Forecast returns the ordered forecast window, oldest first. daysAhead is
	// clamped by implementations to 1..30. An empty window is not an error.
	Forecast(ctx context.Context, materialID int, daysAhead int) ([]models.ObservationSnapshot, error)
}

// StockSource provides the inventory view of a material.
type StockSource interface {
	StockState(ctx context.Context, materialID int) (*models.StockState, error)
}

// AffectedProductsSource counts finished products that depend on a material.
type AffectedProductsSource interface {
	AffectedProductCount(ctx context.Context, materialID int) (int, error)
}

// NotificationSink delivers a rendered alert to the outside world. Delivery is
// best-effort; the engine logs failures and moves on.
type NotificationSink interface {
	Send(ctx context.Context, subject, body string, recipients []string) error
}

// ActionExecutor carries out an automated action for a material. The engine
// decides that an action fires; execution belongs to the caller.
type ActionExecutor interface {
	ExecuteAction(ctx context.Context, action string, materialID int) error
}
