package sources

import (
	"context"
	"sort"
	"sync"

	"github.com/digiclimate/supplyrisk/internal/models"
)

// MemorySource is an in-memory implementation of every read-side collaborator.
// It backs tests and local development, and mirrors the simulated stock figures
// the system ran on before a real inventory feed existed.
type MemorySource struct {
	mu        sync.RWMutex
	materials []models.Material
	current   map[int]models.ObservationSnapshot
	forecasts map[int][]models.ObservationSnapshot
	stock     map[int]models.StockState
	affected  map[int]int
}

// NewMemorySource returns an empty source. Seed it with the setters below.
func NewMemorySource() *MemorySource {
	return &MemorySource{
		current:   map[int]models.ObservationSnapshot{},
		forecasts: map[int][]models.ObservationSnapshot{},
		stock:     map[int]models.StockState{},
		affected:  map[int]int{},
	}
}

// SeedMaterials installs the reference material set.
func (m *MemorySource) SeedMaterials(materials ...models.Material) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.materials = append([]models.Material(nil), materials...)
}

// SetCurrent installs the current snapshot for a material.
func (m *MemorySource) SetCurrent(snap models.ObservationSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current[snap.MaterialID] = snap
}

// SetForecast installs the forecast window for a material. Snapshots are kept
// ordered by DaysFromNow.
func (m *MemorySource) SetForecast(materialID int, snaps []models.ObservationSnapshot) {
	ordered := append([]models.ObservationSnapshot(nil), snaps...)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].DaysFromNow < ordered[j].DaysFromNow
	})
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forecasts[materialID] = ordered
}

// SetStock installs the stock state for a material.
func (m *MemorySource) SetStock(st models.StockState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stock[st.MaterialID] = st
}

// SetAffectedCount installs the affected-product count for a material.
func (m *MemorySource) SetAffectedCount(materialID, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.affected[materialID] = count
}

func (m *MemorySource) Materials(ctx context.Context) ([]models.Material, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.Material(nil), m.materials...), nil
}

func (m *MemorySource) CurrentStatus(ctx context.Context, materialID int) (*models.ObservationSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap, ok := m.current[materialID]
	if !ok {
		return nil, ErrNoData
	}
	out := snap
	return &out, nil
}

func (m *MemorySource) Forecast(ctx context.Context, materialID int, daysAhead int) ([]models.ObservationSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.ObservationSnapshot
	for _, snap := range m.forecasts[materialID] {
		if snap.DaysFromNow <= daysAhead {
			out = append(out, snap)
		}
	}
	return out, nil
}

func (m *MemorySource) StockState(ctx context.Context, materialID int) (*models.StockState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.stock[materialID]
	if !ok {
		return nil, ErrNoData
	}
	out := st
	return &out, nil
}

func (m *MemorySource) AffectedProductCount(ctx context.Context, materialID int) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.affected[materialID], nil
}

// SeedSimulation loads the four-material demo data set the original system
// shipped with: wheat, sugarcane, cotton, rice with plausible stock figures.
func (m *MemorySource) SeedSimulation() {
	m.SeedMaterials(
		models.Material{ID: 1, Name: "Wheat"},
		models.Material{ID: 2, Name: "Sugarcane"},
		models.Material{ID: 3, Name: "Cotton"},
		models.Material{ID: 4, Name: "Rice"},
	)
	m.SetStock(models.StockState{MaterialID: 1, MaterialName: "Wheat", CurrentStock: 500, DailyConsumption: 25, SafetyStock: 100})
	m.SetStock(models.StockState{MaterialID: 2, MaterialName: "Sugarcane", CurrentStock: 300, DailyConsumption: 15, SafetyStock: 50})
	m.SetStock(models.StockState{MaterialID: 3, MaterialName: "Cotton", CurrentStock: 200, DailyConsumption: 10, SafetyStock: 40})
	m.SetStock(models.StockState{MaterialID: 4, MaterialName: "Rice", CurrentStock: 400, DailyConsumption: 20, SafetyStock: 80})
}
