package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/device-rental-api/internal/domain/repository"
)

var _ repository.DashboardRepository = (*DashboardRepo)(nil)

// DashboardRepo consultas del panel sobre Store.
type DashboardRepo struct {
	s *Store
}

// NewDashboardRepository construye el repositorio.
func NewDashboardRepository(s *Store) *DashboardRepo {
	return &DashboardRepo{s: s}
}

// UtilizationByType contadores y uso por tipo, redondeado a 2 decimales como en PostgreSQL.
func (r *DashboardRepo) UtilizationByType(_ context.Context, facilityID string) ([]repository.UtilizationRow, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := make([]repository.UtilizationRow, 0)
	hundred := decimal.NewFromInt(100)
	for k, st := range r.s.stocks {
		if k.facilityID != facilityID {
			continue
		}
		pct := decimal.Zero
		if st.Total > 0 {
			pct = decimal.NewFromInt(int64(st.Rented)).Mul(hundred).Div(decimal.NewFromInt(int64(st.Total))).Round(2)
		}
		list = append(list, repository.UtilizationRow{
			DeviceTypeID:   k.deviceTypeID,
			DeviceTypeName: r.s.deviceTypes[k.deviceTypeID].Name,
			Total:          st.Total,
			Available:      st.Available,
			Rented:         st.Rented,
			Broken:         st.Broken,
			UtilizationPct: pct,
		})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].DeviceTypeName < list[j].DeviceTypeName })
	return list, nil
}
