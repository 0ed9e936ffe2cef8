// Package seed generates a synthetic store (staff, KPI catalog, score
// events, attendance and sales) and loads it into a repository or a
// running server.
package seed

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/internal/domain/period"
)

// Defaults for DefaultConfig.
const (
	DefaultStaff        = 12
	DefaultMonths       = 3
	DefaultEventsPerKPI = 3
	DefaultSeed         = 20250301
)

// Config controls the size and shape of a generated dataset.
type Config struct {
	Staff        int
	Months       int // months of history ending with the month of End
	EventsPerKPI int // events per staff, KPI and month
	Seed         uint64
	End          time.Time // nothing is generated after End
}

// DefaultConfig returns the dataset used for demo data, ending at end.
func DefaultConfig(end time.Time) Config {
	return Config{
		Staff:        DefaultStaff,
		Months:       DefaultMonths,
		EventsPerKPI: DefaultEventsPerKPI,
		Seed:         DefaultSeed,
		End:          end,
	}
}

func (c Config) validate() error {
	switch {
	case c.Staff < 1:
		return fmt.Errorf("%w: staff must be positive", ErrInvalidConfig)
	case c.Months < 1:
		return fmt.Errorf("%w: months must be positive", ErrInvalidConfig)
	case c.EventsPerKPI < 0:
		return fmt.Errorf("%w: events per kpi must not be negative", ErrInvalidConfig)
	case c.End.IsZero():
		return fmt.Errorf("%w: missing end", ErrInvalidConfig)
	}
	return nil
}

// Dataset is a generated store.
type Dataset struct {
	Staff      []model.Staff
	KPIs       []model.KPIDefinition
	Events     []model.ScoreEvent
	Attendance []model.AttendanceDay
	Sales      []model.Sale
}

func intPtr(v int) *int { return &v }

// Catalog is the KPI catalog every dataset uses. It includes one
// soft-deleted definition.
func Catalog() []model.KPIDefinition {
	return []model.KPIDefinition{
		{ID: "sales-target", Name: "Sales target", Weight: 40, Target: 8, MaxPoints: intPtr(10), Frequency: model.FrequencyMonthly},
		{ID: "customer-feedback", Name: "Customer feedback", Weight: 25, Target: 8, MaxPoints: intPtr(10), Frequency: model.FrequencyWeekly},
		{ID: "grooming", Name: "Grooming standard", Weight: 15, Target: 9, MaxPoints: intPtr(10), Frequency: model.FrequencyDaily},
		{ID: "stock-accuracy", Name: "Stock accuracy", Weight: 20, Target: 7, Frequency: model.FrequencyWeekly},
		{ID: "upsell-legacy", Name: "Upsell (retired)", Weight: 10, Target: 5, Frequency: model.FrequencyMonthly, IsDeleted: true},
	}
}

var (
	firstNames = []string{"Ari", "Bea", "Cato", "Dina", "Emil", "Fara", "Gus", "Hana", "Ivo", "Juno", "Kai", "Lena", "Milo", "Nia", "Otto", "Pia"}
	roles      = []string{"cashier", "floor", "stock", "supervisor"}
)

// namespace scopes the deterministic ids of generated records.
var namespace = uuid.MustParse("6f1c0c4e-2b36-4b6a-9d8e-6f0ab7d3c1a2")

func recordID(kind string, seed uint64, n int) string {
	return uuid.NewSHA1(namespace, fmt.Appendf(nil, "%s/%d/%d", kind, seed, n)).String()
}

// Generate builds a dataset. The same Config always yields the same dataset.
func Generate(cfg Config) (Dataset, error) {
	if err := cfg.validate(); err != nil {
		return Dataset{}, err
	}
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	end := cfg.End.UTC()

	ds := Dataset{KPIs: Catalog()}
	active := model.NewCatalog(ds.KPIs).Active()

	type profile struct {
		level       float64 // mean points
		reliability float64 // chance of a full day
	}
	profiles := make([]profile, cfg.Staff)
	for i := range cfg.Staff {
		name := firstNames[i%len(firstNames)]
		if i >= len(firstNames) {
			name = fmt.Sprintf("%s %d", name, i/len(firstNames)+1)
		}
		ds.Staff = append(ds.Staff, model.Staff{
			ID:          fmt.Sprintf("staff-%03d", i+1),
			DisplayName: name,
			Role:        roles[i%len(roles)],
		})
		profiles[i] = profile{level: 3 + rng.Float64()*6, reliability: 0.7 + rng.Float64()*0.25}
	}

	first := period.Of(end)
	for range cfg.Months - 1 {
		first = first.Previous()
	}

	var eventN, saleN int
	for p := first; !period.Of(end).Before(p); p = p.Next() {
		lastDay := daysIn(p)
		if period.Of(end) == p {
			lastDay = end.Day()
		}
		for i, st := range ds.Staff {
			prof := profiles[i]
			for _, k := range active {
				for range cfg.EventsPerKPI {
					pts := clamp(prof.level+rng.NormFloat64()*1.5, 0, maxPoints(k))
					ds.Events = append(ds.Events, model.ScoreEvent{
						ID:          recordID("event", cfg.Seed, eventN),
						StaffID:     st.ID,
						KPIID:       k.ID,
						Points:      math.Round(pts*10) / 10,
						EvaluatedAt: notAfter(dayAt(p, 1+rng.IntN(lastDay), 9+rng.IntN(9)), end),
					})
					eventN++
				}
			}

			for d := 1; d <= lastDay; d++ {
				date := dayAt(p, d, 0)
				if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
					continue
				}
				ds.Attendance = append(ds.Attendance, model.AttendanceDay{
					StaffID: st.ID,
					Date:    date,
					DayType: dayType(rng.Float64(), prof.reliability),
				})
			}

			for range 5 + rng.IntN(11) {
				qty := float64(1 + rng.IntN(5))
				ds.Sales = append(ds.Sales, model.Sale{
					ID:      recordID("sale", cfg.Seed, saleN),
					StaffID: st.ID,
					Qty:     qty,
					Profit:  math.Round(qty*(10+rng.Float64()*40)*100) / 100,
					SoldAt:  notAfter(dayAt(p, 1+rng.IntN(lastDay), 10+rng.IntN(8)), end),
				})
				saleN++
			}
		}
	}
	return ds, nil
}

func daysIn(p period.Period) int {
	return p.End().AddDate(0, 0, -1).Day()
}

func dayAt(p period.Period, day, hour int) time.Time {
	return time.Date(p.Year, p.Month, day, hour, 0, 0, 0, time.UTC)
}

func notAfter(t, end time.Time) time.Time {
	if t.After(end) {
		return end
	}
	return t
}

func maxPoints(k model.KPIDefinition) float64 {
	if k.MaxPoints != nil {
		return float64(*k.MaxPoints)
	}
	return 10
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func dayType(roll, reliability float64) model.DayType {
	switch {
	case roll < reliability:
		return model.DayFull
	case roll < reliability+(1-reliability)/2:
		return model.DayHalf
	}
	return model.DayAbsent
}
