// Пакет pipeline — прикладная обработка CSV-данных: очистка, вычисляемые
// поля и агрегаты по отделам. Детеминированность важна: повторная обработка
// того же входа даёт байт-в-байт тот же выход (идемпотентность по ключу).
package pipeline

import (
	"fmt"
	"math"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/ntarasov/cloudpipe/internal/domain"
)

const joinDateLayout = "2006-01-02"

// StatsObjectKey — ключ файла со статистикой в processed-bucket'е.
const StatsObjectKey = "stats/department_stats.csv"

// Transform — очистка и обогащение записей плюс агрегаты по отделам.
// refYear — год, относительно которого считается стаж.
func Transform(employees []domain.Employee, refYear int) ([]domain.ProcessedEmployee, []domain.DepartmentStat, error) {
	processed := make([]domain.ProcessedEmployee, 0, len(employees))
	for _, e := range employees {
		joined, err := time.Parse(joinDateLayout, e.JoinDate)
		if err != nil {
			return nil, nil, fmt.Errorf("employee %d: join_date %q: %w", e.EmployeeID, e.JoinDate, err)
		}

		clean := e
		clean.Name = strings.TrimSpace(e.Name)

		processed = append(processed, domain.ProcessedEmployee{
			Employee:        clean,
			SalaryCategory:  salaryCategory(e.Salary),
			ExperienceYears: refYear - joined.Year(),
		})
	}

	return processed, departmentStats(processed), nil
}

// salaryCategory: Low < 50000 <= Medium < 80000 <= High.
func salaryCategory(salary int) string {
	switch {
	case salary < 50000:
		return "Low"
	case salary < 80000:
		return "Medium"
	default:
		return "High"
	}
}

// departmentStats — средняя/мин/макс зарплата и средний performance score
// по отделам; результат отсортирован по названию отдела.
func departmentStats(employees []domain.ProcessedEmployee) []domain.DepartmentStat {
	type acc struct {
		salarySum float64
		scoreSum  float64
		min, max  int
		n         int
	}

	byDept := make(map[string]*acc)
	for _, e := range employees {
		a, ok := byDept[e.Department]
		if !ok {
			a = &acc{min: e.Salary, max: e.Salary}
			byDept[e.Department] = a
		}
		a.salarySum += float64(e.Salary)
		a.scoreSum += e.PerformanceScore
		if e.Salary < a.min {
			a.min = e.Salary
		}
		if e.Salary > a.max {
			a.max = e.Salary
		}
		a.n++
	}

	stats := make([]domain.DepartmentStat, 0, len(byDept))
	for dept, a := range byDept {
		stats = append(stats, domain.DepartmentStat{
			Department:     dept,
			AvgSalary:      round2(a.salarySum / float64(a.n)),
			MinSalary:      a.min,
			MaxSalary:      a.max,
			AvgPerformance: round2(a.scoreSum / float64(a.n)),
		})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Department < stats[j].Department })
	return stats
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// ProcessedKeyFor — детерминированный ключ обработанного файла для данного
// входного: raw/employees_X.csv -> processed/processed_employees_X.csv.
// Одинаковый вход при повторной доставке даёт одинаковый ключ.
func ProcessedKeyFor(inputKey string) string {
	return "processed/processed_" + path.Base(inputKey)
}

// RawKeyFor — ключ сырого файла по отметке времени (для генератора).
func RawKeyFor(ts time.Time) string {
	return "raw/employees_" + ts.UTC().Format("20060102_150405") + ".csv"
}
