package pipeline

import (
	"fmt"
	"math/rand"

	"github.com/ntarasov/cloudpipe/internal/domain"
)

var departments = []string{"IT", "HR", "Finance", "Marketing", "Sales"}

// GenerateEmployees — n тестовых записей для прогона пайплайна.
// Источник случайности передаётся снаружи (в тестах — с фиксированным seed).
func GenerateEmployees(n int, r *rand.Rand) []domain.Employee {
	employees := make([]domain.Employee, 0, n)
	for i := 0; i < n; i++ {
		employees = append(employees, domain.Employee{
			EmployeeID: i + 1,
			Name:       fmt.Sprintf("Employee_%d", i+1),
			Department: departments[r.Intn(len(departments))],
			Salary:     30000 + r.Intn(70001),
			JoinDate: fmt.Sprintf("202%d-%02d-%02d",
				r.Intn(4), 1+r.Intn(12), 1+r.Intn(28)),
			PerformanceScore: round2(1.0 + r.Float64()*4.0),
		})
	}
	return employees
}
