package pipeline

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/ntarasov/cloudpipe/internal/domain"
)

// Заголовки CSV-файлов пайплайна. Порядок колонок фиксирован.
var (
	rawHeader = []string{
		"employee_id", "name", "department", "salary", "join_date", "performance_score",
	}
	processedHeader = []string{
		"employee_id", "name", "department", "salary", "join_date", "performance_score",
		"salary_category", "experience_years",
	}
	statsHeader = []string{
		"department", "avg_salary", "min_salary", "max_salary", "avg_performance",
	}
)

// DecodeEmployees — разбор сырого CSV. Первой строкой ожидается заголовок.
func DecodeEmployees(data []byte) ([]domain.Employee, error) {
	r := csv.NewReader(bytes.NewReader(data))
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty csv")
	}
	if len(rows[0]) != len(rawHeader) {
		return nil, fmt.Errorf("unexpected header: %v", rows[0])
	}

	employees := make([]domain.Employee, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) != len(rawHeader) {
			return nil, fmt.Errorf("row %d: want %d columns, got %d", i+2, len(rawHeader), len(row))
		}

		id, err := strconv.Atoi(row[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: employee_id: %w", i+2, err)
		}
		salary, err := strconv.Atoi(row[3])
		if err != nil {
			return nil, fmt.Errorf("row %d: salary: %w", i+2, err)
		}
		score, err := strconv.ParseFloat(row[5], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: performance_score: %w", i+2, err)
		}

		employees = append(employees, domain.Employee{
			EmployeeID:       id,
			Name:             row[1],
			Department:       row[2],
			Salary:           salary,
			JoinDate:         row[4],
			PerformanceScore: score,
		})
	}
	return employees, nil
}

// EncodeEmployees — сырой CSV для загрузки в raw-bucket.
func EncodeEmployees(employees []domain.Employee) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(rawHeader); err != nil {
		return nil, err
	}
	for _, e := range employees {
		rec := []string{
			strconv.Itoa(e.EmployeeID),
			e.Name,
			e.Department,
			strconv.Itoa(e.Salary),
			e.JoinDate,
			formatFloat(e.PerformanceScore),
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// EncodeProcessed — обработанный CSV (исходные поля + вычисляемые).
func EncodeProcessed(employees []domain.ProcessedEmployee) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(processedHeader); err != nil {
		return nil, err
	}
	for _, e := range employees {
		rec := []string{
			strconv.Itoa(e.EmployeeID),
			e.Name,
			e.Department,
			strconv.Itoa(e.Salary),
			e.JoinDate,
			formatFloat(e.PerformanceScore),
			e.SalaryCategory,
			strconv.Itoa(e.ExperienceYears),
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// EncodeDepartmentStats — CSV с агрегатами по отделам.
func EncodeDepartmentStats(stats []domain.DepartmentStat) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(statsHeader); err != nil {
		return nil, err
	}
	for _, s := range stats {
		rec := []string{
			s.Department,
			formatFloat(s.AvgSalary),
			strconv.Itoa(s.MinSalary),
			strconv.Itoa(s.MaxSalary),
			formatFloat(s.AvgPerformance),
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}
