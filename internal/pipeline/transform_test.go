package pipeline

import (
	"math/rand"
	"testing"

	"github.com/ntarasov/cloudpipe/internal/domain"
)

func TestSalaryCategory_Boundaries(t *testing.T) {
	cases := []struct {
		salary int
		want   string
	}{
		{30000, "Low"},
		{49999, "Low"},
		{50000, "Medium"},
		{79999, "Medium"},
		{80000, "High"},
		{100000, "High"},
	}
	for _, tc := range cases {
		if got := salaryCategory(tc.salary); got != tc.want {
			t.Fatalf("salaryCategory(%d)=%s, want %s", tc.salary, got, tc.want)
		}
	}
}

func TestTransform_ComputedFields(t *testing.T) {
	in := []domain.Employee{
		{EmployeeID: 1, Name: "  Alice  ", Department: "IT", Salary: 45000, JoinDate: "2021-03-15", PerformanceScore: 4.5},
		{EmployeeID: 2, Name: "Bob", Department: "IT", Salary: 90000, JoinDate: "2020-01-01", PerformanceScore: 3.5},
	}

	processed, stats, err := Transform(in, 2024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if processed[0].Name != "Alice" {
		t.Fatalf("name not trimmed: %q", processed[0].Name)
	}
	if processed[0].SalaryCategory != "Low" || processed[1].SalaryCategory != "High" {
		t.Fatalf("categories: %s/%s", processed[0].SalaryCategory, processed[1].SalaryCategory)
	}
	if processed[0].ExperienceYears != 3 || processed[1].ExperienceYears != 4 {
		t.Fatalf("experience: %d/%d", processed[0].ExperienceYears, processed[1].ExperienceYears)
	}

	if len(stats) != 1 {
		t.Fatalf("want 1 department, got %d", len(stats))
	}
	st := stats[0]
	if st.Department != "IT" || st.MinSalary != 45000 || st.MaxSalary != 90000 {
		t.Fatalf("stats: %+v", st)
	}
	if st.AvgSalary != 67500 {
		t.Fatalf("avg salary: %v", st.AvgSalary)
	}
	if st.AvgPerformance != 4.0 {
		t.Fatalf("avg performance: %v", st.AvgPerformance)
	}
}

func TestTransform_BadJoinDate(t *testing.T) {
	in := []domain.Employee{
		{EmployeeID: 1, Name: "X", Department: "IT", Salary: 1, JoinDate: "not-a-date"},
	}
	if _, _, err := Transform(in, 2024); err == nil {
		t.Fatal("want error for malformed join_date")
	}
}

func TestTransform_StatsSortedByDepartment(t *testing.T) {
	in := []domain.Employee{
		{EmployeeID: 1, Department: "Sales", Salary: 1000, JoinDate: "2020-01-01"},
		{EmployeeID: 2, Department: "Finance", Salary: 2000, JoinDate: "2020-01-01"},
		{EmployeeID: 3, Department: "IT", Salary: 3000, JoinDate: "2020-01-01"},
	}
	_, stats, err := Transform(in, 2024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats[0].Department != "Finance" || stats[1].Department != "IT" || stats[2].Department != "Sales" {
		t.Fatalf("not sorted: %+v", stats)
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	in := GenerateEmployees(10, rand.New(rand.NewSource(1)))

	raw, err := EncodeEmployees(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := DecodeEmployees(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("want %d rows, got %d", len(in), len(out))
	}
	if out[3] != in[3] {
		t.Fatalf("row mismatch: %+v != %+v", out[3], in[3])
	}
}

func TestDecodeEmployees_BadInput(t *testing.T) {
	if _, err := DecodeEmployees(nil); err == nil {
		t.Fatal("want error for empty csv")
	}
	if _, err := DecodeEmployees([]byte("a,b\n1,2\n")); err == nil {
		t.Fatal("want error for wrong header width")
	}
	bad := "employee_id,name,department,salary,join_date,performance_score\nx,Bob,IT,100,2020-01-01,1.5\n"
	if _, err := DecodeEmployees([]byte(bad)); err == nil {
		t.Fatal("want error for non-numeric employee_id")
	}
}

func TestGenerateEmployees_Ranges(t *testing.T) {
	employees := GenerateEmployees(200, rand.New(rand.NewSource(42)))

	if len(employees) != 200 {
		t.Fatalf("want 200, got %d", len(employees))
	}
	for _, e := range employees {
		if e.Salary < 30000 || e.Salary > 100000 {
			t.Fatalf("salary out of range: %d", e.Salary)
		}
		if e.PerformanceScore < 1.0 || e.PerformanceScore > 5.0 {
			t.Fatalf("score out of range: %v", e.PerformanceScore)
		}
		if e.Department == "" || e.Name == "" {
			t.Fatalf("empty fields: %+v", e)
		}
	}
}

func TestProcessedKeyFor(t *testing.T) {
	got := ProcessedKeyFor("raw/employees_20240101_120000.csv")
	want := "processed/processed_employees_20240101_120000.csv"
	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
	// Детерминированность: повторный вызов даёт тот же ключ.
	if again := ProcessedKeyFor("raw/employees_20240101_120000.csv"); again != got {
		t.Fatal("key is not deterministic")
	}
}
