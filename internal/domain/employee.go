package domain

// Employee — строка сырого CSV из raw-bucket'а.
// JoinDate хранится строкой в формате YYYY-MM-DD (как в исходном файле);
// разбор даты выполняется на этапе обработки.
type Employee struct {
	EmployeeID       int
	Name             string
	Department       string
	Salary           int
	JoinDate         string
	PerformanceScore float64
}

// ProcessedEmployee — строка обработанного CSV: исходные поля плюс
// вычисляемые salary_category и experience_years.
type ProcessedEmployee struct {
	Employee
	SalaryCategory  string
	ExperienceYears int
}

// DepartmentStat — агрегированные метрики по отделу.
type DepartmentStat struct {
	Department     string
	AvgSalary      float64
	MinSalary      int
	MaxSalary      int
	AvgPerformance float64
}
