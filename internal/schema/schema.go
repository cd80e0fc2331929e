// Package schema recognizes the dataset shapes the reporter knows about and
// holds the column labels and value recoders shared by processing and charts.
package schema

import (
	"strings"

	"github.com/KaramelBytes/ai-reporter/internal/table"
)

// AdTechColumns must all be present (exact case) for campaign aggregation.
var AdTechColumns = []string{"Campaign_ID", "Impressions", "Clicks", "Spend", "Conversions"}

// MedicalColumns is the heart-disease record layout, matched case-insensitively.
var MedicalColumns = []string{
	"age", "sex", "cp", "trestbps", "chol", "fbs", "restecg",
	"thalach", "exang", "oldpeak", "slope", "ca", "thal", "target",
}

// DisplayNames maps each medical column to its report label.
var DisplayNames = map[string]string{
	"age":      "Age",
	"sex":      "Sex",
	"cp":       "Chest Pain Type",
	"trestbps": "Resting BP (mm Hg)",
	"chol":     "Cholesterol (mg/dl)",
	"fbs":      "Fasting BS > 120",
	"restecg":  "Resting ECG",
	"thalach":  "Max Heart Rate",
	"exang":    "Exercise Angina",
	"oldpeak":  "ST Depression",
	"slope":    "ST Slope",
	"ca":       "Major Vessels (0-3)",
	"thal":     "Thalassemia",
	"target":   "Diagnosis",
}

// DiagnosisLabel is the display name of the recoded target column.
const DiagnosisLabel = "Diagnosis"

// Recoder turns a coded value into its label.
type Recoder func(any) string

// Recoders lists the medical columns whose coded values get labels.
var Recoders = map[string]Recoder{
	"sex":    Sex,
	"target": Target,
	"cp":     ChestPain,
	"fbs":    FastingBloodSugar,
	"exang":  ExerciseAngina,
}

func lookup(labels map[int64]string) Recoder {
	return func(v any) string {
		if n, ok := table.ToInt(v); ok {
			if l, ok := labels[n]; ok {
				return l
			}
		}
		return table.FormatValue(v)
	}
}

var (
	// Sex maps 1/0 to Male/Female.
	Sex = lookup(map[int64]string{1: "Male", 0: "Female"})
	// Target maps 1/0 to Heart Disease/No Disease.
	Target = lookup(map[int64]string{1: "Heart Disease", 0: "No Disease"})
	// ChestPain maps 0..3 to the angina categories.
	ChestPain = lookup(map[int64]string{
		0: "Typ. Angina",
		1: "Atyp. Angina",
		2: "Non-anginal",
		3: "Asymptomatic",
	})
	FastingBloodSugar = lookup(map[int64]string{1: "True", 0: "False"})
	ExerciseAngina    = lookup(map[int64]string{1: "Yes", 0: "No"})
)

// IsAdTech reports whether t carries every advertising metric column.
func IsAdTech(t *table.Table) bool {
	return t.HasColumns(AdTechColumns...)
}

// IsMedical reports whether t carries every medical column in any letter case.
func IsMedical(t *table.Table) bool {
	for _, name := range MedicalColumns {
		if _, ok := t.ColumnFold(name); !ok {
			return false
		}
	}
	return true
}

// DiagnosisColumn is the per-row diagnosis label of a table.
type DiagnosisColumn struct {
	// Source is the column the labels were read from.
	Source string
	Labels []string
}

// Diagnosis finds the diagnosis labels of t. An exact "Diagnosis" column wins
// and is read as-is; otherwise a "target" column in any case is recoded with
// Target. It returns false when neither exists.
func Diagnosis(t *table.Table) (DiagnosisColumn, bool) {
	if c, ok := t.Column(DiagnosisLabel); ok {
		return DiagnosisColumn{Source: c.Name, Labels: recode(c.Values, table.FormatValue)}, true
	}
	if c, ok := t.ColumnFold("target"); ok {
		return DiagnosisColumn{Source: c.Name, Labels: recode(c.Values, Target)}, true
	}
	return DiagnosisColumn{}, false
}

func recode(vals []any, f func(any) string) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = f(v)
	}
	return out
}

// Canonical returns the lower-case medical name for a column header, or "".
func Canonical(header string) string {
	l := strings.ToLower(header)
	if _, ok := DisplayNames[l]; ok {
		return l
	}
	return ""
}
