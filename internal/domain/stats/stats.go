// Package stats holds the figures shown on the administrator dashboard.
package stats

// AdminStats is the dashboard summary.
type AdminStats struct {
	UserCount    int64
	PatientCount int64
	GenderStats  []GenderStat
	YearStats    []YearStat
}

// GenderStat counts users per gender, labelled for display.
type GenderStat struct {
	Name  string
	Value int64
}

// YearStat counts users per birth year.
type YearStat struct {
	Year  string
	Count int64
}

// Bucket is a raw grouped count as returned by the database.
type Bucket struct {
	Key   string
	Count int64
}

var genderLabels = map[string]string{
	"male":   "男",
	"Male":   "男",
	"female": "女",
	"Female": "女",
}

// GenderLabel maps the stored gender value to its display label.
// Unknown values are shown as stored.
func GenderLabel(raw string) string {
	if label, ok := genderLabels[raw]; ok {
		return label
	}
	return raw
}

// GenderStatsFrom labels raw gender buckets.
func GenderStatsFrom(buckets []Bucket) []GenderStat {
	out := make([]GenderStat, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, GenderStat{Name: GenderLabel(b.Key), Value: b.Count})
	}
	return out
}

// YearStatsFrom converts raw year buckets, skipping rows without a year.
func YearStatsFrom(buckets []Bucket) []YearStat {
	out := make([]YearStat, 0, len(buckets))
	for _, b := range buckets {
		if b.Key == "" {
			continue
		}
		out = append(out, YearStat{Year: b.Key, Count: b.Count})
	}
	return out
}
