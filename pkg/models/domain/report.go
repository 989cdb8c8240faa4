package domain

// Report represents a complete sales report
type Report struct {
	Title      string
	Year       int
	Sections   []ReportSection
	TotalUnits int64
	Unit       string
	Charts     []ChartArtifact
}

// ReportSection represents a logical section in the report
type ReportSection struct {
	Title   string
	Summary map[string]interface{}
	Details []ReportDetail
	Notes   []string
}

// ReportDetail represents one row within a section
type ReportDetail struct {
	Name        string
	Value       interface{}
	Unit        string
	Description string
}

// RenderedCharts returns the charts that produced an image.
func (r *Report) RenderedCharts() []ChartArtifact {
	var out []ChartArtifact
	for _, c := range r.Charts {
		if !c.Skipped() {
			out = append(out, c)
		}
	}
	return out
}
