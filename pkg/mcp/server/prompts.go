package server

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	analysisStatistical = "statistical"
	analysisDataQuality = "data_quality"

	defaultSampleSize = 10
)

var tableAnalysisTmpl = template.Must(template.New("table_analysis").Parse(
	`Analyze the {{.Table}} table in the KDB-X database.

First, read the kdbx://tables-overview resource to understand the schema of
{{.Table}}, then sample {{.SampleSize}} rows with the run_sql_query tool.

{{if eq .AnalysisType "statistical" -}}
Perform a statistical analysis:
1. For each numeric column, compute count, mean, min, max, and standard deviation.
2. For each temporal column, report the covered time range and any gaps.
3. For each symbol/text column, report the distinct count and the most frequent values.
4. Summarize notable distributions, outliers, and correlations you observe.
{{- else -}}
Perform a data quality assessment:
1. Report the null/empty count per column.
2. Check for duplicate rows and duplicate keys.
3. Flag values that look out of range or inconsistent with the column type.
4. Summarize the overall quality and list concrete issues worth fixing.
{{- end}}

Use only read-only SELECT queries, and keep each query under the 1000 row
result cap by aggregating where possible.`))

type tableAnalysisData struct {
	Table        string
	AnalysisType string
	SampleSize   int
}

// TableAnalysis fills the analysis prompt template for a table. No database
// call is made; the generated prompt instructs the model which tools to use.
func (h *Handler) TableAnalysis(_ context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	args := request.Params.Arguments

	table := strings.TrimSpace(args["table_name"])
	if table == "" {
		return nil, fmt.Errorf("table_name is required")
	}

	analysisType := args["analysis_type"]
	if analysisType == "" {
		analysisType = analysisStatistical
	}
	if analysisType != analysisStatistical && analysisType != analysisDataQuality {
		return nil, fmt.Errorf("unknown analysis_type %q (supported: %s, %s)",
			analysisType, analysisStatistical, analysisDataQuality)
	}

	sampleSize := defaultSampleSize
	if raw := args["sample_size"]; raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("sample_size must be a positive integer, got %q", raw)
		}
		sampleSize = n
	}

	var b strings.Builder
	err := tableAnalysisTmpl.Execute(&b, tableAnalysisData{
		Table:        table,
		AnalysisType: analysisType,
		SampleSize:   sampleSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render analysis prompt: %w", err)
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("%s analysis of the %s table", analysisType, table),
		Messages: []mcp.PromptMessage{
			{
				Role:    mcp.RoleUser,
				Content: mcp.NewTextContent(b.String()),
			},
		},
	}, nil
}
