package trainer

import (
	"strings"
	"text/template"

	"github.com/tunelab/tune/pkg/metrics"
)

// modelCardTemplate is the README pushed alongside the artifacts: a metadata
// front matter block the hub indexes, followed by a human-readable summary.
const modelCardTemplate = `---
{{- if .DatasetName }}
datasets:
- {{ .DatasetName }}
{{- end }}
metrics:
- f1
- accuracy
pipeline_tag: text-classification
---
# {{ .ModelName }}

This model is a fine-tuned version of [{{ .BaseModel }}](https://huggingface.co/{{ .BaseModel }})
{{- if .DatasetName }} on the ` + "`{{ .DatasetName }}`" + `{{ if .DatasetType }} ({{ .DatasetType }}){{ end }} dataset{{ end }}.

## Labels

{{ range .Labels }}- {{ . }}
{{ end }}
## Evaluation

Scores on the ` + "`{{ .TestSplit }}`" + ` split:

| metric | value |
|--------|-------|
| f1 | {{ printf "%.6f" .Report.F1 }} |
| f1_macro | {{ printf "%.6f" .Report.F1Macro }} |
| accuracy | {{ printf "%.6f" .Report.Accuracy }} |

The winning hyperparameters are recorded in ` + "`" + BestRunHyperparametersFileName + "`" + `.
`

type modelCardData struct {
	ModelName   string
	BaseModel   string
	DatasetName string
	DatasetType string
	TestSplit   string
	Labels      []string
	Report      metrics.Report
}

var modelCard = template.Must(template.New("model-card").Parse(modelCardTemplate))

func (o *Orchestrator) renderModelCard(report metrics.Report) (string, error) {
	name := o.config.Publish.ModelAlias
	if o.config.Publish.Organization != "" {
		name = o.config.Publish.Organization + "/" + name
	}

	var sb strings.Builder
	err := modelCard.Execute(&sb, modelCardData{
		ModelName:   name,
		BaseModel:   o.config.ModelID,
		DatasetName: o.config.DatasetName,
		DatasetType: o.config.DatasetType,
		TestSplit:   o.config.SplitTest,
		Labels:      o.mapping.Names(),
		Report:      report,
	})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}
