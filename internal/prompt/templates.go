package prompt

import (
	"strings"
	"text/template"
)

// Instructions sent as the system turn for each task.
const (
	ReplyInstruction = `You are the customer support assistant of an electricity and water utility.
Answer the customer's message directly, politely and briefly (at most four sentences).
Reply in the customer's language. Never invent account figures that are not in the context.
If the issue needs a human agent, say that an agent will follow up.`

	AnalysisInstruction = `You are a senior support analyst at a utility company.
Assess a customer's service request before a ticket is filed, using only the data provided.`

	InsightsInstruction = `You are an energy advisor at a utility company.
Predict the customer's next bill and give practical recommendations based on the consumption history provided.`
)

var funcs = template.FuncMap{
	"join": strings.Join,
}

const replyTemplateText = `Customer context:
{{.Context}}

Detected intent: {{.Intent}} (confidence {{printf "%.2f" .Confidence}})
Sentiment: {{.Sentiment}}, urgency: {{.Urgency}}
{{- if .Emotions}}
Emotions: {{join .Emotions ", "}}
{{- end}}
Channel: {{.Channel}}
Language: {{.Language}}
Current time: {{.Now}}

Customer message:
{{.Query}}`

const analysisTemplateText = `Customer: {{.Customer.Name}} (account {{.Customer.AccountNumber}})
Address: {{.Customer.Address}}
Last bill: {{printf "%.2f" .Customer.LastBill}}, predicted bill: {{printf "%.2f" .Customer.PredictedBill}}
Outstanding balance: {{printf "%.2f" .Customer.OutstandingBalance}}
{{- if .Customer.OpenTickets}}
Open tickets:
{{- range .Customer.OpenTickets}}
- {{.ID}} [{{.Status}}] {{.Subject}}
{{- end}}
{{- end}}

Consumption: {{.Summary.Points}} periods, average {{printf "%.2f" .Summary.AverageAmount}}, latest {{printf "%.2f" .Summary.LatestAmount}}, variance {{printf "%.1f" .Summary.VariancePercent}}%, trend {{.Summary.Trend}}
{{- if .Customer.UsagePattern.HighConsumptionReason}}
Known high-consumption reason: {{.Customer.UsagePattern.HighConsumptionReason}}
{{- end}}

Request type: {{.RequestType}}
Request details: {{.Details}}
Classified intent: {{.Intent}} ({{printf "%.2f" .IntentConfidence}})
Deflection check: {{.Guidance.Reason}} ({{printf "%.2f" .Guidance.Confidence}})

Provide situation_analysis, root_cause, recommendations and priority (one of low, medium, high, urgent).`

const insightsTemplateText = `Customer: {{.Customer.Name}}
{{- if .Customer.UsagePattern.PeakHours}}
Peak hours: {{.Customer.UsagePattern.PeakHours}}
{{- end}}
{{- if .Customer.UsagePattern.Notes}}
Notes: {{join .Customer.UsagePattern.Notes "; "}}
{{- end}}
Consumption history (month, amount, usage):
{{- range .Customer.Consumption}}
- {{.Month}}: {{printf "%.2f" .Amount}} / {{printf "%.1f" .Usage}}
{{- end}}

Local estimate: {{printf "%.2f" .Prediction.Predicted}} ({{.Prediction.Method}}, trend {{.Prediction.Trend}}, confidence {{printf "%.2f" .Prediction.Confidence}})
Current date: {{.Now}}

Provide predicted_bill, confidence, trend and up to five recommendations with a priority each.`

var (
	replyTemplate    = template.Must(template.New("reply").Funcs(funcs).Parse(replyTemplateText))
	analysisTemplate = template.Must(template.New("analysis").Funcs(funcs).Parse(analysisTemplateText))
	insightsTemplate = template.Must(template.New("insights").Funcs(funcs).Parse(insightsTemplateText))
)
