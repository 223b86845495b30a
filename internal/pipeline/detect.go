package pipeline

import "strings"

type DetectResult struct {
	IsReport bool
	Score    float64
	Reason   string
}

var reportKeywords = []string{"daily", "diario", "report", "informe", "ventas", "revenue"}

// DetectDailyReport scores whether an email looks like a daily operations
// report worth normalizing: subject keywords plus a spreadsheet attachment.
func DetectDailyReport(subject string, attachmentNames []string) DetectResult {
	subject = strings.ToLower(subject)

	score := 0.0
	for _, kw := range reportKeywords {
		if strings.Contains(subject, kw) {
			score += 0.25
		}
	}

	for _, name := range attachmentNames {
		ln := strings.ToLower(name)
		if strings.HasSuffix(ln, ".xlsx") || strings.HasSuffix(ln, ".xlsm") ||
			strings.HasSuffix(ln, ".xls") || strings.HasSuffix(ln, ".csv") {
			score += 0.5
			break
		}
	}
	if score > 1 {
		score = 1
	}

	isReport := score >= 0.5
	reason := "rules_negative"
	if isReport {
		reason = "rules_positive"
	}
	return DetectResult{IsReport: isReport, Score: score, Reason: reason}
}
