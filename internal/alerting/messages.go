package alerting

import (
	"fmt"
	"time"

	"github.com/civicwatch/civicwatch/internal/database/types"
	"github.com/civicwatch/civicwatch/internal/database/types/enum"
)

// messageTemplate holds the title and body format of a category's alerts.
// The body receives the report count, area, radius in meters, window in hours and severity, in that order.
type messageTemplate struct {
	title string
	body  string
}

var templates = map[enum.ReportCategory]messageTemplate{
	enum.ReportCategoryCrime: {
		title: "Crime alert near %s",
		body:  "%d crime reports near %s within %.0f m in the last %d hours. Severity: %s. Stay alert and avoid walking alone in the area.",
	},
	enum.ReportCategoryMissing: {
		title: "Missing person alert near %s",
		body:  "%d missing person reports near %s within %.0f m in the last %d hours. Severity: %s. Contact the authorities if you have any information.",
	},
	enum.ReportCategoryDog: {
		title: "Dog attack alert near %s",
		body:  "%d dog attack reports near %s within %.0f m in the last %d hours. Severity: %s. Keep children and pets close and avoid stray dogs.",
	},
	enum.ReportCategoryHazard: {
		title: "Hazard alert near %s",
		body:  "%d hazard reports near %s within %.0f m in the last %d hours. Severity: %s. Use caution and follow local guidance.",
	},
	enum.ReportCategoryNaturalDisaster: {
		title: "Natural disaster alert near %s",
		body:  "%d natural disaster reports near %s within %.0f m in the last %d hours. Severity: %s. Follow evacuation instructions from the authorities.",
	},
}

var fallbackTemplate = messageTemplate{
	title: "Safety alert near %s",
	body:  "%d incident reports near %s within %.0f m in the last %d hours. Severity: %s.",
}

// areaName returns the report's area label, or its coordinates when unlabelled.
func areaName(report *types.Report) string {
	if report.AreaLabel != "" {
		return report.AreaLabel
	}
	return report.Location().String()
}

// buildMessage renders the title and message of an alert.
func buildMessage(
	category enum.ReportCategory, count int, area string, radiusMeters float64, window time.Duration,
	severity enum.AlertSeverity,
) (string, string) {
	tmpl, ok := templates[category]
	if !ok {
		tmpl = fallbackTemplate
	}

	title := fmt.Sprintf(tmpl.title, area)
	body := fmt.Sprintf(tmpl.body, count, area, radiusMeters, int(window.Hours()), severity.String())

	return title, body
}
