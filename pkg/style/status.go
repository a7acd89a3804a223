package style

import (
	"fmt"

	"github.com/pterm/pterm"
)

// Status classifies a line of output
type Status string

const (
	StatusSuccess     Status = "success"     // Operation done
	StatusError       Status = "error"       // Operation failed
	StatusCurrent     Status = "current"     // The selected release
	StatusRelease     Status = "release"     // A release that is not selected
	StatusMaintenance Status = "maintenance" // Maintenance is selected
	StatusInvalid     Status = "invalid"     // The current pointer is broken
	StatusInfo        Status = "info"
)

// badgeLabels are the fixed-width labels shown in front of status lines
var badgeLabels = map[Status]string{
	StatusSuccess:     "OK",
	StatusError:       "FAILED",
	StatusCurrent:     "CURRENT",
	StatusRelease:     "RELEASE",
	StatusMaintenance: "MAINT",
	StatusInvalid:     "INVALID",
	StatusInfo:        "INFO",
}

// StatusStyle returns the appropriate pterm style for a status
func StatusStyle(status Status) *pterm.Style {
	switch status {
	case StatusSuccess, StatusCurrent:
		return pterm.NewStyle(pterm.BgGreen, pterm.FgBlack)
	case StatusError:
		return pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	case StatusInvalid:
		return pterm.NewStyle(pterm.BgRed, pterm.FgWhite, pterm.Bold)
	case StatusMaintenance:
		return pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	case StatusInfo:
		return pterm.NewStyle(pterm.FgCyan)
	default:
		return pterm.NewStyle(pterm.FgGray)
	}
}

// BadgeLabel returns the padded label of a status without styling
func BadgeLabel(status Status) string {
	label, ok := badgeLabels[status]
	if !ok {
		label = string(status)
	}
	return fmt.Sprintf(" %-7s ", label)
}

// Badge renders the label of a status with its pterm style
func Badge(status Status) string {
	return StatusStyle(status).Sprint(BadgeLabel(status))
}

// CurrentStatus maps the state of the current pointer to a status
func CurrentStatus(state string) Status {
	switch state {
	case "release":
		return StatusCurrent
	case "maintenance":
		return StatusMaintenance
	default:
		return StatusInvalid
	}
}
