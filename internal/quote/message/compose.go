package message

import (
	"strings"
)

const (
	greeting = "Hi! I'd like to request a quote from your IT services website"
	closing  = "Could you please send me a quote? Thanks!"
)

// Draft holds the already-resolved display strings of a quote message.
type Draft struct {
	Name     string
	Services []string
	// Estimate is printed under the service list when more than one service
	// is selected.
	Estimate string
	Timeline string
	Details  string
}

// Compose renders the outbound message. It is deterministic and only emits
// the details block when Details has non-whitespace content.
func Compose(d Draft) string {
	var b strings.Builder

	b.WriteString(greeting)
	b.WriteString("\n\n")

	b.WriteString("Name: ")
	b.WriteString(d.Name)
	b.WriteString("\n")

	switch len(d.Services) {
	case 0:
		b.WriteString("Service: \n")
	case 1:
		b.WriteString("Service: ")
		b.WriteString(d.Services[0])
		b.WriteString("\n")
	default:
		b.WriteString("Services:\n")
		for _, s := range d.Services {
			b.WriteString("- ")
			b.WriteString(s)
			b.WriteString("\n")
		}
		if d.Estimate != "" {
			b.WriteString("Estimated total: ")
			b.WriteString(d.Estimate)
			b.WriteString("\n")
		}
	}

	b.WriteString("Timeline: ")
	b.WriteString(d.Timeline)
	b.WriteString("\n\n")

	if details := strings.TrimSpace(d.Details); details != "" {
		b.WriteString("Additional Details:\n")
		b.WriteString(details)
		b.WriteString("\n\n")
	}

	b.WriteString(closing)
	return b.String()
}
