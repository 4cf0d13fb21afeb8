// Package template renders message content with {placeholder} tokens
// interpolated from the client record and firing context.
package template

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lumera-app/lumera/pkg/models"
)

// Render substitutes every {token} in input with its value from data.
// Unknown tokens are left in place so a typo is visible in the delivered
// content instead of silently vanishing.
func Render(input string, data map[string]string) string {
	if !strings.Contains(input, "{") {
		return input
	}

	var b strings.Builder
	b.Grow(len(input))

	for {
		open := strings.IndexByte(input, '{')
		if open < 0 {
			b.WriteString(input)

			break
		}

		closing := strings.IndexByte(input[open:], '}')
		if closing < 0 {
			b.WriteString(input)

			break
		}

		token := input[open+1 : open+closing]

		b.WriteString(input[:open])

		if value, ok := data[token]; ok {
			b.WriteString(value)
		} else {
			b.WriteString(input[open : open+closing+1])
		}

		input = input[open+closing+1:]
	}

	return b.String()
}

// RenderForClient renders input with the standard token set derived from a
// client and the firing context.
func RenderForClient(input string, client *models.Client, firing models.FiringContext) string {
	return Render(input, TokenData(client, firing))
}

// TokenData builds the substitution map for one client and firing.
func TokenData(client *models.Client, firing models.FiringContext) map[string]string {
	data := map[string]string{
		"clientName":      client.Name,
		"clientFirstName": firstName(client.Name),
		"clientEmail":     client.Email,
		"clientPhone":     client.Phone,
		"clientType":      client.ClientType,
		"totalSpent":      strconv.FormatFloat(client.TotalSpent, 'f', -1, 64),
		"visitCount":      strconv.Itoa(client.VisitCount),
		"loyaltyPoints":   strconv.Itoa(client.LoyaltyPoints),
		"lastService":     client.LastService,
		"workflowName":    firing.WorkflowName,
	}

	if client.LastVisitAt != nil {
		data["lastVisit"] = client.LastVisitAt.Format("2006-01-02")
	}

	if client.Birthday != nil {
		data["birthday"] = client.Birthday.Format("01-02")
	}

	for k, v := range client.Custom {
		data[fmt.Sprintf("custom.%s", k)] = v
	}

	return data
}

func firstName(name string) string {
	if i := strings.IndexByte(name, ' '); i > 0 {
		return name[:i]
	}

	return name
}
