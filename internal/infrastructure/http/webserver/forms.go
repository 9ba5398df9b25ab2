package webserver

import (
	"net/http"
	"strconv"
	"strings"
)

func formInt(r *http.Request, field string) int {
	value, err := strconv.Atoi(strings.TrimSpace(r.FormValue(field)))
	if err != nil {
		return 0
	}
	return value
}

func formFloat(r *http.Request, field string) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(r.FormValue(field)), 64)
	if err != nil {
		return 0
	}
	return value
}

// splitFormList parses a comma separated text field into trimmed values
func splitFormList(raw string) []string {
	var values []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
