package core

import "strings"

const OrderingParam = "ordering"

type Ordering struct {
	Field     string
	Ascending bool
}

func (ord Ordering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// ParseOrderings parses a comma-separated list of fields; a leading "-" sorts descending.
func ParseOrderings(val string) []Ordering {
	var ords []Ordering
	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		if field == "" || field == "-" {
			continue
		}
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		ords = append(ords, Ordering{Field: field, Ascending: !descending})
	}
	return ords
}
