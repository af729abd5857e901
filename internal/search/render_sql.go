package search

import (
	"fmt"
	"strings"
)

// Column references assume job_postings is aliased j and employer_profiles e.
var sqlColumns = map[Field]string{
	FieldStatus:      "j.status",
	FieldTitle:       "j.title",
	FieldLocation:    "j.location",
	FieldJobType:     "j.job_type",
	FieldMinSalary:   "j.min_salary",
	FieldMaxSalary:   "j.max_salary",
	FieldSkills:      "j.skills",
	FieldCompanyName: "e.company_name",
}

var sqlSortColumns = map[SortField]string{
	SortCreatedAt:           "j.created_at",
	SortUpdatedAt:           "j.updated_at",
	SortTitle:               "j.title",
	SortLocation:            "j.location",
	SortMinSalary:           "j.min_salary",
	SortMaxSalary:           "j.max_salary",
	SortApplicationDeadline: "j.application_deadline",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// RenderSQL folds predicates into a WHERE body joined with AND. Placeholders
// are numbered from startArg. An empty predicate list renders "TRUE".
func RenderSQL(preds []Predicate, startArg int) (string, []interface{}) {
	if len(preds) == 0 {
		return "TRUE", nil
	}

	clauses := make([]string, 0, len(preds))
	args := make([]interface{}, 0, len(preds))
	n := startArg

	for _, p := range preds {
		col, ok := sqlColumns[p.Field]
		if !ok {
			continue
		}

		switch p.Operator {
		case OpEquals:
			clauses = append(clauses, fmt.Sprintf("%s = $%d", col, n))
			args = append(args, p.Value)
		case OpContains:
			clauses = append(clauses, fmt.Sprintf(`%s ILIKE $%d ESCAPE '\'`, col, n))
			args = append(args, "%"+likeEscaper.Replace(fmt.Sprint(p.Value))+"%")
		case OpGTE:
			clauses = append(clauses, fmt.Sprintf("%s >= $%d", col, n))
			args = append(args, p.Value)
		case OpLTE:
			clauses = append(clauses, fmt.Sprintf("%s <= $%d", col, n))
			args = append(args, p.Value)
		case OpHas:
			clauses = append(clauses, fmt.Sprintf("$%d = ANY(%s)", n, col))
			args = append(args, p.Value)
		default:
			continue
		}
		n++
	}

	if len(clauses) == 0 {
		return "TRUE", nil
	}
	return strings.Join(clauses, " AND "), args
}

// RenderSQLOrder renders an ORDER BY body with an id tiebreaker.
func RenderSQLOrder(s Sort) string {
	col, ok := sqlSortColumns[s.Field]
	if !ok {
		col = sqlSortColumns[SortCreatedAt]
	}
	dir := strings.ToUpper(s.Direction())
	return fmt.Sprintf("%s %s NULLS LAST, j.id %s", col, dir, dir)
}
