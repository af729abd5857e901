package search

import (
	"fmt"
	"strings"
)

// Index field names. Text fields carry a wildcard-typed .pattern sub-field
// for substring matching of any length and a .keyword sub-field for sorting.
var esFields = map[Field]string{
	FieldStatus:      "status",
	FieldTitle:       "title.pattern",
	FieldLocation:    "location.pattern",
	FieldJobType:     "job_type",
	FieldMinSalary:   "min_salary",
	FieldMaxSalary:   "max_salary",
	FieldSkills:      "skills",
	FieldCompanyName: "company_name.pattern",
}

var esSortFields = map[SortField]string{
	SortCreatedAt:           "created_at",
	SortUpdatedAt:           "updated_at",
	SortTitle:               "title.keyword",
	SortLocation:            "location.keyword",
	SortMinSalary:           "min_salary",
	SortMaxSalary:           "max_salary",
	SortApplicationDeadline: "application_deadline",
}

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

// RenderElasticsearch converts predicates into bool.filter clauses.
func RenderElasticsearch(preds []Predicate) []interface{} {
	filterClauses := []interface{}{}

	for _, p := range preds {
		field, ok := esFields[p.Field]
		if !ok {
			continue
		}

		switch p.Operator {
		case OpEquals, OpHas:
			filterClauses = append(filterClauses, map[string]interface{}{
				"term": map[string]interface{}{field: p.Value},
			})
		case OpContains:
			filterClauses = append(filterClauses, map[string]interface{}{
				"wildcard": map[string]interface{}{
					field: map[string]interface{}{
						"value":            "*" + wildcardEscaper.Replace(fmt.Sprint(p.Value)) + "*",
						"case_insensitive": true,
					},
				},
			})
		case OpGTE:
			filterClauses = append(filterClauses, map[string]interface{}{
				"range": map[string]interface{}{field: map[string]interface{}{"gte": p.Value}},
			})
		case OpLTE:
			filterClauses = append(filterClauses, map[string]interface{}{
				"range": map[string]interface{}{field: map[string]interface{}{"lte": p.Value}},
			})
		}
	}

	return filterClauses
}

// BuildElasticsearchQuery assembles a complete search body for q.
func BuildElasticsearchQuery(q Query) map[string]interface{} {
	boolQuery := map[string]interface{}{}
	if filters := RenderElasticsearch(q.Predicates); len(filters) > 0 {
		boolQuery["filter"] = filters
	} else {
		boolQuery["must"] = []interface{}{map[string]interface{}{"match_all": map[string]interface{}{}}}
	}

	field, ok := esSortFields[q.Sort.Field]
	if !ok {
		field = esSortFields[SortCreatedAt]
	}
	dir := q.Sort.Direction()

	return map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"sort": []map[string]interface{}{
			{field: map[string]interface{}{"order": dir, "missing": "_last"}},
			{"id": map[string]interface{}{"order": dir}},
		},
		"from":             q.Page.Offset(),
		"size":             q.Page.Size,
		"track_total_hits": true,
	}
}
