package core

// detect.go picks the broker schema that best explains a header row.

// SchemaScore is the detection score of one schema.
type SchemaScore struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// DetectScores scores every registered schema against headers, in registration
// order. A schema scores one point per canonical field for which at least one
// of its candidate columns appears in headers, compared case-insensitively.
func DetectScores(headers []string) []SchemaScore {
	idx := MakeHeaderIndex(headers)

	schemas := All()
	scores := make([]SchemaScore, 0, len(schemas))
	for _, s := range schemas {
		scores = append(scores, SchemaScore{
			Key:   s.Key,
			Name:  s.Name,
			Score: scoreSchema(s, idx),
		})
	}
	return scores
}

func scoreSchema(s BrokerSchema, idx HeaderIndex) int {
	score := 0
	for _, f := range s.MappedFields() {
		if matchesAny(s.FieldMap[f], idx) {
			score++
		}
	}
	return score
}

func matchesAny(candidates []string, idx HeaderIndex) bool {
	for _, c := range candidates {
		if _, ok := idx[lowerClean(c)]; ok {
			return true
		}
	}
	return false
}

// Detect returns the key of the schema with the strictly highest score.
// Ties go to the schema registered first; when nothing scores, the generic
// schema is returned.
func Detect(headers []string) string {
	best := GenericKey
	bestScore := 0
	for _, s := range DetectScores(headers) {
		if s.Score > bestScore {
			best = s.Key
			bestScore = s.Score
		}
	}
	return best
}
