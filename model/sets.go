package model

func containsString(values []string, v string) bool {
	for _, existing := range values {
		if existing == v {
			return true
		}
	}
	return false
}

// addUnique appends v unless already present.
func addUnique(values []string, v string) ([]string, bool) {
	if containsString(values, v) {
		return values, false
	}
	return append(values, v), true
}
