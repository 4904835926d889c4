package util

// InArray returns true if element s is present in arr
func InArray(s string, arr []string) bool {
	for _, e := range arr {
		if e == s {
			return true
		}
	}
	return false
}

// Sub returns a slice with the elements from arr1 that are absent from arr2.
func Sub(arr1, arr2 []string) []string {
	result := make([]string, 0)
	for _, s := range arr1 {
		if !InArray(s, arr2) {
			result = append(result, s)
		}
	}
	return result
}

// ElementsMatchString returns true if arr1 and arr2 have the same elements without regard for order.
func ElementsMatchString(arr1, arr2 []string) bool {
	if len(arr1) != len(arr2) {
		return false
	}
	for _, s := range arr1 {
		if !InArray(s, arr2) {
			return false
		}
	}
	return true
}
