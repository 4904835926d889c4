package util

import (
	"testing"
)

func TestInArray(t *testing.T) {
	arr := []string{"a", "b", "c"}
	if !InArray("b", arr) || InArray("d", arr) {
		t.Error("fail to find element in array")
	}
}

func TestSub(t *testing.T) {
	r := Sub([]string{"a", "b", "c"}, []string{"b"})
	if len(r) != 2 || r[0] != "a" || r[1] != "c" {
		t.Error("fail to subtract arrays")
	}
}

func TestElementsMatchString(t *testing.T) {
	if !ElementsMatchString([]string{"a", "b"}, []string{"b", "a"}) {
		t.Error("fail to match the same elements")
	}
	if ElementsMatchString([]string{"a", "b"}, []string{"a", "c"}) {
		t.Error("matched different elements")
	}
}
