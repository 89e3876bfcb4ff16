package errors

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestValidationError_IsInvalid(t *testing.T) {
	var ve ValidationError
	ve.Add("site.title", "must not be empty")

	var err error = ve
	if !errors.Is(err, ErrInvalid) {
		t.Fatal("expected validation error to match ErrInvalid")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("expected validation error not to match ErrNotFound")
	}
	if !strings.Contains(err.Error(), "site.title: must not be empty") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestValidationError_Merge(t *testing.T) {
	var inner ValidationError
	inner.Add("title", "required")
	inner.Add("", "broken")

	var outer ValidationError
	outer.Merge("posts/a.md", inner)

	want := []string{"posts/a.md.title", "posts/a.md"}
	if got := outer.Fields(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected fields %v, got %v", want, got)
	}
	if !outer.HasAny() {
		t.Error("expected merged error to have items")
	}
}

func TestFieldError_NoField(t *testing.T) {
	fe := FieldError{Message: "oops"}
	if fe.Error() != "oops" {
		t.Errorf("expected %q, got %q", "oops", fe.Error())
	}
}
