package audit

import (
	"testing"

	"github.com/cuemby/syncd/pkg/types"
)

func strp(s string) *string { return &s }

func TestClassify(t *testing.T) {
	cases := []struct {
		name       string
		before     *string
		after      *string
		updateSize int
		want       types.EditType
	}{
		{"grows is insert", strp("hi"), strp("hi there"), 0, types.EditTypeInsert},
		{"shrinks is delete", strp("hi there"), strp("hi"), 0, types.EditTypeDelete},
		{"same length different content is update", strp("cat"), strp("dog"), 0, types.EditTypeUpdate},
		{"identical content is format", strp("same"), strp("same"), 0, types.EditTypeFormat},
		{"appears from nothing is insert", nil, strp("new"), 0, types.EditTypeInsert},
		{"disappears entirely is delete", strp("gone"), nil, 0, types.EditTypeDelete},
		{"no fragment small update is format", nil, nil, 10, types.EditTypeFormat},
		{"no fragment boundary update size is update", nil, nil, 50, types.EditTypeUpdate},
		{"no fragment large update is update", nil, nil, 4096, types.EditTypeUpdate},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.before, tc.after, tc.updateSize)
			if got != tc.want {
				t.Fatalf("Classify(%v, %v, %d) = %s, want %s", tc.before, tc.after, tc.updateSize, got, tc.want)
			}
		})
	}
}
