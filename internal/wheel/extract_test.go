package wheel

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/any-hub/wheelhouse/internal/testutil"
)

func TestReadMetadata(t *testing.T) {
	body := testutil.SimpleWheel(t, "bar", "2.0", "cp311-cp311-linux_x86_64")

	meta, err := ReadMetadata(body)
	if err != nil {
		t.Fatalf("read metadata: %v", err)
	}
	if meta.Member != "bar-2.0.dist-info/WHEEL" {
		t.Fatalf("unexpected member %s", meta.Member)
	}
	if len(meta.ExtraMembers) != 0 {
		t.Fatalf("unexpected extra members %v", meta.ExtraMembers)
	}
	if diff := cmp.Diff([]string{"cp311-cp311-linux_x86_64"}, meta.Tags()); diff != "" {
		t.Fatalf("tags mismatch (-want +got):\n%s", diff)
	}
	for key := range meta.Header {
		if key != "wheel-version" && key != "generator" && key != "root-is-purelib" && key != "tag" {
			t.Fatalf("unexpected key %q", key)
		}
	}
}

func TestReadMetadataTakesFirstMatch(t *testing.T) {
	body := testutil.BuildWheel(t,
		testutil.Member{Name: "a-1.0.dist-info/WHEEL", Data: testutil.WheelFile("py3-none-any")},
		testutil.Member{Name: "b-1.0.dist-info/WHEEL", Data: testutil.WheelFile("cp39-cp39-win32")},
	)

	meta, err := ReadMetadata(body)
	if err != nil {
		t.Fatalf("read metadata: %v", err)
	}
	if meta.Member != "a-1.0.dist-info/WHEEL" {
		t.Fatalf("expected first member, got %s", meta.Member)
	}
	if diff := cmp.Diff([]string{"b-1.0.dist-info/WHEEL"}, meta.ExtraMembers); diff != "" {
		t.Fatalf("extra members mismatch (-want +got):\n%s", diff)
	}
}

func TestReadMetadataCorrupt(t *testing.T) {
	testCases := []struct {
		name string
		body []byte
	}{
		{"not a zip", []byte("<html>not a wheel</html>")},
		{"empty", nil},
		{"truncated", testutil.SimpleWheel(t, "foo", "1.0", "py3-none-any")[:40]},
		{"no wheel member", testutil.BuildWheel(t, testutil.Member{Name: "foo-1.0.dist-info/METADATA", Data: "Name: foo\n"})},
		{"suffix is case sensitive", testutil.BuildWheel(t, testutil.Member{Name: "foo-1.0.dist-info/wheel", Data: "Tag: py3-none-any\n"})},
		{"not utf-8", testutil.BuildWheel(t, testutil.Member{Name: "foo-1.0.dist-info/WHEEL", Data: "Tag: \xff\xfe\n"})},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			meta, err := ReadMetadata(tc.body)
			if meta != nil {
				t.Fatalf("expected nil metadata, got %+v", meta)
			}
			if !errors.Is(err, ErrCorruptArchive) {
				t.Fatalf("expected ErrCorruptArchive, got %v", err)
			}
		})
	}
}
