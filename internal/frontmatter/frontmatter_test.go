package frontmatter

import (
	"reflect"
	"testing"
)

func TestParse_ScalarsAndLists(t *testing.T) {
	input := "---\n" +
		"title: \"Scope System\"\n" +
		"version: '1.2.3'\n" +
		"tags: [architecture, \"scope\", 'docs']\n" +
		"references:\n" +
		"  - ./a.md\n" +
		"  - \"../b.md\"\n" +
		"status: active\n" +
		"---\n" +
		"# Body\n"
	r, ok := Parse(input)
	if !ok {
		t.Fatal("expected frontmatter")
	}
	if got := r.Metadata.String("title"); got != "Scope System" {
		t.Errorf("title = %q", got)
	}
	if got := r.Metadata.String("version"); got != "1.2.3" {
		t.Errorf("version = %q", got)
	}
	if got := r.Metadata.Strings("tags"); !reflect.DeepEqual(got, []string{"architecture", "scope", "docs"}) {
		t.Errorf("tags = %v", got)
	}
	if got := r.Metadata.Strings("references"); !reflect.DeepEqual(got, []string{"./a.md", "../b.md"}) {
		t.Errorf("references = %v", got)
	}
	if got := r.Metadata.String("status"); got != "active" {
		t.Errorf("status = %q", got)
	}
	if r.Body != "# Body\n" {
		t.Errorf("body = %q", r.Body)
	}
}

func TestParse_NoBlock(t *testing.T) {
	cases := []string{
		"",
		"# Just a heading\n",
		"\n---\ntitle: x\n---\n",
		"---\ntitle: never closed\n",
	}
	for _, in := range cases {
		if r, ok := Parse(in); ok || r != nil {
			t.Errorf("Parse(%q) = %v, %v; want nil, false", in, r, ok)
		}
	}
}

func TestParse_InlineList(t *testing.T) {
	r, ok := Parse("---\nkey: [a, b, c]\n---\n")
	if !ok {
		t.Fatal("expected frontmatter")
	}
	v := r.Metadata["key"]
	if !v.IsList() {
		t.Fatal("expected list value")
	}
	if got := v.Strings(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("key = %v", got)
	}
}

func TestParse_BlockList(t *testing.T) {
	r, ok := Parse("---\nkey:\n  - x\n  - y\nother: z\n---\n")
	if !ok {
		t.Fatal("expected frontmatter")
	}
	if got := r.Metadata.Strings("key"); !reflect.DeepEqual(got, []string{"x", "y"}) {
		t.Errorf("key = %v", got)
	}
	if got := r.Metadata.String("other"); got != "z" {
		t.Errorf("other = %q", got)
	}
}

func TestParse_ListClosedByNewKey(t *testing.T) {
	r, _ := Parse("---\na:\n  - 1\nb: [2]\n  - 3\n---\n")
	if got := r.Metadata.Strings("a"); !reflect.DeepEqual(got, []string{"1"}) {
		t.Errorf("a = %v", got)
	}
	if got := r.Metadata.Strings("b"); !reflect.DeepEqual(got, []string{"2"}) {
		t.Errorf("b = %v", got)
	}
	if !reflect.DeepEqual(r.Skipped, []int{5}) {
		t.Errorf("skipped = %v, want [5]", r.Skipped)
	}
}

func TestParse_CommentsBlanksAndUnsupported(t *testing.T) {
	input := "---\n# comment\n\ntitle: T\nnested:\n    deep: value\nplain words\n---\nbody"
	r, ok := Parse(input)
	if !ok {
		t.Fatal("expected frontmatter")
	}
	if r.Metadata.String("title") != "T" {
		t.Errorf("title = %q", r.Metadata.String("title"))
	}
	if r.Metadata.Has("nested") {
		t.Error("nested mapping should parse as an empty list")
	}
	if !reflect.DeepEqual(r.Skipped, []int{6, 7}) {
		t.Errorf("skipped = %v, want [6 7]", r.Skipped)
	}
}

func TestParse_EmptyValueIsEmpty(t *testing.T) {
	r, _ := Parse("---\ntitle:\nstatus: \"\"\n---\n")
	if r.Metadata.Has("title") || r.Metadata.Has("status") {
		t.Error("empty values must not count as present")
	}
	if _, ok := r.Metadata["title"]; !ok {
		t.Error("key should still be recorded")
	}
}

func TestParse_CRLF(t *testing.T) {
	r, ok := Parse("---\r\ntitle: Win\r\ntags:\r\n  - a\r\n---\r\nbody\r\n")
	if !ok {
		t.Fatal("expected frontmatter")
	}
	if r.Metadata.String("title") != "Win" {
		t.Errorf("title = %q", r.Metadata.String("title"))
	}
	if got := r.Metadata.Strings("tags"); !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("tags = %v", got)
	}
	if r.Body != "body\r\n" {
		t.Errorf("body = %q", r.Body)
	}
}

func TestParse_QuotesStripOneLayer(t *testing.T) {
	r, _ := Parse("---\na: \"'x'\"\nb: \"it's\"\nc: \"unbalanced\n---\n")
	if got := r.Metadata.String("a"); got != "'x'" {
		t.Errorf("a = %q", got)
	}
	if got := r.Metadata.String("b"); got != "it's" {
		t.Errorf("b = %q", got)
	}
	if got := r.Metadata.String("c"); got != "\"unbalanced" {
		t.Errorf("c = %q", got)
	}
}

func TestSplit_Offsets(t *testing.T) {
	content := "---\ntitle: x\n---\nrest"
	b, ok := Split(content)
	if !ok {
		t.Fatal("expected block")
	}
	if b.Raw != "title: x" {
		t.Errorf("raw = %q", b.Raw)
	}
	if content[b.End:] != "rest" {
		t.Errorf("after block = %q", content[b.End:])
	}
}

func TestSplit_ClosingAtEOF(t *testing.T) {
	b, ok := Split("---\na: b\n---")
	if !ok {
		t.Fatal("closing delimiter at EOF should be accepted")
	}
	if b.End != len("---\na: b\n---") {
		t.Errorf("end = %d", b.End)
	}
}

func TestReplaceScalar(t *testing.T) {
	content := "---\ntitle: T\nversion: 1.0.0\nmodified: '2024-01-01'\n---\nversion: body stays\n"
	out, ok := ReplaceScalar(content, "version", "1.0.1")
	if !ok {
		t.Fatal("expected replacement")
	}
	want := "---\ntitle: T\nversion: \"1.0.1\"\nmodified: '2024-01-01'\n---\nversion: body stays\n"
	if out != want {
		t.Errorf("got %q\nwant %q", out, want)
	}

	if _, ok := ReplaceScalar(content, "missing", "x"); ok {
		t.Error("absent key should not report a replacement")
	}
	if out, ok := ReplaceScalar("no block", "version", "x"); ok || out != "no block" {
		t.Error("content without block must be returned unchanged")
	}
}

func TestReplaceScalar_KeepsCR(t *testing.T) {
	out, _ := ReplaceScalar("---\r\nversion: 1\r\n---\r\n", "version", "2")
	if out != "---\r\nversion: \"2\"\r\n---\r\n" {
		t.Errorf("got %q", out)
	}
}

func TestMetadataHelpers(t *testing.T) {
	m := Metadata{
		"single": Scalar("x"),
		"empty":  Scalar(""),
		"list":   List("a", "b"),
	}
	if !reflect.DeepEqual(m.Strings("single"), []string{"x"}) {
		t.Errorf("scalar coerced = %v", m.Strings("single"))
	}
	if m.Strings("empty") != nil || m.Strings("missing") != nil {
		t.Error("empty and missing should coerce to nil")
	}
	if m.First("missing", "empty", "single") != "x" {
		t.Errorf("First = %q", m.First("missing", "empty", "single"))
	}
	plain := m.Plain()
	if !reflect.DeepEqual(plain["list"], []string{"a", "b"}) || plain["single"] != "x" {
		t.Errorf("plain = %v", plain)
	}
}
